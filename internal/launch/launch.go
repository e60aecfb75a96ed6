// Package launch opens store links in the platform's external handler.
package launch

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	apperrors "storecheck/internal/errors"
)

// Opener opens a URL outside the application.
type Opener interface {
	Open(ctx context.Context, rawURL string) error
}

// command is the handler invocation for one OS.
type command struct {
	name string
	args []string
}

// SystemOpener hands URLs to the OS default handler (open, xdg-open or
// rundll32).
type SystemOpener struct {
	goos     string
	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
}

// NewSystemOpener creates an opener for the current OS.
func NewSystemOpener() *SystemOpener {
	return &SystemOpener{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		run:      runCommand,
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	//nolint:gosec // G204: handler is fixed per OS, URL is validated
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// handlerFor returns the command that opens a URL on goos.
func handlerFor(goos string) command {
	switch goos {
	case "darwin":
		return command{name: "open"}
	case "windows":
		return command{name: "rundll32", args: []string{"url.dll,FileProtocolHandler"}}
	default:
		return command{name: "xdg-open"}
	}
}

// Open validates rawURL and passes it to the OS handler. Any failure is a
// launch_failed error.
func (o *SystemOpener) Open(ctx context.Context, rawURL string) error {
	if err := validateURL(rawURL); err != nil {
		return err
	}

	h := handlerFor(o.goos)
	path, err := o.lookPath(h.name)
	if err != nil {
		return apperrors.New(apperrors.CodeLaunchFailed,
			fmt.Sprintf("no handler to open %s: %s not found", rawURL, h.name), err)
	}

	args := append(append([]string{}, h.args...), rawURL)
	if err := o.run(ctx, path, args...); err != nil {
		return apperrors.New(apperrors.CodeLaunchFailed,
			fmt.Sprintf("open %s: %v", rawURL, err), err)
	}
	return nil
}

func validateURL(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return apperrors.New(apperrors.CodeLaunchFailed, fmt.Sprintf("invalid url %q", rawURL), err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperrors.New(apperrors.CodeLaunchFailed,
			fmt.Sprintf("cannot open %q: only http(s) links are supported", rawURL), nil)
	}
	return nil
}
