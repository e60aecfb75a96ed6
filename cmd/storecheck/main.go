package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"storecheck/internal/catalog"
	"storecheck/internal/config"
	"storecheck/internal/debug"
	"storecheck/internal/dialog"
	apperrors "storecheck/internal/errors"
	"storecheck/internal/launch"
	"storecheck/internal/resolver"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

const (
	maxConcurrentChecks = 4

	exitOK     = 0
	exitConfig = 1
	exitUsage  = 2
	exitAbort  = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], defaultEnvironment())
	stop()
	os.Exit(code)
}

// environment carries the process dependencies run needs.
type environment struct {
	stdout       io.Writer
	stderr       io.Writer
	configOpts   []config.Option
	newResolver  func() *resolver.Resolver
	newPresenter func(dialog.Config) resolver.Presenter
}

func defaultEnvironment() environment {
	return environment{
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		newResolver: func() *resolver.Resolver {
			ua := catalog.WithUserAgent(catalog.DefaultUserAgent + "/" + Version)
			return resolver.New(
				resolver.WithStructuredClient(catalog.NewStructuredClient(ua)),
				resolver.WithMarkupClient(catalog.NewMarkupClient(ua)),
			)
		},
		newPresenter: func(cfg dialog.Config) resolver.Presenter {
			return dialog.New(cfg, launch.NewSystemOpener())
		},
	}
}

type cliFlags struct {
	platform     string
	appIDs       []string
	country      string
	localVersion string
	timeout      time.Duration
	style        string
	noDismiss    bool
	noPrompt     bool
	jsonOutput   bool
	debug        bool
	version      bool
}

func newFlagSet(f *cliFlags, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("storecheck", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.platform, "platform", "", "Catalog platform (ios, android, unsupported)")
	fs.StringSliceVar(&f.appIDs, "app-id", nil, "App identifier to check (repeatable)")
	fs.StringVar(&f.country, "country", "", "Two-letter App Store region")
	fs.StringVar(&f.localVersion, "local-version", "", "Version of the running build")
	fs.DurationVar(&f.timeout, "timeout", 0, "Timeout per catalog lookup (e.g. 5s)")
	fs.StringVar(&f.style, "style", "", "Dialog style (platform, material, cupertino)")
	fs.BoolVar(&f.noDismiss, "no-dismiss", false, "Hide the dismiss action")
	fs.BoolVar(&f.noPrompt, "no-prompt", false, "Print statuses without showing the dialog")
	fs.BoolVar(&f.jsonOutput, "json", false, "Print statuses as JSON (implies --no-prompt)")
	fs.BoolVar(&f.debug, "debug", false, "Write diagnostics to the debug log")
	fs.BoolVarP(&f.version, "version", "v", false, "Print version information and exit")
	return fs
}

// overridesFromFlags maps explicitly set flags onto configuration keys so
// unset flags never mask file or environment values.
func overridesFromFlags(fs *pflag.FlagSet, f cliFlags) map[string]any {
	overrides := map[string]any{}
	set := func(name, key string, value any) {
		if fs.Changed(name) {
			overrides[key] = value
		}
	}
	set("platform", config.KeyPlatform, f.platform)
	set("app-id", config.KeyAppID, f.appIDs)
	set("country", config.KeyCountry, f.country)
	set("local-version", config.KeyLocalVersion, f.localVersion)
	set("timeout", config.KeyCheckTimeout, f.timeout)
	set("style", config.KeyDialogStyle, f.style)
	set("debug", config.KeyDebug, f.debug)
	if fs.Changed("no-dismiss") {
		overrides[config.KeyDialogAllowDismissal] = !f.noDismiss
	}
	return overrides
}

func run(ctx context.Context, args []string, env environment) int {
	var flags cliFlags
	fs := newFlagSet(&flags, env.stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if flags.version {
		printVersion(env.stdout)
		return exitOK
	}

	if err := config.Initialize(env.configOpts...); err != nil {
		fmt.Fprintf(env.stderr, "Error initializing config: %v\n", err)
		return exitConfig
	}
	if err := config.ApplyOverrides(overridesFromFlags(fs, flags)); err != nil {
		fmt.Fprintf(env.stderr, "Error applying flags: %v\n", err)
		return exitConfig
	}
	settings, err := config.Load()
	if err != nil {
		fmt.Fprintf(env.stderr, "Error: %v\n", err)
		return exitConfig
	}

	if err := debug.Init(settings.Debug); err != nil {
		fmt.Fprintf(env.stderr, "Warning: debug log unavailable: %v\n", err)
	}
	defer debug.Close()

	if settings.Skip {
		debug.Log("version check skipped by configuration")
		return exitOK
	}

	res := env.newResolver()
	results := checkAll(ctx, res, settings.Requests(), settings.Timeout)

	if flags.jsonOutput {
		if err := writeJSON(env.stdout, settings.Platform, results); err != nil {
			fmt.Fprintf(env.stderr, "Error: %v\n", err)
		}
		return exitOK
	}
	if flags.noPrompt {
		for _, r := range results {
			fmt.Fprintln(env.stdout, r.describe())
		}
		return exitOK
	}
	return presentAll(ctx, env, res, env.newPresenter(settings.Dialog), results)
}

// checkResult pairs a request with its resolution. Status is nil when the
// catalog could not answer.
type checkResult struct {
	req    resolver.Request
	status *resolver.Status
}

// checkAll resolves every request concurrently, each under its own timeout.
// Results keep the order of reqs.
func checkAll(ctx context.Context, res *resolver.Resolver, reqs []resolver.Request, timeout time.Duration) []checkResult {
	results := make([]checkResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentChecks)
	for i, req := range reqs {
		g.Go(func() error {
			lookupCtx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()
			results[i] = checkResult{req: req, status: res.Resolve(lookupCtx, req)}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// presentAll prompts for each app with an update, one dialog at a time.
func presentAll(ctx context.Context, env environment, res *resolver.Resolver, presenter resolver.Presenter, results []checkResult) int {
	for _, r := range results {
		shown, err := res.DecideAndPresent(ctx, r.status, presenter)
		switch {
		case errors.Is(err, dialog.ErrAborted):
			return exitAbort
		case err != nil:
			fmt.Fprintf(env.stderr, "%s: %v\n", r.req.AppID(), err)
			debug.WithFields(logrus.Fields{
				"app_id": r.req.AppID(),
				"code":   string(apperrors.CodeOf(err)),
			}).WithError(err).Warn("update prompt failed")
		case !shown:
			fmt.Fprintln(env.stdout, r.describe())
		}
	}
	return exitOK
}

func (r checkResult) describe() string {
	id := r.req.AppID()
	if r.status == nil {
		return fmt.Sprintf("%s: status unavailable (see debug log)", id)
	}
	s := r.status
	canUpdate, err := s.CanUpdate()
	switch {
	case err != nil:
		return fmt.Sprintf("%s: cannot compare %q with %q: %v", id, s.LocalVersion(), s.StoreVersion(), err)
	case canUpdate:
		return fmt.Sprintf("%s: update available %s -> %s (%s)", id, s.LocalVersion(), s.StoreVersion(), s.AppStoreLink())
	default:
		return fmt.Sprintf("%s: up to date (local %s, store %s)", id, s.LocalVersion(), s.StoreVersion())
	}
}

type statusReport struct {
	AppID           string `json:"app_id"`
	Platform        string `json:"platform"`
	Resolved        bool   `json:"resolved"`
	LocalVersion    string `json:"local_version"`
	StoreVersion    string `json:"store_version,omitempty"`
	AppStoreLink    string `json:"app_store_link,omitempty"`
	ReleaseNotes    string `json:"release_notes,omitempty"`
	UpdateAvailable bool   `json:"update_available"`
	Error           string `json:"error,omitempty"`
}

func writeJSON(w io.Writer, platform resolver.Platform, results []checkResult) error {
	reports := make([]statusReport, 0, len(results))
	for _, r := range results {
		report := statusReport{
			AppID:        r.req.AppID(),
			Platform:     platform.String(),
			LocalVersion: r.req.Local.Version,
		}
		if r.status != nil {
			report.Resolved = true
			report.StoreVersion = r.status.StoreVersion()
			report.AppStoreLink = r.status.AppStoreLink()
			report.ReleaseNotes, _ = r.status.ReleaseNotes()
			canUpdate, err := r.status.CanUpdate()
			if err != nil {
				report.Error = err.Error()
			}
			report.UpdateAvailable = canUpdate
		}
		reports = append(reports, report)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("encode statuses: %w", err)
	}
	return nil
}
