// Package resolver decides whether the running build is behind the version
// published in its catalog.
//
// A Resolver picks the catalog client for the caller's Platform, fetches the
// published record and pairs it with the local version. Catalog failures are
// never returned from Resolve: they are written to the debug log and the
// result is nil, so a failed check cannot be mistaken for "up to date".
// DecideAndPresent is the single place where the comparison result is turned
// into a prompt.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"storecheck/internal/catalog"
	"storecheck/internal/debug"
	apperrors "storecheck/internal/errors"

	"github.com/sirupsen/logrus"
)

// Local describes the running build.
type Local struct {
	Version string
	AppID   string
}

// Request carries the per-call configuration of a resolution.
type Request struct {
	Platform Platform
	Local    Local
	// AppIDOverride replaces Local.AppID when the catalog lists the app
	// under a different identifier.
	AppIDOverride string
	// Country is a two-letter region code for the structured catalog.
	Country string
}

// AppID returns the identifier sent to the catalog.
func (r Request) AppID() string {
	if id := strings.TrimSpace(r.AppIDOverride); id != "" {
		return id
	}
	return strings.TrimSpace(r.Local.AppID)
}

// Presenter shows an update prompt for a status.
type Presenter interface {
	Present(ctx context.Context, s Status) error
}

// Resolver resolves version statuses. It holds no mutable state and is safe
// for concurrent use.
type Resolver struct {
	clients map[Platform]catalog.Client
	log     logrus.FieldLogger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithStructuredClient sets the client used for PlatformStructured.
func WithStructuredClient(c catalog.Client) Option {
	return func(r *Resolver) {
		r.clients[PlatformStructured] = c
	}
}

// WithMarkupClient sets the client used for PlatformMarkup.
func WithMarkupClient(c catalog.Client) Option {
	return func(r *Resolver) {
		r.clients[PlatformMarkup] = c
	}
}

// WithLogger sets the diagnostics logger. Defaults to the debug log.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Resolver) {
		r.log = l
	}
}

// New creates a resolver backed by the default catalog clients.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		clients: map[Platform]catalog.Client{
			PlatformStructured: catalog.NewStructuredClient(),
			PlatformMarkup:     catalog.NewMarkupClient(),
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) logger() logrus.FieldLogger {
	if r.log != nil {
		return r.log
	}
	return debug.Logger()
}

// Lookup fetches the catalog record for req and returns the status, or the
// structured error explaining why there is none.
func (r *Resolver) Lookup(ctx context.Context, req Request) (Status, error) {
	client, ok := r.clients[req.Platform]
	if req.Platform == PlatformUnsupported || !ok || client == nil {
		return Status{}, apperrors.New(apperrors.CodeUnsupportedPlatform,
			fmt.Sprintf("no catalog for platform %s", req.Platform), nil)
	}

	appID := req.AppID()
	if appID == "" {
		return Status{}, apperrors.New(apperrors.CodeConfigurationError, "app id is required", nil)
	}

	rec, err := client.Fetch(ctx, catalog.Query{AppID: appID, Country: req.Country})
	if err != nil {
		return Status{}, fmt.Errorf("lookup %s on %s catalog: %w", appID, req.Platform, err)
	}

	status := NewStatus(req.Local.Version, rec.Version(), rec.Link())
	if notes, ok := rec.ReleaseNotes(); ok {
		status = status.WithReleaseNotes(notes)
	}
	return status, nil
}

// Resolve is Lookup with failures reduced to a nil result plus a diagnostic
// on the log channel.
func (r *Resolver) Resolve(ctx context.Context, req Request) *Status {
	entry := r.logger().WithFields(logrus.Fields{
		"platform":      req.Platform.String(),
		"app_id":        req.AppID(),
		"local_version": req.Local.Version,
	})

	status, err := r.Lookup(ctx, req)
	if err != nil {
		entry = entry.WithError(err).WithField("code", string(apperrors.CodeOf(err)))
		if code := apperrors.StatusOf(err); code != 0 {
			entry = entry.WithField("http_status", code)
		}
		if apperrors.IsCode(err, apperrors.CodeUnsupportedPlatform) {
			entry.Info("version check skipped: platform has no catalog")
		} else {
			entry.Warn("version check failed")
		}
		return nil
	}

	entry.WithField("store_version", status.StoreVersion()).Debug("version check resolved")
	return &status
}

// DecideAndPresent shows the prompt when s reports an available update and
// reports whether it did. A nil status is a no-op.
func (r *Resolver) DecideAndPresent(ctx context.Context, s *Status, p Presenter) (bool, error) {
	if s == nil {
		return false, nil
	}
	canUpdate, err := s.CanUpdate()
	if err != nil {
		return false, err
	}
	if !canUpdate {
		return false, nil
	}
	if p == nil {
		return false, apperrors.New(apperrors.CodeConfigurationError, "no presenter configured", nil)
	}
	if err := p.Present(ctx, *s); err != nil {
		return true, fmt.Errorf("present update: %w", err)
	}
	return true, nil
}
