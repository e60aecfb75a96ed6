package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"storecheck/internal/catalog"
	"storecheck/internal/config"
	"storecheck/internal/dialog"
	apperrors "storecheck/internal/errors"
	"storecheck/internal/resolver"

	logtest "github.com/sirupsen/logrus/hooks/test"
)

type fakeCatalog struct {
	mu      sync.Mutex
	records map[string]catalog.Record
	delay   time.Duration
	calls   int
}

func (f *fakeCatalog) Fetch(ctx context.Context, q catalog.Query) (catalog.Record, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return catalog.Record{}, apperrors.New(apperrors.CodeNetwork, "lookup cancelled", ctx.Err())
		}
	}
	rec, ok := f.records[q.AppID]
	if !ok {
		return catalog.Record{}, apperrors.New(apperrors.CodeNotFound, "no result for "+q.AppID, nil)
	}
	return rec, nil
}

type fakePresenter struct {
	mu    sync.Mutex
	shown []string
	err   error
}

func (p *fakePresenter) Present(_ context.Context, s resolver.Status) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shown = append(p.shown, s.StoreVersion())
	return p.err
}

type harness struct {
	env       environment
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
	catalog   *fakeCatalog
	presenter *fakePresenter
	dialogCfg dialog.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cleanup := config.ResetForTesting(t)
	t.Cleanup(cleanup)

	h := &harness{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		catalog: &fakeCatalog{records: map[string]catalog.Record{
			"com.example.old":    catalog.NewRecord("2.0.0", "https://store.example/old").WithReleaseNotes("Faster sync"),
			"com.example.latest": catalog.NewRecord("1.0.0", "https://store.example/latest"),
		}},
		presenter: &fakePresenter{},
	}
	logger, _ := logtest.NewNullLogger()
	h.env = environment{
		stdout: h.stdout,
		stderr: h.stderr,
		configOpts: []config.Option{
			config.WithWorkingDir(t.TempDir()),
			config.WithUserConfig(filepath.Join(t.TempDir(), "user.yaml")),
		},
		newResolver: func() *resolver.Resolver {
			return resolver.New(
				resolver.WithStructuredClient(h.catalog),
				resolver.WithMarkupClient(h.catalog),
				resolver.WithLogger(logger),
			)
		},
		newPresenter: func(cfg dialog.Config) resolver.Presenter {
			h.dialogCfg = cfg
			return h.presenter
		},
	}
	return h
}

func (h *harness) run(args ...string) int {
	return run(context.Background(), args, h.env)
}

func TestOverridesOnlyIncludeChangedFlags(t *testing.T) {
	var flags cliFlags
	fs := newFlagSet(&flags, io.Discard)
	if err := fs.Parse([]string{"--platform", "ios", "--app-id", "a", "--app-id", "b,c", "--no-dismiss", "--timeout", "2s"}); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	got := overridesFromFlags(fs, flags)
	want := map[string]any{
		config.KeyPlatform:             "ios",
		config.KeyAppID:                []string{"a", "b", "c"},
		config.KeyDialogAllowDismissal: false,
		config.KeyCheckTimeout:         2 * time.Second,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("overridesFromFlags() = %#v, want %#v", got, want)
	}
}

func TestRunNoPromptPrintsStatuses(t *testing.T) {
	h := newHarness(t)

	code := h.run("--platform", "android", "--local-version", "1.0.0",
		"--app-id", "com.example.old", "--app-id", "com.example.latest", "--app-id", "com.example.gone",
		"--no-prompt")
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr: %s", code, h.stderr.String())
	}

	lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
	want := []string{
		"com.example.old: update available 1.0.0 -> 2.0.0 (https://store.example/old)",
		"com.example.latest: up to date (local 1.0.0, store 1.0.0)",
		"com.example.gone: status unavailable (see debug log)",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("output =\n%s\nwant\n%s", strings.Join(lines, "\n"), strings.Join(want, "\n"))
	}
	if len(h.presenter.shown) != 0 {
		t.Error("--no-prompt must not present dialogs")
	}
}

func TestRunJSONOutput(t *testing.T) {
	h := newHarness(t)

	code := h.run("--platform", "ios", "--local-version", "1.5", "--app-id", "com.example.old,com.example.gone", "--json")
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr: %s", code, h.stderr.String())
	}

	var reports []statusReport
	if err := json.Unmarshal(h.stdout.Bytes(), &reports); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, h.stdout.String())
	}
	if len(reports) != 2 {
		t.Fatalf("got %d reports", len(reports))
	}
	old := reports[0]
	if old.AppID != "com.example.old" || !old.Resolved || !old.UpdateAvailable ||
		old.StoreVersion != "2.0.0" || old.ReleaseNotes != "Faster sync" || old.Platform != "structured" {
		t.Errorf("unexpected report: %+v", old)
	}
	if reports[1].Resolved || reports[1].UpdateAvailable {
		t.Errorf("missing app should be unresolved: %+v", reports[1])
	}
}

func TestRunPresentsOnlyUpdates(t *testing.T) {
	h := newHarness(t)

	code := h.run("--platform", "android", "--local-version", "1.0.0",
		"--app-id", "com.example.old", "--app-id", "com.example.latest", "--style", "cupertino", "--no-dismiss")
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr: %s", code, h.stderr.String())
	}
	if !reflect.DeepEqual(h.presenter.shown, []string{"2.0.0"}) {
		t.Errorf("presented %v, want only the outdated app", h.presenter.shown)
	}
	if !strings.Contains(h.stdout.String(), "com.example.latest: up to date") {
		t.Errorf("up-to-date app should be reported, got %q", h.stdout.String())
	}
	if h.dialogCfg.Style != dialog.StyleCupertino || h.dialogCfg.AllowDismissal {
		t.Errorf("dialog config not taken from flags: %+v", h.dialogCfg)
	}
	if h.dialogCfg.Platform != resolver.PlatformMarkup {
		t.Errorf("dialog platform = %v", h.dialogCfg.Platform)
	}
}

func TestRunAbortStopsPrompting(t *testing.T) {
	h := newHarness(t)
	h.presenter.err = dialog.ErrAborted

	code := h.run("--platform", "android", "--local-version", "0.1", "--app-id", "com.example.old,com.example.latest")
	if code != exitAbort {
		t.Fatalf("exit code = %d, want %d", code, exitAbort)
	}
	if len(h.presenter.shown) != 1 {
		t.Errorf("expected one dialog before abort, got %d", len(h.presenter.shown))
	}
}

func TestRunReportsLaunchFailure(t *testing.T) {
	h := newHarness(t)
	h.presenter.err = apperrors.New(apperrors.CodeLaunchFailed, "no handler for https links", nil)

	code := h.run("--platform", "android", "--local-version", "1.0.0", "--app-id", "com.example.old")
	if code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(h.stderr.String(), "com.example.old: present update: ") {
		t.Errorf("launch failure not reported: %q", h.stderr.String())
	}
}

func TestRunConfigurationErrors(t *testing.T) {
	tests := [][]string{
		{"--platform", "blackberry", "--app-id", "x", "--local-version", "1"},
		{"--platform", "ios", "--local-version", "1"},
		{"--platform", "ios", "--app-id", "x", "--local-version", "1", "--style", "fluent"},
	}
	for _, args := range tests {
		h := newHarness(t)
		if code := h.run(args...); code != exitConfig {
			t.Errorf("run(%v) = %d, want %d", args, code, exitConfig)
		}
		if h.catalog.calls != 0 {
			t.Errorf("run(%v) queried the catalog despite bad config", args)
		}
	}
}

func TestRunUsageError(t *testing.T) {
	h := newHarness(t)
	if code := h.run("--bogus"); code != exitUsage {
		t.Errorf("exit code = %d, want %d", code, exitUsage)
	}
}

func TestRunVersion(t *testing.T) {
	h := newHarness(t)
	if code := h.run("--version"); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(h.stdout.String(), "storecheck version") {
		t.Errorf("version output = %q", h.stdout.String())
	}
}

func TestRunSkip(t *testing.T) {
	h := newHarness(t)
	if err := config.ApplyOverrides(map[string]any{config.KeyCheckSkip: true}); err != nil {
		t.Fatalf("ApplyOverrides() error: %v", err)
	}
	if code := h.run("--platform", "ios", "--app-id", "com.example.old", "--local-version", "1"); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if h.catalog.calls != 0 || h.stdout.Len() != 0 {
		t.Error("skipped check should do nothing")
	}
}

func TestCheckAllKeepsOrderAndTimesOut(t *testing.T) {
	cat := &fakeCatalog{
		records: map[string]catalog.Record{
			"a": catalog.NewRecord("1.0", "https://x/a"),
			"b": catalog.NewRecord("2.0", "https://x/b"),
		},
	}
	logger, _ := logtest.NewNullLogger()
	res := resolver.New(resolver.WithMarkupClient(cat), resolver.WithLogger(logger))

	var reqs []resolver.Request
	for _, id := range []string{"b", "a", "missing", "b", "a"} {
		reqs = append(reqs, resolver.Request{Platform: resolver.PlatformMarkup, Local: resolver.Local{Version: "1.0", AppID: id}})
	}
	results := checkAll(context.Background(), res, reqs, time.Second)
	if len(results) != len(reqs) {
		t.Fatalf("got %d results", len(results))
	}
	for i, r := range results {
		if r.req.AppID() != reqs[i].AppID() {
			t.Errorf("result %d is for %q, want %q", i, r.req.AppID(), reqs[i].AppID())
		}
	}
	if results[2].status != nil {
		t.Error("missing app should have no status")
	}
	if results[0].status == nil || results[0].status.StoreVersion() != "2.0" {
		t.Error("first result should be app b")
	}

	cat.delay = time.Second
	results = checkAll(context.Background(), res, reqs[:1], 20*time.Millisecond)
	if results[0].status != nil {
		t.Error("lookup exceeding the timeout should resolve to nil")
	}
}

func TestDescribeComparisonFailure(t *testing.T) {
	s := resolver.NewStatus("1.0-beta", "1.1", "https://x")
	r := checkResult{req: resolver.Request{Local: resolver.Local{AppID: "com.example"}}, status: &s}
	if got := r.describe(); !strings.HasPrefix(got, `com.example: cannot compare "1.0-beta" with "1.1"`) {
		t.Errorf("describe() = %q", got)
	}
}

func TestWriteJSONReportsComparisonError(t *testing.T) {
	s := resolver.NewStatus("1.0", "v2", "https://x")
	var buf bytes.Buffer
	err := writeJSON(&buf, resolver.PlatformStructured, []checkResult{{
		req:    resolver.Request{Local: resolver.Local{AppID: "com.example", Version: "1.0"}},
		status: &s,
	}})
	if err != nil {
		t.Fatalf("writeJSON() error: %v", err)
	}
	var reports []statusReport
	if err := json.Unmarshal(buf.Bytes(), &reports); err != nil {
		t.Fatal(err)
	}
	if reports[0].Error == "" || reports[0].UpdateAvailable {
		t.Errorf("report = %+v", reports[0])
	}
}
