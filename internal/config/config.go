package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"storecheck/internal/dialog"
	apperrors "storecheck/internal/errors"
	"storecheck/internal/resolver"

	"github.com/spf13/viper"
)

const (
	KeyPlatform     = "platform"
	KeyAppID        = "app-id"
	KeyCountry      = "country"
	KeyLocalVersion = "local-version"

	KeyCheckTimeout = "check.timeout"
	KeyCheckSkip    = "check.skip"

	KeyDialogTitle          = "dialog.title"
	KeyDialogText           = "dialog.text"
	KeyDialogUpdateLabel    = "dialog.update-label"
	KeyDialogDismissLabel   = "dialog.dismiss-label"
	KeyDialogAllowDismissal = "dialog.allow-dismissal"
	KeyDialogStyle          = "dialog.style"

	KeyDebug = "debug"
)

const (
	// DefaultCheckTimeout bounds a single catalog lookup from the CLI.
	DefaultCheckTimeout = 5 * time.Second
	DefaultCountry      = "us"

	envPrefix = "SC"
	configDir = ".storecheck"
)

type initSettings struct {
	workingDir        string
	projectConfigPath string
	userConfigPath    string
}

// Option configures Initialize behaviour. Useful for tests to override paths.
type Option func(*initSettings)

// WithWorkingDir overrides the directory used for project config discovery.
func WithWorkingDir(dir string) Option {
	return func(cfg *initSettings) {
		cfg.workingDir = dir
	}
}

// WithProjectConfig explicitly sets the project config path instead of discovery.
func WithProjectConfig(path string) Option {
	return func(cfg *initSettings) {
		cfg.projectConfigPath = path
	}
}

// WithUserConfig overrides the default user config path.
func WithUserConfig(path string) Option {
	return func(cfg *initSettings) {
		cfg.userConfigPath = path
	}
}

var (
	configOnce sync.Once
	configMu   sync.RWMutex
	configInst *viper.Viper
	initErr    error
)

// Initialize loads configuration using the precedence:
// defaults < user config < project config < environment variables < overrides.
func Initialize(opts ...Option) error {
	configOnce.Do(func() {
		settings := initSettings{}
		for _, opt := range opts {
			opt(&settings)
		}
		initErr = configure(&settings)
	})
	return initErr
}

// ApplyOverrides injects values typically coming from CLI flags.
func ApplyOverrides(overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}
	if err := Initialize(); err != nil {
		return err
	}
	configMu.Lock()
	defer configMu.Unlock()
	if configInst == nil {
		return fmt.Errorf("configuration not initialized")
	}
	for k, v := range overrides {
		configInst.Set(k, v)
	}
	return nil
}

// GetString fetches a string configuration value, initializing on demand.
func GetString(key string) string {
	v, err := getViper()
	if err != nil {
		return ""
	}
	return v.GetString(key)
}

// GetStringSlice fetches a list value. Comma-separated strings (as set by
// an environment variable) are split and duplicates dropped.
func GetStringSlice(key string) []string {
	v, err := getViper()
	if err != nil {
		return nil
	}
	configMu.RLock()
	defer configMu.RUnlock()
	return splitList(v.GetStringSlice(key))
}

func splitList(items []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			part = strings.TrimSpace(part)
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			out = append(out, part)
		}
	}
	return out
}

// GetBool fetches a bool configuration value, initializing on demand.
func GetBool(key string) bool {
	v, err := getViper()
	if err != nil {
		return false
	}
	return v.GetBool(key)
}

// GetDuration fetches a duration configuration value, initializing on demand.
func GetDuration(key string) time.Duration {
	v, err := getViper()
	if err != nil {
		return 0
	}
	return v.GetDuration(key)
}

// Settings is the typed view of the merged configuration.
type Settings struct {
	Platform     resolver.Platform
	AppIDs       []string
	Country      string
	LocalVersion string
	Timeout      time.Duration
	Skip         bool
	Dialog       dialog.Config
	Debug        bool
}

// Requests builds one resolver request per configured app identifier.
func (s Settings) Requests() []resolver.Request {
	reqs := make([]resolver.Request, 0, len(s.AppIDs))
	for _, id := range s.AppIDs {
		reqs = append(reqs, resolver.Request{
			Platform: s.Platform,
			Local:    resolver.Local{Version: s.LocalVersion, AppID: id},
			Country:  s.Country,
		})
	}
	return reqs
}

// Load validates the merged configuration and returns it as Settings.
// Invalid values are reported as configuration errors.
func Load() (Settings, error) {
	v, err := getViper()
	if err != nil {
		return Settings{}, apperrors.New(apperrors.CodeConfigurationError, "load configuration", err)
	}

	configMu.RLock()
	defer configMu.RUnlock()

	platform, err := resolver.ParsePlatform(v.GetString(KeyPlatform))
	if err != nil {
		return Settings{}, err
	}
	style, err := dialog.ParseStyle(v.GetString(KeyDialogStyle))
	if err != nil {
		return Settings{}, err
	}

	timeout := v.GetDuration(KeyCheckTimeout)
	if timeout <= 0 {
		return Settings{}, apperrors.New(apperrors.CodeConfigurationError,
			fmt.Sprintf("%s must be positive, got %q", KeyCheckTimeout, v.GetString(KeyCheckTimeout)), nil)
	}

	s := Settings{
		Platform:     platform,
		Country:      strings.TrimSpace(v.GetString(KeyCountry)),
		LocalVersion: strings.TrimSpace(v.GetString(KeyLocalVersion)),
		Timeout:      timeout,
		Skip:         v.GetBool(KeyCheckSkip),
		Debug:        v.GetBool(KeyDebug),
		AppIDs:       splitList(v.GetStringSlice(KeyAppID)),
		Dialog: dialog.Config{
			Title:          v.GetString(KeyDialogTitle),
			Text:           v.GetString(KeyDialogText),
			UpdateLabel:    v.GetString(KeyDialogUpdateLabel),
			DismissLabel:   v.GetString(KeyDialogDismissLabel),
			AllowDismissal: v.GetBool(KeyDialogAllowDismissal),
			Style:          style,
			Platform:       platform,
		},
	}
	if s.Skip || platform == resolver.PlatformUnsupported {
		return s, nil
	}
	if len(s.AppIDs) == 0 {
		return Settings{}, apperrors.New(apperrors.CodeConfigurationError,
			"no app id configured (set app-id or pass --app-id)", nil)
	}
	if s.LocalVersion == "" {
		return Settings{}, apperrors.New(apperrors.CodeConfigurationError,
			"no local version configured (set local-version or pass --local-version)", nil)
	}
	return s, nil
}

func configure(settings *initSettings) error {
	workingDir := strings.TrimSpace(settings.workingDir)
	if workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
		workingDir = wd
	}

	userConfigPath := strings.TrimSpace(settings.userConfigPath)
	if userConfigPath == "" {
		path, err := defaultUserConfigPath()
		if err != nil {
			return err
		}
		userConfigPath = path
	}

	projectConfigPath := strings.TrimSpace(settings.projectConfigPath)
	if projectConfigPath == "" {
		path, err := findProjectConfig(workingDir)
		if err != nil {
			return err
		}
		projectConfigPath = path
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := mergeConfigFile(v, userConfigPath); err != nil {
		return fmt.Errorf("load user config: %w", err)
	}
	if err := mergeConfigFile(v, projectConfigPath); err != nil {
		return fmt.Errorf("load project config: %w", err)
	}

	configMu.Lock()
	defer configMu.Unlock()
	configInst = v
	return nil
}

func mergeConfigFile(v *viper.Viper, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	//nolint:gosec // G304: Config loader intentionally reads user and project config files
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine user home: %w", err)
	}
	return filepath.Join(home, configDir, "config.yaml"), nil
}

// findProjectConfig walks up from startDir to the nearest .storecheck/config.yaml.
func findProjectConfig(startDir string) (string, error) {
	if strings.TrimSpace(startDir) == "" {
		return "", nil
	}
	dir := startDir
	for {
		candidate := filepath.Join(dir, configDir, "config.yaml")
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return "", fmt.Errorf("config path %s is a directory", candidate)
			}
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyPlatform, "")
	v.SetDefault(KeyAppID, []string{})
	v.SetDefault(KeyCountry, DefaultCountry)
	v.SetDefault(KeyLocalVersion, "")
	v.SetDefault(KeyCheckTimeout, DefaultCheckTimeout)
	v.SetDefault(KeyCheckSkip, false)
	v.SetDefault(KeyDialogTitle, dialog.DefaultTitle)
	v.SetDefault(KeyDialogText, "")
	v.SetDefault(KeyDialogUpdateLabel, dialog.DefaultUpdateLabel)
	v.SetDefault(KeyDialogDismissLabel, dialog.DefaultDismissLabel)
	v.SetDefault(KeyDialogAllowDismissal, true)
	v.SetDefault(KeyDialogStyle, "platform")
	v.SetDefault(KeyDebug, false)
}

func getViper() (*viper.Viper, error) {
	if err := Initialize(); err != nil {
		return nil, err
	}
	configMu.RLock()
	defer configMu.RUnlock()
	if configInst == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	return configInst, nil
}

// reset clears package state for tests.
//
//nolint:unused // Used in config_test.go
func reset() {
	configMu.Lock()
	defer configMu.Unlock()
	configInst = nil
	initErr = nil
	configOnce = sync.Once{}
}

// ResetForTesting clears package state for tests in other packages.
// Returns a cleanup function that should be deferred.
func ResetForTesting(t interface{ TempDir() string }) func() {
	reset()
	tmp := t.TempDir()
	_ = Initialize(WithWorkingDir(tmp), WithUserConfig(filepath.Join(tmp, "user.yaml")))
	return reset
}
