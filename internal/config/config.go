// Package config defines process configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers defaults, an optional YAML file and the environment.
// - External errors are wrapped with this package's sentinel kinds.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the gateway HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// TrackerBaseURL is the root of the remote tracking service.
	TrackerBaseURL string `koanf:"tracker_base_url"`

	// TrackerTimeoutMS bounds each tracking service request. 0 disables the bound.
	TrackerTimeoutMS int `koanf:"tracker_timeout_ms"`

	// UserAgent is sent on every tracking service request.
	UserAgent string `koanf:"user_agent"`

	// NameDisplayLimit truncates item names in views.
	NameDisplayLimit int `koanf:"name_display_limit"`

	// FakeBackend starts an in-memory tracking service on a loopback port and
	// points the client at it. Local development only.
	FakeBackend bool `koanf:"fake_backend"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		TrackerBaseURL:   "https://us-central1-macro-authority-435423-t4.cloudfunctions.net",
		TrackerTimeoutMS: 30_000,
		UserAgent:        "pricetrack/1.0",
		NameDisplayLimit: 100,
	}
}
