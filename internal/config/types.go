// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/invowk/procutil/pkg/sigspec"
)

const (
	// LogLevelDebug logs syscall retries and mask restores.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default level.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn only logs warnings and errors.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError only logs errors.
	LogLevelError LogLevel = "error"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultPollInterval matches the signal waiter's built-in interval.
	DefaultPollInterval PollInterval = "100ms"
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidPollInterval is returned when a PollInterval is not a positive duration.
	ErrInvalidPollInterval = errors.New("invalid poll interval")
	// ErrInvalidForwardSignal is returned when run.forward_signals names an unknown signal.
	ErrInvalidForwardSignal = errors.New("invalid forward signal")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level the CLI logger emits.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// PollInterval is a Go duration string bounding each signal wait slice.
	PollInterval string

	// InvalidPollIntervalError is returned when a PollInterval does not parse
	// or is not positive.
	InvalidPollIntervalError struct {
		Value PollInterval
	}

	// InvalidForwardSignalError is returned when a forwarded signal name
	// does not resolve.
	InvalidForwardSignalError struct {
		Value string
		Err   error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Log configures the CLI logger
		Log LogConfig `json:"log" mapstructure:"log"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// Wait configures the signal waiter
		Wait WaitConfig `json:"wait" mapstructure:"wait"`
		// FDs configures descriptor listing
		FDs FDsConfig `json:"fds" mapstructure:"fds"`
		// Run configures child process supervision
		Run RunConfig `json:"run" mapstructure:"run"`
	}

	// LogConfig configures logging.
	LogConfig struct {
		Level LogLevel `json:"level" mapstructure:"level"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging and detailed error help
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// WaitConfig configures `procutil wait`.
	WaitConfig struct {
		PollInterval PollInterval `json:"poll_interval" mapstructure:"poll_interval"`
	}

	// FDsConfig configures `procutil fds`.
	FDsConfig struct {
		// Describe makes the long listing the default.
		Describe bool `json:"describe" mapstructure:"describe"`
	}

	// RunConfig configures `procutil run`.
	RunConfig struct {
		// ForwardSignals lists the signals relayed to the child.
		ForwardSignals []string `json:"forward_signals" mapstructure:"forward_signals"`
	}
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels,
// and a list of validation errors if it is not.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the PollInterval.
func (p PollInterval) String() string { return string(p) }

// Duration parses the interval. Invalid values return zero.
func (p PollInterval) Duration() time.Duration {
	d, err := time.ParseDuration(string(p))
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

// IsValid returns whether the PollInterval is a positive duration.
func (p PollInterval) IsValid() (bool, []error) {
	if p.Duration() <= 0 {
		return false, []error{&InvalidPollIntervalError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidPollIntervalError.
func (e *InvalidPollIntervalError) Error() string {
	return fmt.Sprintf("invalid poll interval %q: must be a positive duration such as \"100ms\"", e.Value)
}

// Unwrap returns ErrInvalidPollInterval for errors.Is() compatibility.
func (e *InvalidPollIntervalError) Unwrap() error { return ErrInvalidPollInterval }

// Error implements the error interface for InvalidForwardSignalError.
func (e *InvalidForwardSignalError) Error() string {
	return fmt.Sprintf("invalid forward signal %q: %v", e.Value, e.Err)
}

// Unwrap returns both the sentinel and the underlying signal error.
func (e *InvalidForwardSignalError) Unwrap() []error {
	return []error{ErrInvalidForwardSignal, e.Err}
}

// IsValid returns whether the UIConfig has valid fields.
func (c UIConfig) IsValid() (bool, []error) {
	return c.ColorScheme.IsValid()
}

// IsValid returns whether every forwarded signal resolves.
func (c RunConfig) IsValid() (bool, []error) {
	var errs []error
	for _, name := range c.ForwardSignals {
		if _, err := sigspec.Resolve(sigspec.Name(name)); err != nil {
			errs = append(errs, &InvalidForwardSignalError{Value: name, Err: err})
		}
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

// ForwardSpecs returns ForwardSignals as signal specs.
func (c RunConfig) ForwardSpecs() []sigspec.Spec {
	specs := make([]sigspec.Spec, len(c.ForwardSignals))
	for i, name := range c.ForwardSignals {
		specs[i] = sigspec.Name(name)
	}
	return specs
}

// IsValid returns whether the Config has valid fields.
// FDs has only bool fields and needs no validation.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Log.Level.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Wait.PollInterval.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Run.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return "invalid config: " + e.FieldErrors[0].Error()
	}
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig and the field errors for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: LogLevelInfo},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
		Wait: WaitConfig{PollInterval: DefaultPollInterval},
		FDs:  FDsConfig{Describe: false},
		Run:  RunConfig{ForwardSignals: defaultForwardSignals()},
	}
}

func defaultForwardSignals() []string {
	specs := sigspec.TerminationSignals()
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.String()
	}
	return names
}
