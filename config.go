package fsmregex

import "log/slog"

// Config controls compilation and search.
//
// Example:
//
//	config := fsmregex.DefaultConfig()
//	config.MaxDFAStates = 50_000
//	config.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
//	re, err := fsmregex.Compile(node, alphabet.Bytes(), config)
type Config struct {
	// EnableDFA builds a DFA for regular patterns. The DFA answers
	// IsMatch and rejects MatchExact inputs without backtracking.
	// Default: true
	EnableDFA bool

	// MaxDFAStates limits subset construction. Patterns that need more
	// states run on the backtracking engine alone.
	// Default: 10,000
	MaxDFAStates int

	// Minimize runs DFA minimization after subset construction.
	// Default: true
	Minimize bool

	// EnablePrefilter extracts literal prefixes for byte patterns and
	// skips input where no match can start.
	// Default: true
	EnablePrefilter bool

	// MaxNFAStates limits the size of the compiled NFA.
	// Default: 100,000
	MaxNFAStates int

	// MaxRecursionDepth limits pattern nesting during compilation.
	// Default: 1000
	MaxRecursionDepth int

	// MaxSteps bounds the backtracking engine per search; 0 means
	// unlimited. With a prefilter the budget applies per candidate.
	// Default: 10,000,000
	MaxSteps int

	// Logger receives compile-time decisions at debug level.
	// nil means slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EnableDFA:         true,
		MaxDFAStates:      10_000,
		Minimize:          true,
		EnablePrefilter:   true,
		MaxNFAStates:      100_000,
		MaxRecursionDepth: 1000,
		MaxSteps:          10_000_000,
	}
}

// Validate checks if the configuration is valid.
// Returns a *ConfigError describing the first invalid field.
func (c Config) Validate() error {
	if c.EnableDFA && (c.MaxDFAStates < 1 || c.MaxDFAStates > 1_000_000) {
		return &ConfigError{
			Field:   "MaxDFAStates",
			Message: "must be between 1 and 1,000,000",
		}
	}
	if c.MaxNFAStates < 2 {
		return &ConfigError{
			Field:   "MaxNFAStates",
			Message: "must be at least 2",
		}
	}
	if c.MaxRecursionDepth < 10 || c.MaxRecursionDepth > 100_000 {
		return &ConfigError{
			Field:   "MaxRecursionDepth",
			Message: "must be between 10 and 100,000",
		}
	}
	if c.MaxSteps < 0 {
		return &ConfigError{
			Field:   "MaxSteps",
			Message: "must be >= 0",
		}
	}
	return nil
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// ConfigError represents an invalid configuration.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "fsmregex: invalid config: " + e.Field + ": " + e.Message
}
