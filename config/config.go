package config

// Config represents the idesync tool configuration
type Config struct {
	Generation GenerationConfig `mapstructure:"generation"`
	Watch      WatchConfig      `mapstructure:"watch"`
	Log        LogConfig        `mapstructure:"log"`
}

// GenerationConfig configures descriptor generation
type GenerationConfig struct {
	Root            string   `mapstructure:"root"`             // Project root directory (default: ".")
	ExtraExtensions []string `mapstructure:"extra_extensions"` // Extra file extensions treated as solution-relevant
	GenerateAll     bool     `mapstructure:"generate_all"`     // Generate projects for non-internalized packages too
	RootNamespace   string   `mapstructure:"root_namespace"`   // RootNamespace property for generated projects (empty = none)
}

// WatchConfig configures the drift watcher
type WatchConfig struct {
	DebounceMs        int `mapstructure:"debounce_ms"`          // Quiet period after the last event before a pass runs (default: 300)
	MaxSyncsPerMinute int `mapstructure:"max_syncs_per_minute"` // Rate limit on watch-triggered passes, 0 = unlimited (default: 30)
}

// LogConfig configures log output
type LogConfig struct {
	JSON bool `mapstructure:"json"` // Emit JSON log lines instead of console output
}

// FileName is the project configuration file idesync looks for, searching
// upward from the working directory.
const FileName = "idesync.toml"

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
