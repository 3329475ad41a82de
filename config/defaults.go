package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Generation defaults
	v.SetDefault("generation.root", ".")
	v.SetDefault("generation.extra_extensions", []string{})
	v.SetDefault("generation.generate_all", false)
	v.SetDefault("generation.root_namespace", "")

	// Watch defaults
	v.SetDefault("watch.debounce_ms", 300)
	v.SetDefault("watch.max_syncs_per_minute", 30)

	// Log defaults
	v.SetDefault("log.json", false)
}

// BindEnvVars explicitly binds configuration keys that CI pipelines commonly
// override to environment variables
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("generation.root", "IDESYNC_GENERATION_ROOT")
	v.BindEnv("generation.generate_all", "IDESYNC_GENERATION_GENERATE_ALL")
	v.BindEnv("log.json", "IDESYNC_LOG_JSON")
}
