package config

import "github.com/velesbuild/idesync/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Generation root is optional - empty defaults to "." per defaults.go
	// No validation needed here

	for _, ext := range c.Generation.ExtraExtensions {
		if ext == "" || ext == "." {
			return errors.New("generation.extra_extensions entries must not be empty")
		}
	}

	// Watch debounce: 0 = flush immediately, negative = invalid
	if c.Watch.DebounceMs < 0 {
		return errors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMs)
	}

	// Watch rate limit: 0 = unlimited, negative = invalid
	if c.Watch.MaxSyncsPerMinute < 0 {
		return errors.Newf("watch.max_syncs_per_minute must be >= 0, got %d", c.Watch.MaxSyncsPerMinute)
	}

	return nil
}
