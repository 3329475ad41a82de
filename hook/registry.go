// Package hook lets external integrations observe and rewrite descriptor
// generation. Integrations register a Hook once at startup; the engine invokes
// the registered callbacks in registration order on every pass.
//
// All callbacks are optional. A Hook carrying only a Name is a valid no-op.
package hook

import (
	"sync"

	"github.com/Masterminds/semver/v3"

	"github.com/velesbuild/idesync/errors"
	"github.com/velesbuild/idesync/version"
)

// Hook bundles the callbacks one integration contributes to generation.
type Hook struct {
	// Name identifies the hook; registration rejects duplicates.
	Name string

	// EngineVersion is an optional semver constraint (e.g. ">= 0.4") checked
	// against the engine version at registration time.
	EngineVersion string

	// PreGeneration runs before any rendering. Returning true claims the
	// pass: the hook generated the files itself and the engine must not.
	PreGeneration func() bool

	// ProjectContent may rewrite a rendered project descriptor before it is
	// persisted. The returned text threads into the next hook.
	ProjectContent func(path, content string) string

	// SolutionContent may rewrite the rendered solution descriptor before it
	// is persisted.
	SolutionContent func(path, content string) string

	// PostGeneration runs after all files are written.
	PostGeneration func()
}

// Registry holds registered hooks in registration order. Registration happens
// at startup; afterwards the registry is read-only, so invocations take only
// a read lock.
type Registry struct {
	mu      sync.RWMutex
	version string
	hooks   []Hook
	names   map[string]struct{}
}

// NewRegistry creates a registry that validates hook constraints against the
// given engine version.
func NewRegistry(engineVersion string) *Registry {
	return &Registry{
		version: engineVersion,
		names:   make(map[string]struct{}),
	}
}

// Register adds a hook. It fails on a missing or duplicate name and on an
// EngineVersion constraint the running engine does not satisfy.
func (r *Registry) Register(h Hook) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h.Name == "" {
		return errors.New("hook name is required")
	}
	if _, exists := r.names[h.Name]; exists {
		return errors.Newf("hook already registered: %s", h.Name)
	}
	if err := r.validateVersion(h); err != nil {
		return errors.Wrapf(err, "version incompatible for %s", h.Name)
	}

	r.names[h.Name] = struct{}{}
	r.hooks = append(r.hooks, h)
	return nil
}

// Names returns registered hook names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.hooks))
	for _, h := range r.hooks {
		names = append(names, h.Name)
	}
	return names
}

// PreGeneration invokes every registered pre-generation callback and reports
// whether any of them claimed the pass. All callbacks run even after one
// claims, so each integration sees every pass.
func (r *Registry) PreGeneration() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	claimed := false
	for _, h := range r.hooks {
		if h.PreGeneration == nil {
			continue
		}
		if h.PreGeneration() {
			claimed = true
		}
	}
	return claimed
}

// ProjectContent threads a rendered project descriptor through every
// registered content callback in registration order and returns the final
// text.
func (r *Registry) ProjectContent(path, content string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, h := range r.hooks {
		if h.ProjectContent == nil {
			continue
		}
		content = h.ProjectContent(path, content)
	}
	return content
}

// SolutionContent threads the rendered solution descriptor through every
// registered content callback in registration order.
func (r *Registry) SolutionContent(path, content string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, h := range r.hooks {
		if h.SolutionContent == nil {
			continue
		}
		content = h.SolutionContent(path, content)
	}
	return content
}

// PostGeneration invokes every registered post-generation callback.
func (r *Registry) PostGeneration() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, h := range r.hooks {
		if h.PostGeneration == nil {
			continue
		}
		h.PostGeneration()
	}
}

// validateVersion checks a hook's EngineVersion constraint against the
// registry's engine version.
func (r *Registry) validateVersion(h Hook) error {
	if h.EngineVersion == "" {
		// No constraint specified
		return nil
	}

	engineVer, err := semver.NewVersion(r.version)
	if err != nil {
		return errors.Wrapf(err, "invalid engine version %s", r.version)
	}

	constraint, err := semver.NewConstraint(h.EngineVersion)
	if err != nil {
		return errors.Wrapf(err, "invalid version constraint %s", h.EngineVersion)
	}

	if !constraint.Check(engineVer) {
		return errors.Newf("hook requires engine %s, but running %s", h.EngineVersion, r.version)
	}

	return nil
}

// Default registry instance, created on first use against the release tag.
var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// Default returns the process-wide registry. It is created once on first use
// and shared by every synchronizer that is not given its own.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry(version.Tag)
	})
	return defaultRegistry
}

// Register adds a hook to the default registry.
func Register(h Hook) error {
	return Default().Register(h)
}
