// Package watch keeps generated descriptors in step with the project tree.
//
// The watcher observes the project root recursively, batches file events
// behind a debounce window and hands each batch to the synchronizer as one
// incremental pass. It lives entirely outside the generation engine: the
// engine stays a function of provider state, the watcher only decides when
// to invoke it.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/velesbuild/idesync/errors"
	"github.com/velesbuild/idesync/internal/util"
)

// Syncer regenerates descriptors. *gen.Synchronizer implements it.
type Syncer interface {
	// Sync runs a full generation pass.
	Sync() error

	// SyncIfNeeded runs an incremental pass when the changes warrant one.
	SyncIfNeeded(affectedFiles, reimportedFiles []string) (bool, error)
}

// reimportedExtensions route to the reimported set of an incremental pass.
// Binary and build-unit manifest changes reshape the assembly graph rather
// than a single project's content.
var reimportedExtensions = map[string]struct{}{
	"dll":     {},
	"unitdef": {},
}

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period after the last event before a pass runs.
	Debounce time.Duration

	// MaxSyncsPerMinute caps watch-triggered passes. 0 = uncapped. A batch
	// that arrives over budget is held, not dropped.
	MaxSyncsPerMinute int

	// ManifestFile is the root-relative build manifest name. A change to it
	// triggers OnManifestChange plus a full pass instead of an incremental
	// one. Empty disables manifest tracking.
	ManifestFile string

	// OnManifestChange runs before the full pass a manifest change triggers.
	// Typically the provider's Reload.
	OnManifestChange func() error
}

// Watcher turns file system events into synchronizer passes.
type Watcher struct {
	root    string
	syncer  Syncer
	opts    Options
	log     *zap.SugaredLogger
	watcher *fsnotify.Watcher
	limiter *rate.Limiter

	mu            sync.Mutex
	affected      map[string]struct{}
	reimported    map[string]struct{}
	manifestDirty bool
	timer         *time.Timer
}

// NewWatcher builds a watcher over the project root and registers every
// directory below it, skipping build output and hidden trees. Call Run to
// start processing events.
func NewWatcher(root string, syncer Syncer, opts Options, log *zap.SugaredLogger) (*Watcher, error) {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	w := &Watcher{
		root:       filepath.Clean(root),
		syncer:     syncer,
		opts:       opts,
		log:        log,
		watcher:    fsw,
		affected:   make(map[string]struct{}),
		reimported: make(map[string]struct{}),
	}
	if opts.MaxSyncsPerMinute > 0 {
		w.limiter = rate.NewLimiter(rate.Limit(float64(opts.MaxSyncsPerMinute)/60.0), 1)
	}

	if err := w.addTree(w.root); err != nil {
		fsw.Close()
		return nil, errors.Wrapf(err, "failed to watch %s", w.root)
	}
	return w, nil
}

// Run processes events until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	w.log.Infow("Watching project",
		"root", w.root,
		"debounce", w.opts.Debounce,
		"max_syncs_per_minute", w.opts.MaxSyncsPerMinute)

	for {
		select {
		case <-ctx.Done():
			return w.Close()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("Watch error", "error", err)
		}
	}
}

// Close stops event delivery and cancels any pending pass.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

// handleEvent classifies one event into the pending batch and (re)arms the
// debounce timer. New directories are added to the watch set instead.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}
	norm := util.NormalizePath(rel)
	if skippedPath(norm) {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.log.Warnw("Failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	// Generated descriptors are the pass's own output.
	if isDescriptor(norm) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.opts.ManifestFile != "" && norm == w.opts.ManifestFile {
		w.manifestDirty = true
	} else if _, ok := reimportedExtensions[util.ExtensionOf(norm)]; ok {
		w.reimported[norm] = struct{}{}
	} else {
		w.affected[norm] = struct{}{}
	}
	w.scheduleLocked(w.opts.Debounce)
}

// scheduleLocked (re)arms the flush timer. Callers hold w.mu.
func (w *Watcher) scheduleLocked(delay time.Duration) {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(delay, w.flush)
}

// flush hands the pending batch to the synchronizer. Over the rate budget it
// re-arms instead, keeping the batch intact.
func (w *Watcher) flush() {
	if w.limiter != nil && !w.limiter.Allow() {
		delay := w.opts.Debounce
		if delay < time.Second {
			delay = time.Second
		}
		w.log.Debugw("Sync rate limited", "retry_in", delay)
		w.mu.Lock()
		w.scheduleLocked(delay)
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	affected := sortedKeys(w.affected)
	reimported := sortedKeys(w.reimported)
	manifestDirty := w.manifestDirty
	w.affected = make(map[string]struct{})
	w.reimported = make(map[string]struct{})
	w.manifestDirty = false
	w.timer = nil
	w.mu.Unlock()

	if manifestDirty {
		if w.opts.OnManifestChange != nil {
			if err := w.opts.OnManifestChange(); err != nil {
				w.log.Errorw("Manifest reload failed", "error", err)
				return
			}
		}
		if err := w.syncer.Sync(); err != nil {
			w.log.Errorw("Full pass after manifest change failed", "error", err)
			return
		}
		w.log.Infow("Full pass after manifest change", "manifest", w.opts.ManifestFile)
		return
	}

	if len(affected) == 0 && len(reimported) == 0 {
		return
	}

	synced, err := w.syncer.SyncIfNeeded(affected, reimported)
	if err != nil {
		w.log.Errorw("Incremental pass failed", "error", err)
		return
	}
	w.log.Debugw("Change batch processed",
		"affected", len(affected),
		"reimported", len(reimported),
		"synced", synced)
}

// addTree watches dir and every directory below it. Skipped trees are never
// registered, so their events cannot arrive at all.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != w.root {
			rel, relErr := filepath.Rel(w.root, path)
			if relErr != nil {
				return nil
			}
			if skippedPath(util.NormalizePath(rel)) {
				return filepath.SkipDir
			}
		}
		return w.watcher.Add(path)
	})
}

// skippedPath reports whether a root-relative path lies under build output,
// caches or a hidden directory.
func skippedPath(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if part == "Cache" || part == "Temp" || strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// isDescriptor matches the root-level .sln and .csproj files generation
// writes.
func isDescriptor(rel string) bool {
	if strings.Contains(rel, "/") {
		return false
	}
	ext := util.ExtensionOf(rel)
	return ext == "csproj" || ext == "sln"
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
