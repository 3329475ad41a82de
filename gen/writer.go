package gen

import (
	"os"

	"go.uber.org/zap"

	"github.com/velesbuild/idesync/errors"
)

// Writer persists rendered descriptors, skipping files whose on-disk content
// already matches. Skipping is what keeps IDE file watchers quiet across
// no-op passes; every write path in the engine goes through here.
type Writer struct {
	settings *Settings
	log      *zap.SugaredLogger
}

// NewWriter builds a writer bound to the given settings.
func NewWriter(settings *Settings, log *zap.SugaredLogger) *Writer {
	return &Writer{settings: settings, log: log}
}

// WriteIfChanged writes content to path unless the file already holds
// byte-identical text. Returns whether anything was written (or captured).
// Content is UTF-8 without a byte-order marker.
func (w *Writer) WriteIfChanged(path, content string) (bool, error) {
	if current, err := os.ReadFile(path); err == nil {
		if string(current) == content {
			w.log.Debugw("Descriptor unchanged", "path", path)
			return false, nil
		}
	} else if !os.IsNotExist(err) {
		return false, errors.Wrapf(err, "failed to read %s for comparison", path)
	}

	if !w.settings.WriteToDisk {
		w.settings.capture(path, content)
		w.log.Debugw("Descriptor captured", "path", path, "bytes", len(content))
		return true, nil
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return false, errors.Wrapf(err, "failed to write %s", path)
	}
	w.log.Infow("Descriptor written", "path", path, "bytes", len(content))
	return true, nil
}
