package gen

// Settings redirects descriptor output. Production passes write to disk;
// verification passes capture rendered content in memory instead. Callers
// configure it before a pass; only the writer reads it.
type Settings struct {
	// WriteToDisk enables real filesystem writes. When false, content that
	// would have been written lands in Captured instead.
	WriteToDisk bool

	// Captured records path → content for every write suppressed by
	// WriteToDisk being false. Nil until the first capture.
	Captured map[string]string
}

// DefaultSettings returns production settings: write to disk, no capture.
func DefaultSettings() *Settings {
	return &Settings{WriteToDisk: true}
}

// CaptureSettings returns verification settings: no filesystem writes, all
// content captured.
func CaptureSettings() *Settings {
	return &Settings{Captured: make(map[string]string)}
}

// capture stores content under path, mimicking the byte round trip a real
// write performs so captured text matches on-disk text exactly.
func (s *Settings) capture(path, content string) {
	if s.Captured == nil {
		s.Captured = make(map[string]string)
	}
	s.Captured[path] = string([]byte(content))
}

// captured returns previously captured content for path.
func (s *Settings) captured(path string) (string, bool) {
	content, ok := s.Captured[path]
	return content, ok
}
