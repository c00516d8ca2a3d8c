package config

import "sync/atomic"

// Holder shares the live *Config between the HTTP handlers, the session
// provider and the config watcher. Readers take a snapshot per request and
// never see a partially applied reload.
type Holder struct {
	cfg  atomic.Pointer[Config]
	path string
}

// NewHolder creates a Holder. path is the file Watch follows; "" disables
// watching.
func NewHolder(cfg *Config, path string) *Holder {
	h := &Holder{path: path}
	h.cfg.Store(cfg)

	return h
}

// Config returns the current snapshot. Callers must not modify it.
func (h *Holder) Config() *Config {
	return h.cfg.Load()
}

// Path returns the config file path.
func (h *Holder) Path() string {
	return h.path
}

// Swap replaces the snapshot and returns the previous one.
func (h *Holder) Swap(cfg *Config) *Config {
	return h.cfg.Swap(cfg)
}
