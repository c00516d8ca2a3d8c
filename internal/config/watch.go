package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the burst of events editors produce on save
// (truncate, write, chmod, or write-temp-then-rename).
const reloadDebounce = 250 * time.Millisecond

// ReloadFunc re-runs the override chain and returns the new config.
type ReloadFunc func() (*Config, error)

// Watch reloads the config file into h whenever it changes on disk, until
// ctx is canceled. The parent directory is watched rather than the file so
// atomic-rename saves are seen. An invalid file is logged and the previous
// config stays in effect. Returns nil when h has no file path.
func Watch(ctx context.Context, h *Holder, reload ReloadFunc, logger *slog.Logger) error {
	path := h.Path()
	if path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching config directory %s: %w", dir, err)
	}

	logger.Debug("watching config file", slog.String("path", path))

	target := filepath.Clean(path)

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}

			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(ev.Name) != target || (ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write)) {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}

			pending = timer.C

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.Warn("config watcher error", slog.String("error", watchErr.Error()))

		case <-pending:
			pending = nil
			applyReload(h, reload, logger)
		}
	}
}

func applyReload(h *Holder, reload ReloadFunc, logger *slog.Logger) {
	cfg, err := reload()
	if err != nil {
		logger.Warn("config reload failed, keeping previous config",
			slog.String("path", h.Path()),
			slog.String("error", err.Error()),
		)

		return
	}

	old := h.Swap(cfg)

	if restartRequired(old, cfg) {
		logger.Warn("changes to server.listen, server.read_header_timeout, or network.request_timeout take effect after restart")
	}

	logger.Info("config reloaded", slog.String("path", h.Path()))
}

// restartRequired reports whether settings baked into the listener or the
// shared HTTP client changed. Everything else is read per request.
func restartRequired(old, cfg *Config) bool {
	return old.Server.Listen != cfg.Server.Listen ||
		old.Server.ReadHeaderTimeout != cfg.Server.ReadHeaderTimeout ||
		old.Network.RequestTimeout != cfg.Network.RequestTimeout
}
