package config

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHolder_Snapshot(t *testing.T) {
	cfg := DefaultConfig()
	h := NewHolder(cfg, "/etc/datalake-api/config.toml")

	assert.Same(t, cfg, h.Config())
	assert.Equal(t, "/etc/datalake-api/config.toml", h.Path())
}

func TestHolder_Swap(t *testing.T) {
	first := DefaultConfig()
	h := NewHolder(first, "")

	second := DefaultConfig()
	second.Drive.PathPrefix = "Lake"

	assert.Same(t, first, h.Swap(second))
	assert.Same(t, second, h.Config())
}

func TestHolder_ConcurrentReload(t *testing.T) {
	h := NewHolder(DefaultConfig(), "")

	var wg sync.WaitGroup

	for i := range 50 {
		wg.Add(2)

		go func() {
			defer wg.Done()

			cfg := DefaultConfig()
			cfg.Tree.MaxDepth = i + 1
			h.Swap(cfg)
		}()

		go func() {
			defer wg.Done()

			assert.Positive(t, h.Config().Tree.MaxDepth)
		}()
	}

	wg.Wait()
}
