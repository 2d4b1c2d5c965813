//go:build govips && cgo

package pipeline

import (
	"sync"

	"github.com/davidbyttow/govips/v2/vips"
)

var (
	runtimeMu sync.Mutex
	started   bool
)

// Startup initializes libvips for the export stage. Atlas rasters are tiny, so
// the operation cache stays small.
func Startup() error {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	if started {
		return nil
	}

	vips.LoggingSettings(nil, vips.LogLevelWarning)
	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheFiles:    0,
		MaxCacheMem:      32 * 1024 * 1024,
		MaxCacheSize:     50,
	})
	started = true
	return nil
}

func Shutdown() {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	if !started {
		return
	}
	vips.Shutdown()
	started = false
}

func newTransformer() (Transformer, error) {
	if err := Startup(); err != nil {
		return nil, err
	}
	return govipsTransformer{}, nil
}
