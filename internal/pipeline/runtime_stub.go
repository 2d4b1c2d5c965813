//go:build !govips || !cgo

package pipeline

// Startup and Shutdown are no-ops without libvips; exports use the pure Go
// encoders in internal/codec.
func Startup() error {
	return nil
}

func Shutdown() {}

func newTransformer() (Transformer, error) {
	return stdlibTransformer{}, nil
}
