package fileio

import "fmt"

// Router dispatches locations to a FileIO by scheme. Bare paths use the ""
// scheme.
type Router struct {
	stores map[string]FileIO
}

// NewRouter returns an empty router.
func NewRouter() *Router {
	return &Router{stores: make(map[string]FileIO)}
}

// Register routes the given schemes to io.
func (r *Router) Register(io FileIO, schemes ...string) *Router {
	for _, s := range schemes {
		r.stores[s] = io
	}
	return r
}

// NewInputFile implements FileIO.
func (r *Router) NewInputFile(location string) (InputFile, error) {
	io, ok := r.stores[Scheme(location)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, location)
	}
	return io.NewInputFile(location)
}
