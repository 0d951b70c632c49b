package remote

import (
	"fmt"
	"net/url"
	"time"
)

// InitFunc is the type of a Provider factory function, used to register the
// constructor for a remote backend keyed by URL scheme.
type InitFunc func(parsed *url.URL, timeout time.Duration) (Provider, error)

var providers map[string]InitFunc

// Register registers an InitFunc for the given URL scheme (e.g. "redis",
// "http"). It's expected to be called from each backend package's init
// function.
func Register(scheme string, initFunc InitFunc) {
	if providers == nil {
		providers = make(map[string]InitFunc)
	}
	if _, exists := providers[scheme]; exists {
		panic("remote provider scheme already registered: " + scheme)
	}
	providers[scheme] = initFunc
}

// Open constructs a Provider for rawURL by dispatching to the backend
// registered for its scheme.
func Open(rawURL string, timeout time.Duration) (Provider, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse remote URL: %w", err)
	}

	initFunc, ok := providers[parsed.Scheme]
	if !ok {
		return nil, fmt.Errorf("no remote provider registered for scheme: %q", parsed.Scheme)
	}

	return initFunc(parsed, timeout)
}
