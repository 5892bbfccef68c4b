package session

import (
	"net/http"

	"github.com/hashicorp/go-hclog"
)

// Option defines a common functional options type
type Option func(interface{})

// ApplyOpts takes a pointer to the options struct as a set of default
// options and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		if o == nil {
			continue
		}
		o(opts)
	}
}

// managerOptions is the set of available options for New
type managerOptions struct {
	withLogger     hclog.Logger
	withHTTPClient *http.Client
}

// managerDefaults is a handy way to get the defaults at runtime and
// during unit tests.
func managerDefaults() managerOptions {
	return managerOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

// getManagerOpts gets the defaults and applies the opt overrides passed in.
func getManagerOpts(opt ...Option) managerOptions {
	opts := managerDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithLogger provides an optional logger for the manager.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*managerOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}

// WithHTTPClient provides the http client used for all requests to the
// provider. Timeouts and transport concerns belong to this client; the
// manager imposes none of its own.
func WithHTTPClient(c *http.Client) Option {
	return func(o interface{}) {
		if o, ok := o.(*managerOptions); ok && c != nil {
			o.withHTTPClient = c
		}
	}
}
