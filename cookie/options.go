package cookie

import (
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

// storeOptions is the set of available options for NewStore
type storeOptions struct {
	withLogger hclog.Logger
}

func storeDefaults() storeOptions {
	return storeOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

func getStoreOpts(opt ...Option) storeOptions {
	opts := storeDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithLogger provides an optional logger used to report discarded cookies.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*storeOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}
