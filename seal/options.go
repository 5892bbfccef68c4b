package seal

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

// suiteOptions is the set of available options for New
type suiteOptions struct {
	withMode     Mode
	withIVLength int
}

// suiteDefaults is a handy way to get the defaults at runtime and during
// unit tests.
func suiteDefaults() suiteOptions {
	return suiteOptions{
		withMode:     AESGCM,
		withIVLength: DefaultIVLength,
	}
}

// getSuiteOpts gets the defaults and applies the opt overrides passed in.
func getSuiteOpts(opt ...Option) suiteOptions {
	opts := suiteDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithMode selects the cipher mode for a new Suite.
func WithMode(m Mode) Option {
	return func(o interface{}) {
		if o, ok := o.(*suiteOptions); ok {
			o.withMode = m
		}
	}
}

// WithIVLength overrides the number of iv bytes generated per encryption.
func WithIVLength(n int) Option {
	return func(o interface{}) {
		if o, ok := o.(*suiteOptions); ok {
			o.withIVLength = n
		}
	}
}
