package elf

// DefaultMaxSymbols caps symbol table iteration when the image gives no
// usable symbol count.
const DefaultMaxSymbols = 1 << 20

type options struct {
	maxSymbols int
}

type Option func(*options)

// WithMaxSymbols overrides DefaultMaxSymbols. Non-positive values are ignored.
func WithMaxSymbols(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSymbols = n
		}
	}
}

func defaultOptions() *options {
	return &options{maxSymbols: DefaultMaxSymbols}
}
