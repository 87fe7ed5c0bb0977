package signalz

// Config is the declarative form accepted by Use.
type Config struct {
	Initial any
	Options []Option
}

// Use returns a Signal for config so that callers holding either a Signal or
// the data to build one can share a single entry point.
//
//   - a *Signal is returned unchanged and opts are ignored
//   - a Config or *Config builds a Signal from Initial with its Options
//     followed by opts
//   - anything else is the initial state
func Use(config any, opts ...Option) (*Signal, error) {
	switch c := config.(type) {
	case *Signal:
		if c != nil {
			return c, nil
		}
		return New(nil, opts...)
	case Config:
		return New(c.Initial, append(append([]Option{}, c.Options...), opts...)...)
	case *Config:
		if c == nil {
			return New(nil, opts...)
		}
		return New(c.Initial, append(append([]Option{}, c.Options...), opts...)...)
	default:
		return New(config, opts...)
	}
}
