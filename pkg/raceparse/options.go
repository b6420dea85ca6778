package raceparse

type options struct {
	encoding  string
	minFields int
	sessionID string
}

// Option configures a Parser.
type Option func(*options)

// WithEncoding sets the declared text encoding of uploaded bytes
// ("utf-8", "latin1", "windows-1252", ...). Undecodable bytes are replaced,
// never fatal. Default: "utf-8".
func WithEncoding(name string) Option {
	return func(o *options) {
		o.encoding = name
	}
}

// WithMinFields sets the minimum token count for the field-count header
// fallback heuristic. Default: 10.
func WithMinFields(n int) Option {
	return func(o *options) {
		o.minFields = n
	}
}

// WithSessionID sets the session identifier attached to parse results.
// Default: a fresh UUID per Parse call.
func WithSessionID(id string) Option {
	return func(o *options) {
		o.sessionID = id
	}
}

func defaultOptions() options {
	return options{
		encoding: "utf-8",
	}
}
