package edn

import (
	"fmt"
	"strings"
)

const defaultMaxDepth = 1000

// FallbackMode decides what happens to a tagged literal whose tag has no
// registered reader.
type FallbackMode int

const (
	// FallbackPassthrough keeps the literal as a *Tagged value.
	FallbackPassthrough FallbackMode = iota
	// FallbackUnwrap drops the tag and yields the inner value.
	FallbackUnwrap
	// FallbackError fails the read with ErrUnknownTag.
	FallbackError
)

func (m FallbackMode) String() string {
	switch m {
	case FallbackPassthrough:
		return "passthrough"
	case FallbackUnwrap:
		return "unwrap"
	case FallbackError:
		return "error"
	}
	return fmt.Sprintf("FallbackMode(%d)", int(m))
}

// ParseFallbackMode parses the name of a fallback mode.
func ParseFallbackMode(s string) (FallbackMode, error) {
	switch strings.ToLower(s) {
	case "passthrough", "":
		return FallbackPassthrough, nil
	case "unwrap":
		return FallbackUnwrap, nil
	case "error":
		return FallbackError, nil
	}
	return 0, fmt.Errorf("edn: unknown fallback mode %q", s)
}

type options struct {
	registry      *Registry
	types         *TypeRegistry
	fallback      FallbackMode
	eof           Value
	maxDepth      int
	maxArenaBytes int

	ratios         bool
	octal          bool
	separators     bool
	namespacedMaps bool
	metadata       bool

	// indent is the per level indentation of Marshal and Encoder output.
	// Empty means a single line.
	indent string
}

func defaultOptions() options {
	return options{
		types:    defaultTypes,
		maxDepth: defaultMaxDepth,
		ratios:   true,
	}
}

// Option configures a read. Marshal and Encoder accept the same options;
// they use Indent and ignore the rest.
type Option func(*options) error

func newOptions(opts []Option) (options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return options{}, err
		}
	}
	return o, nil
}

// WithRegistry sets the tag readers consulted for tagged literals. The
// registry must not be modified while a read that uses it is running.
func WithRegistry(r *Registry) Option {
	return func(o *options) error {
		o.registry = r
		return nil
	}
}

// WithTypes sets the equality and hash functions used for External values
// created during the read. The default covers the builtin inst and uuid
// types.
func WithTypes(t *TypeRegistry) Option {
	return func(o *options) error {
		if t == nil {
			return fmt.Errorf("edn: type registry must not be nil")
		}
		o.types = t
		return nil
	}
}

// WithFallback sets the policy for tags without a registered reader.
func WithFallback(m FallbackMode) Option {
	return func(o *options) error {
		if m < FallbackPassthrough || m > FallbackError {
			return fmt.Errorf("edn: invalid fallback mode %d", int(m))
		}
		o.fallback = m
		return nil
	}
}

// WithEOFValue makes a read that fails only because the input ended
// before a form started return v instead of ErrUnexpectedEOF. The value is
// returned as is and is not owned by the document's arena.
func WithEOFValue(v Value) Option {
	return func(o *options) error {
		o.eof = v
		return nil
	}
}

// MaxDepth sets the maximum nesting of collections, tagged literals,
// metadata and discards. Deeper input fails with ErrDepthExceeded.
//
// The depth n must be a positive integer.
func MaxDepth(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("edn: max depth must be a positive integer")
		}
		o.maxDepth = n
		return nil
	}
}

// MaxArenaBytes caps the memory a single read may reserve. Zero means no
// limit. Exceeding it fails the read with ErrOutOfMemory.
func MaxArenaBytes(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return fmt.Errorf("edn: max arena bytes must not be negative")
		}
		o.maxArenaBytes = n
		return nil
	}
}

// WithRatios enables N/D ratio literals. Enabled by default.
func WithRatios(enabled bool) Option {
	return func(o *options) error {
		o.ratios = enabled
		return nil
	}
}

// WithOctal accepts integers with a leading zero as octal. When disabled,
// which is the default, such literals are invalid.
func WithOctal(enabled bool) Option {
	return func(o *options) error {
		o.octal = enabled
		return nil
	}
}

// WithDigitSeparators accepts '_' between the digits of numbers.
func WithDigitSeparators(enabled bool) Option {
	return func(o *options) error {
		o.separators = enabled
		return nil
	}
}

// WithNamespacedMaps enables the #:ns{...} map syntax.
func WithNamespacedMaps(enabled bool) Option {
	return func(o *options) error {
		o.namespacedMaps = enabled
		return nil
	}
}

// WithMetadata enables ^meta prefixes.
func WithMetadata(enabled bool) Option {
	return func(o *options) error {
		o.metadata = enabled
		return nil
	}
}

// Indent makes Marshal and Encoder break collections that do not fit on
// one line, indenting each level by n spaces. Zero, the default, writes
// every value on a single line.
func Indent(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return fmt.Errorf("edn: indent must not be negative")
		}
		o.indent = strings.Repeat(" ", n)
		return nil
	}
}
