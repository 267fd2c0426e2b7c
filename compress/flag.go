package compress

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// Flag is a pflag.Value implementation that stores a codec id, letting a
// command's --compression flag select one of the supported codecs by
// name.
type Flag uint32

var _ pflag.Value = (*Flag)(nil)

func (f *Flag) String() string { return Name(uint32(*f)) }

// Set implements pflag.Value.
func (f *Flag) Set(v string) error {
	codec, ok := ByName[v]
	if !ok {
		return errors.Errorf("compress: unknown codec name %q", v)
	}
	*f = Flag(codec)
	return nil
}

// Type implements pflag.Value.
func (f *Flag) Type() string { return "compress.Codec" }

// Codec returns the codec id held by this flag.
func (f Flag) Codec() uint32 { return uint32(f) }

// FlagValues returns the sorted, comma-joined list of valid Flag names,
// for use in a flag's usage string.
func FlagValues() string {
	names := make([]string, 0, len(ByName))
	for name := range ByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
