package stream

import (
	"io"

	"github.com/pkg/errors"
)

// Concatenate writes the byte-wise concatenation of srcs to dst, in
// order. It exists to make spec.md §8's "concatenation closure" property
// (appending two valid A4 files yields a valid multi-segment A4 file
// whose iteration is the concatenation of the two, with segment indices
// 0 and 1 corresponding to the two inputs) a real, testable helper
// rather than something every caller reimplements with io.Copy calls of
// their own.
func Concatenate(dst io.Writer, srcs ...io.Reader) error {
	for i, src := range srcs {
		if _, err := io.Copy(dst, src); err != nil {
			return errors.Wrapf(err, "stream: concatenate source %d", i)
		}
	}
	return nil
}
