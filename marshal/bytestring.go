package marshal

import (
	"strings"

	"github.com/wippyai/clr-host/errors"
)

// ByteString returns s as a NUL-terminated byte slice.
// It fails if s already contains a NUL, which native code would read as the
// end of the string.
func ByteString(s string) ([]byte, error) {
	if err := checkText(s, nil); err != nil {
		return nil, err
	}
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b, nil
}

func checkText(s string, path []string) error {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return errors.Encoding(path, i)
	}
	return nil
}
