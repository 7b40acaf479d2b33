//go:build !linux && !darwin

package remove

import "errors"

var errNoAttr = errors.New("attribute absent")

// Extended attributes are only wired up for Linux and macOS. Other
// platforms classify as if entries carried none, and stripping skips.

func listAttrs(string) ([]string, error) {
	return nil, errors.ErrUnsupported
}

func removeAttr(string, string) error {
	return errors.ErrUnsupported
}
