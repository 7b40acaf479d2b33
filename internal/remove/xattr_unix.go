//go:build linux || darwin

package remove

import (
	"bytes"

	"golang.org/x/sys/unix"
)

// listAttrs reads the attribute name list via llistxattr so symlink
// entries report their own attributes, never the target's.
func listAttrs(path string) ([]string, error) {
	for {
		n, err := unix.Llistxattr(path, nil)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, nil
		}

		buf := make([]byte, n)
		n, err = unix.Llistxattr(path, buf)
		if err == unix.ERANGE {
			// List grew between the size probe and the read.
			continue
		}
		if err != nil {
			return nil, err
		}

		var names []string
		for _, b := range bytes.Split(buf[:n], []byte{0}) {
			if len(b) > 0 {
				names = append(names, string(b))
			}
		}
		return names, nil
	}
}

// removeAttr removes one named attribute without following symlinks.
func removeAttr(path, attr string) error {
	return unix.Lremovexattr(path, attr)
}
