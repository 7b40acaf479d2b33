package remove

import "golang.org/x/sys/unix"

// macOS reports a missing attribute as ENOATTR.
var errNoAttr error = unix.ENOATTR
