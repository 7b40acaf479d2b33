package remove

import "golang.org/x/sys/unix"

// Linux reports a missing attribute as ENODATA.
var errNoAttr error = unix.ENODATA
