//go:build !unix

package archive

import "os"

// Cross-process locking is only available on unix; the in-process mutex
// still applies.
func flock(*os.File) error   { return nil }
func funlock(*os.File) error { return nil }
