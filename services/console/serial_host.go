//go:build !(rp2040 || rp2350)

package console

import (
	"io"
	"os"
)

// OpenSerial on a host is just stdio.
func OpenSerial() (io.Reader, io.Writer) {
	return os.Stdin, os.Stdout
}
