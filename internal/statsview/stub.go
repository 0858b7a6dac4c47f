//go:build !statsview
// +build !statsview

package statsview

import (
	"context"
	"fmt"
	"io"
)

// Launch reports that runtime graphs are not built in.
func Launch(ctx context.Context, output io.Writer, addr string) {
	fmt.Fprintf(output, "runtime graphs not available: build with -tags statsview\n")
}

// Available reports whether the binary was built with the statsview tag.
func Available() bool { return false }
