//go:build statsview
// +build statsview

package statsview

import (
	"context"
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// Launch serves the runtime graphs on addr until ctx is done. The page URL is
// printed to output.
func Launch(ctx context.Context, output io.Writer, addr string) {
	if addr == "" {
		addr = DefaultAddress
	}
	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()
	go mgr.Start()
	go func() {
		<-ctx.Done()
		mgr.Stop()
	}()
	fmt.Fprintf(output, "runtime graphs at http://%s%s\n", addr, url)
}

// Available reports whether the binary was built with the statsview tag.
func Available() bool { return true }
