//go:build !statsview
// +build !statsview

package statsview

import (
	"context"
	"strings"
	"testing"
)

func TestLaunch_unavailable(t *testing.T) {
	if Available() {
		t.Fatal("available without the statsview tag")
	}
	var b strings.Builder
	Launch(context.Background(), &b, DefaultAddress)
	if !strings.Contains(b.String(), "-tags statsview") {
		t.Fatalf("got %q", b.String())
	}
}
