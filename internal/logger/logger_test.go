// Derived from the logger package of Gopher2600,
// https://github.com/jetsetilly/gopher2600, modified for segsim.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

package logger_test

import (
	"strings"
	"testing"

	"github.com/db47h/segsim/internal/logger"
)

func TestLogger(t *testing.T) {
	logger.Clear()
	var b strings.Builder

	logger.Write(&b)
	if b.String() != "" {
		t.Fatalf("empty log wrote %q", b.String())
	}

	logger.Log("test", "this is a test")
	logger.Write(&b)
	if b.String() != "test: this is a test\n" {
		t.Fatalf("got %q", b.String())
	}

	b.Reset()
	logger.Logf("test2", "this is %s test", "another")
	logger.Write(&b)
	if exp := "test: this is a test\ntest2: this is another test\n"; b.String() != exp {
		t.Fatalf("got %q, expected %q", b.String(), exp)
	}

	// asking for too many entries in a Tail() should be okay
	b.Reset()
	logger.Tail(&b, 100)
	if exp := "test: this is a test\ntest2: this is another test\n"; b.String() != exp {
		t.Fatalf("got %q, expected %q", b.String(), exp)
	}

	b.Reset()
	logger.Tail(&b, 1)
	if exp := "test2: this is another test\n"; b.String() != exp {
		t.Fatalf("got %q, expected %q", b.String(), exp)
	}

	b.Reset()
	logger.Tail(&b, 0)
	if b.String() != "" {
		t.Fatalf("got %q", b.String())
	}
}

func TestLogger_repeat(t *testing.T) {
	logger.Clear()
	var echo strings.Builder
	logger.SetEcho(&echo)
	defer logger.SetEcho(nil)

	logger.Log("csr", "write\n0x00")
	logger.Log("csr", "write0x00")
	logger.Log("csr", "write0x00")

	var b strings.Builder
	logger.Write(&b)
	if exp := "csr: write0x00 (repeat x3)\n"; b.String() != exp {
		t.Fatalf("got %q, expected %q", b.String(), exp)
	}
	if n := len(logger.Entries()); n != 1 {
		t.Fatalf("got %d entries, expected 1", n)
	}
	if !strings.HasSuffix(echo.String(), "(repeat x3)\n") {
		t.Fatalf("echo output %q", echo.String())
	}
}

func TestLogger_max(t *testing.T) {
	logger.Clear()
	for i := 0; i < 300; i++ {
		logger.Logf("n", "%d", i)
	}
	e := logger.Entries()
	if len(e) != 256 {
		t.Fatalf("got %d entries, expected 256", len(e))
	}
	if e[0].Detail != "44" || e[255].Detail != "299" {
		t.Fatalf("unexpected window %q..%q", e[0].Detail, e[255].Detail)
	}
}
