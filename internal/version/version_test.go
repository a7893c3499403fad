package version

import (
	"strings"
	"testing"
)

func TestVersionStringNonEmpty(t *testing.T) {
	if s := String(); s == "" {
		t.Fatalf("version string is empty")
	}
}

func TestVersionStringCarriesBinaryName(t *testing.T) {
	if !strings.HasPrefix(String(), "svg2gltf ") {
		t.Fatalf("unexpected version string: %q", String())
	}
}
