package shaders

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedSourcesPresent(t *testing.T) {
	assert.Contains(t, ParticleSimWGSL, "fn simulate")
	assert.Contains(t, DisplacementWGSL, "fn displace")
	assert.Contains(t, PostProcessWGSL, "fn postprocess")
}

func TestWatchReportsWgslWrites(t *testing.T) {
	dir := t.TempDir()

	type change struct{ name, source string }
	got := make(chan change, 4)
	w, err := Watch(dir, func(name, source string) {
		got <- change{name, source}
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.wgsl"), []byte("// override"), 0o644))

	select {
	case c := <-got:
		assert.Equal(t, "custom.wgsl", c.name)
		assert.Equal(t, "// override", c.source)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported for written shader")
	}
}

func TestWatchIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()

	got := make(chan string, 4)
	w, err := Watch(dir, func(name, _ string) {
		got <- name
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case name := <-got:
		t.Fatalf("unexpected change for %q", name)
	case <-time.After(300 * time.Millisecond):
	}
}
