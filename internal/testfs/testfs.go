// Package testfs builds wallpaper fixtures on disk for tests.
package testfs

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// pngBytes is a 1x1 PNG.
var pngBytes = func() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 0x20, G: 0x40, B: 0x80, A: 0xff})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}()

// jpegHeader is enough of a JFIF header for content sniffing.
var jpegHeader = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01}

// PNG writes a small PNG to dir/name and returns its path.
func PNG(t testing.TB, dir, name string) string {
	t.Helper()
	return write(t, dir, name, pngBytes)
}

// JPEG writes JPEG magic bytes to dir/name and returns its path.
func JPEG(t testing.TB, dir, name string) string {
	t.Helper()
	return write(t, dir, name, jpegHeader)
}

// Text writes a plain text file to dir/name and returns its path.
func Text(t testing.TB, dir, name string) string {
	t.Helper()
	return write(t, dir, name, []byte("not an image\n"))
}

// Dir creates dir/name and returns its path.
func Dir(t testing.TB, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(p, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", p, err)
	}
	return p
}

func write(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(p), err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}
