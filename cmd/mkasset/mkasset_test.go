package main

import (
	"bytes"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"sparkxr/xr/asset"
	"sparkxr/xr/quarkgl"
)

func builtin(t *testing.T, name string) []byte {
	t.Helper()
	data, err := fs.ReadFile(asset.Builtin(), name)
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return data
}

func TestSummarizeFlower(t *testing.T) {
	m, err := asset.Decode("flower.yaml", builtin(t, "flower.yaml"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	s := summarize(m)
	if s.Clips != 1 {
		t.Fatalf("Clips = %d, want 1", s.Clips)
	}
	if s.Meshes == 0 || s.Triangles == 0 || s.Nodes <= s.Meshes {
		t.Fatalf("summary = %+v, want meshes under group nodes", s)
	}
}

func TestCheckFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "reticle.yaml")
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(good, builtin(t, "reticle.yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("root: {mesh: {primitive: teapot}}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := checkFile(&out, good); err != nil {
		t.Fatalf("checkFile(good) error = %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("ok nodes=1 meshes=1")) {
		t.Fatalf("output = %q", out.String())
	}
	if err := checkFile(&out, bad); err == nil {
		t.Fatal("checkFile(bad) error = nil, want error")
	}
}

func TestPreviewDrawsModel(t *testing.T) {
	m, err := asset.Decode("flower.yaml", builtin(t, "flower.yaml"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	img, err := preview(m, 64, 48, 0.5, quarkgl.RenderSolidFlat)
	if err != nil {
		t.Fatalf("preview() error = %v", err)
	}
	if drawn := count(img); drawn < 20 {
		t.Fatalf("%d pixels differ from the background, want the model drawn", drawn)
	}

	if _, err := preview(m, 0, 10, 0, quarkgl.RenderSolidFlat); err == nil {
		t.Fatal("preview(0x10) error = nil, want error")
	}
}

func TestPreviewWireframe(t *testing.T) {
	doc := "name: cube\nroot: {name: cube, mesh: {primitive: box, size: [1], color: \"#ff0000\"}}\n"
	m, err := asset.Decode("cube.yaml", []byte(doc))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	flat, err := preview(m, 48, 48, 0, quarkgl.RenderSolidFlat)
	if err != nil {
		t.Fatalf("preview(flat) error = %v", err)
	}
	wire, err := preview(m, 48, 48, 0, quarkgl.RenderWireframe)
	if err != nil {
		t.Fatalf("preview(wire) error = %v", err)
	}
	if count(flat) <= count(wire) {
		t.Fatalf("flat drew %d pixels, wire %d; want flat to cover more", count(flat), count(wire))
	}
}

func count(img *image.RGBA) int {
	bg := img.RGBAAt(0, 0)
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) != bg {
				n++
			}
		}
	}
	return n
}
