package qrcode

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestGenerator_PNGAndBase64(t *testing.T) {
	g, err := NewGenerator(t.TempDir(), 128)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	png, err := g.PNG("ID: stu-1")
	if err != nil {
		t.Fatalf("PNG: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Error("output is not a PNG")
	}

	b64, err := g.Base64("ID: stu-1")
	if err != nil {
		t.Fatalf("Base64: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil || !bytes.HasPrefix(raw, pngMagic) {
		t.Error("base64 output does not decode to a PNG")
	}
}

func TestGenerator_SaveSanitisesName(t *testing.T) {
	dir := t.TempDir()
	g, _ := NewGenerator(dir, 128)

	path, err := g.Save("ID: stu-1", "student_R/01 x.png")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("file escaped the output directory: %s", path)
	}
	if filepath.Base(path) != "student_R_01_x.png" {
		t.Errorf("unexpected file name %s", filepath.Base(path))
	}

	if _, err := g.Read(path); err != nil {
		t.Errorf("Read: %v", err)
	}
	if err := g.Remove(path); err != nil {
		t.Errorf("Remove: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file should be gone")
	}
	if err := g.Remove(path); err != nil {
		t.Errorf("removing a missing file should succeed, got %v", err)
	}
}
