// Package qrcode renders QR codes as PNG images and stores them on disk.
package qrcode

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	goqrcode "github.com/skip2/go-qrcode"
)

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Generator writes QR PNGs into a directory.
type Generator struct {
	dir  string
	size int
}

// NewGenerator creates the output directory when missing.
func NewGenerator(dir string, size int) (*Generator, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create qr directory %s: %w", dir, err)
	}
	return &Generator{dir: dir, size: size}, nil
}

// PNG encodes text as a QR PNG.
func (g *Generator) PNG(text string) ([]byte, error) {
	png, err := goqrcode.Encode(text, goqrcode.Medium, g.size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}

// Base64 encodes text as a base64 QR PNG.
func (g *Generator) Base64(text string) (string, error) {
	png, err := g.PNG(text)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}

// Save writes the QR PNG for text under a sanitised file name and returns its path.
func (g *Generator) Save(text, fileName string) (string, error) {
	png, err := g.PNG(text)
	if err != nil {
		return "", err
	}

	path := filepath.Join(g.dir, unsafeFileChars.ReplaceAllString(fileName, "_"))
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("write qr file: %w", err)
	}
	return path, nil
}

// Read returns a stored QR PNG.
func (g *Generator) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Remove deletes a stored QR PNG; a missing file is not an error.
func (g *Generator) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
