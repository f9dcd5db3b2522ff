package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/retint/palette"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input, output, want string
	}{
		{"photos/cat.jpg", "", filepath.Join("photos", "processed_image.png")},
		{"cat.jpg", "", "processed_image.png"},
		{"cat.jpg", "out/cat.png", "out/cat.png"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.input, tt.output, "processed_image.png"); got != tt.want {
			t.Errorf("outputPath(%q, %q) = %q, want %q", tt.input, tt.output, got, tt.want)
		}
	}
}

func TestPrintThemes(t *testing.T) {
	var buf bytes.Buffer
	themes := palette.DefaultThemes()
	if err := printThemes(&buf, themes); err != nil {
		t.Fatalf("printThemes: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != len(themes) {
		t.Fatalf("printed %d lines, want %d", len(lines), len(themes))
	}
	if !strings.HasPrefix(lines[palette.DefaultIndex], "*") {
		t.Errorf("default theme line %q is not marked", lines[palette.DefaultIndex])
	}
	if !strings.Contains(lines[0], themes[0].Name) {
		t.Errorf("line %q does not name theme %q", lines[0], themes[0].Name)
	}
}

func TestThemeIndex(t *testing.T) {
	themes := palette.DefaultThemes()
	if i, err := themeIndex(themes, "3"); err != nil || i != 3 {
		t.Errorf("themeIndex(3) = %d, %v", i, err)
	}
	if i, err := themeIndex(themes, themes[1].Name); err != nil || i != 1 {
		t.Errorf("themeIndex(%q) = %d, %v", themes[1].Name, i, err)
	}
	if _, err := themeIndex(themes, "no such theme"); err == nil {
		t.Error("themeIndex(unknown) = nil error")
	}
}

func TestGlobalsValidate(t *testing.T) {
	g := &Globals{}
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(g.themes) != len(palette.DefaultThemes()) {
		t.Errorf("loaded %d themes, want the built-in list", len(g.themes))
	}

	g = &Globals{Workers: -1}
	if err := g.Validate(); err == nil {
		t.Error("Validate() with negative workers = nil")
	}
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	src := image.NewNRGBA(image.Rect(0, 0, 30, 20))
	for i := range src.Pix {
		src.Pix[i] = uint8(i)
	}
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(in, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}

	g := &Globals{Software: true, Workers: 2}
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	cmd := &ExportCmd{Theme: "0", Input: in}
	if err := cmd.Run(g); err != nil {
		t.Fatalf("Run: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "processed_image.png"))
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if cfg.Width != 30 || cfg.Height != 20 {
		t.Errorf("export is %dx%d, want 30x20", cfg.Width, cfg.Height)
	}
}
