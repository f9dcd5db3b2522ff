package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"

	"github.com/gogpu/retint"
	"github.com/gogpu/retint/palette"
	"github.com/gogpu/retint/surface"
)

var errInvalidWorkers = errors.New("workers must not be negative")

// ExportCmd renders an image at full resolution.
type ExportCmd struct {
	Theme  string `short:"t" help:"Theme index or name" default:"3"`
	Output string `short:"o" help:"Output PNG; defaults to processed_image.png next to the input"`
	Input  string `arg:"" type:"existingfile" help:"Source image (png, jpeg, gif, bmp, tiff, webp)"`
}

func (c *ExportCmd) Run(g *Globals) error {
	theme, err := g.themes.Lookup(c.Theme)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(c.Input)
	if err != nil {
		return fmt.Errorf("read %q: %w", c.Input, err)
	}

	opts := append(g.rendererOptions(),
		retint.WithPalette(theme.Palette),
		retint.WithScheduler(retint.NewManualScheduler()),
	)
	r, err := retint.New(opts...)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := r.LoadImage(data); err != nil {
		return err
	}
	exp, err := r.RenderFullResolution(context.Background())
	if err != nil {
		return err
	}

	out := outputPath(c.Input, c.Output, exp.Filename())
	if err := writeExport(out, exp); err != nil {
		return err
	}
	w, h := exp.Size()
	slog.Info("exported", "file", out, "theme", theme.Name, "width", w, "height", h, "backend", r.Backend())
	return nil
}

// outputPath returns output, or name next to input when output is empty.
func outputPath(input, output, name string) string {
	if output != "" {
		return output
	}
	return filepath.Join(filepath.Dir(input), name)
}

func writeExport(path string, exp *retint.Export) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %q: %w", path, cerr)
		}
	}()
	return exp.EncodePNG(f)
}

// ThemesCmd prints the theme list.
type ThemesCmd struct{}

func (c *ThemesCmd) Run(g *Globals) error {
	return printThemes(os.Stdout, g.themes)
}

func printThemes(w io.Writer, themes palette.Themes) error {
	for i, t := range themes {
		marker := " "
		if i == palette.DefaultIndex {
			marker = "*"
		}
		if _, err := fmt.Fprintf(w, "%s %2d  %s\n", marker, i, t.Name); err != nil {
			return err
		}
	}
	return nil
}

// PreviewCmd shows an image in the terminal.
type PreviewCmd struct {
	Theme  string `short:"t" help:"Initial theme index or name" default:"3"`
	Filter string `help:"Scaling filter (nearest, bilinear, catmullrom)" default:"bilinear"`
	Input  string `arg:"" type:"existingfile" help:"Source image"`
}

func (c *PreviewCmd) Run(g *Globals) error {
	filter, err := surface.ParseFilter(c.Filter)
	if err != nil {
		return err
	}
	start, err := themeIndex(g.themes, c.Theme)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(c.Input)
	if err != nil {
		return fmt.Errorf("read %q: %w", c.Input, err)
	}

	d, err := surface.NewDisplayByName("terminal", surface.Options{})
	if err != nil {
		return err
	}
	term, ok := d.(*surface.TerminalDisplay)
	if !ok {
		_ = d.Close()
		return fmt.Errorf("display %T does not deliver key events", d)
	}
	defer term.Close()

	opts := append(g.rendererOptions(),
		retint.WithDisplay(term),
		retint.WithFilter(filter),
		retint.WithPalette(g.themes[start].Palette),
	)
	r, err := retint.New(opts...)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := r.LoadImage(data); err != nil {
		return err
	}
	return previewLoop(r, term, g.themes, start)
}

// previewLoop handles terminal events until the user quits.
func previewLoop(r *retint.Renderer, term *surface.TerminalDisplay, themes palette.Themes, current int) error {
	for {
		switch ev := term.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			term.Sync()
			r.DrawPreview(nil)
		case *tcell.EventKey:
			step := 0
			switch {
			case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC, ev.Rune() == 'q':
				return nil
			case ev.Key() == tcell.KeyRight, ev.Key() == tcell.KeyDown:
				step = 1
			case ev.Key() == tcell.KeyLeft, ev.Key() == tcell.KeyUp:
				step = -1
			}
			if step == 0 {
				continue
			}
			current = (current + step + len(themes)) % len(themes)
			if err := r.SetPalette(themes[current].Palette); err != nil {
				return err
			}
			slog.Debug("theme selected", "index", current, "name", themes[current].Name)
		}
	}
}

// themeIndex resolves key to a position in themes.
func themeIndex(themes palette.Themes, key string) (int, error) {
	t, err := themes.Lookup(key)
	if err != nil {
		return 0, err
	}
	for i := range themes {
		if themes[i].Name == t.Name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", palette.ErrThemeNotFound, key)
}
