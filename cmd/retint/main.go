// Command retint remaps images onto 40-color palette themes.
//
// Usage:
//
//	retint export --theme mocha -o out.png photo.jpg
//	retint themes
//	retint preview photo.jpg
package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/gogpu/retint"
	"github.com/gogpu/retint/palette"
)

// Globals are the flags shared by every command.
type Globals struct {
	Verbose  bool   `short:"v" help:"Log debug diagnostics to stderr"`
	Software bool   `help:"Render on the CPU instead of the GPU"`
	Workers  int    `help:"CPU renderer goroutines, 0 for one per core" default:"0"`
	Themes   string `help:"JSON theme file replacing the built-in themes" type:"existingfile"`

	themes palette.Themes `kong:"-"`
}

// Validate loads the theme list once so every command sees the same one.
func (g *Globals) Validate() error {
	if g.Workers < 0 {
		return errInvalidWorkers
	}
	if g.Themes == "" {
		g.themes = palette.DefaultThemes()
		return nil
	}
	themes, err := palette.LoadThemesFile(g.Themes)
	if err != nil {
		return err
	}
	g.themes = themes
	return nil
}

// rendererOptions maps the global flags onto renderer options.
func (g *Globals) rendererOptions() []retint.Option {
	opts := []retint.Option{retint.WithWorkers(g.Workers)}
	if g.Software {
		opts = append(opts, retint.WithSoftware())
	}
	return opts
}

type CLI struct {
	Globals

	Export  ExportCmd  `cmd:"" help:"Remap an image and write it as PNG"`
	List    ThemesCmd  `cmd:"" name:"themes" help:"List the available themes"`
	Preview PreviewCmd `cmd:"" help:"Show an image in the terminal; arrow keys cycle themes, q quits"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("retint"),
		kong.Description("Remap images onto 40-color palette themes."),
		kong.UsageOnError(),
	)

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	retint.SetLogger(logger)

	err := kctx.Run(&cli.Globals)
	kctx.FatalIfErrorf(err)
}
