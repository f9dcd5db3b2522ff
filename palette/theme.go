// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package palette

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/text/cases"
)

// DefaultIndex is the position of the fallback theme in DefaultThemes.
const DefaultIndex = 3

var (
	// ErrThemeNotFound is returned by Themes.Lookup when no theme matches.
	ErrThemeNotFound = errors.New("palette: theme not found")

	// ErrAmbiguousTheme is returned by Themes.Lookup when a partial name
	// matches more than one theme.
	ErrAmbiguousTheme = errors.New("palette: ambiguous theme name")

	// ErrInvalidColor is returned when a theme entry is not a valid color.
	ErrInvalidColor = errors.New("palette: invalid color entry")
)

//go:embed themes.json
var defaultThemesJSON []byte

// Theme is a named palette.
type Theme struct {
	Name    string
	Palette Palette
}

// Themes is an ordered theme list as read from a themes file.
type Themes []Theme

type themeJSON struct {
	Name string            `json:"name"`
	Data []json.RawMessage `json:"data"`
}

// LoadThemes parses a JSON theme list of the form
//
//	[{"name": "Mocha", "data": [[245, 224, 220, 255], "#f2cdcd", ...]}]
//
// Each entry is either an array of three or four integers in [0,255] (alpha
// defaults to 255) or a "#rrggbb" / "#rrggbbaa" hex string. Every theme must
// hold exactly Size entries.
func LoadThemes(r io.Reader) (Themes, error) {
	var raw []themeJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("palette: decode themes: %w", err)
	}

	themes := make(Themes, 0, len(raw))
	for i, t := range raw {
		name := t.Name
		if name == "" {
			name = "theme " + strconv.Itoa(i)
		}
		p := make(Palette, 0, len(t.Data))
		for j, entry := range t.Data {
			c, err := parseEntry(entry)
			if err != nil {
				return nil, fmt.Errorf("palette: theme %q entry %d: %w", name, j, err)
			}
			p = append(p, c)
		}
		if err := p.Validate(Size); err != nil {
			return nil, fmt.Errorf("palette: theme %q: %w", name, err)
		}
		themes = append(themes, Theme{Name: name, Palette: p})
	}
	return themes, nil
}

// LoadThemesFile reads a theme list from the named JSON file.
func LoadThemesFile(path string) (Themes, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("palette: open themes: %w", err)
	}
	defer f.Close()
	return LoadThemes(f)
}

// DefaultThemes returns the embedded theme list. The returned slice is a
// fresh copy and may be modified by the caller.
func DefaultThemes() Themes {
	themes, err := LoadThemes(bytes.NewReader(defaultThemesJSON))
	if err != nil {
		panic("palette: embedded themes are invalid: " + err.Error())
	}
	return themes
}

// Default returns the fallback palette used before any theme is chosen.
func Default() Palette {
	return DefaultThemes()[DefaultIndex].Palette
}

// Names returns the theme names in order.
func (ts Themes) Names() []string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Name
	}
	return names
}

// Lookup finds a theme by index or by name. Name matching is
// case-insensitive; an exact match wins, otherwise a unique partial match is
// accepted ("mocha" selects "Catppuccin Mocha").
func (ts Themes) Lookup(key string) (Theme, error) {
	if idx, err := strconv.Atoi(key); err == nil {
		if idx < 0 || idx >= len(ts) {
			return Theme{}, fmt.Errorf("%w: index %d out of range [0,%d)", ErrThemeNotFound, idx, len(ts))
		}
		return ts[idx], nil
	}

	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(key))
	if want == "" {
		return Theme{}, fmt.Errorf("%w: empty name", ErrThemeNotFound)
	}

	match := -1
	for i, t := range ts {
		name := fold.String(t.Name)
		if name == want {
			return t, nil
		}
		if strings.Contains(name, want) {
			if match >= 0 {
				return Theme{}, fmt.Errorf("%w: %q matches %q and %q", ErrAmbiguousTheme, key, ts[match].Name, t.Name)
			}
			match = i
		}
	}
	if match < 0 {
		return Theme{}, fmt.Errorf("%w: %q", ErrThemeNotFound, key)
	}
	return ts[match], nil
}

func parseEntry(raw json.RawMessage) (color.NRGBA, error) {
	var hex string
	if err := json.Unmarshal(raw, &hex); err == nil {
		return parseHex(hex)
	}

	var ch []int
	if err := json.Unmarshal(raw, &ch); err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %s", ErrInvalidColor, raw)
	}
	if len(ch) != 3 && len(ch) != 4 {
		return color.NRGBA{}, fmt.Errorf("%w: want 3 or 4 channels, got %d", ErrInvalidColor, len(ch))
	}
	for _, v := range ch {
		if v < 0 || v > 255 {
			return color.NRGBA{}, fmt.Errorf("%w: channel %d out of range", ErrInvalidColor, v)
		}
	}
	c := color.NRGBA{R: uint8(ch[0]), G: uint8(ch[1]), B: uint8(ch[2]), A: 255}
	if len(ch) == 4 {
		c.A = uint8(ch[3])
	}
	return c, nil
}

func parseHex(s string) (color.NRGBA, error) {
	alpha := uint8(255)
	if len(s) == 9 && s[0] == '#' {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		alpha = uint8(a)
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}
