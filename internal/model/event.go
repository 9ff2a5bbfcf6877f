package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidColor is returned by ParseColor for tokens outside the palette.
var ErrInvalidColor = errors.New("invalid color")

// Color is one of the fixed palette tokens an event can be tagged with.
type Color string

const (
	ColorBlue   Color = "blue"
	ColorRed    Color = "red"
	ColorGreen  Color = "green"
	ColorPurple Color = "purple"
	ColorYellow Color = "yellow"
	ColorPink   Color = "pink"
)

// DefaultColor is assigned to new events created without a color.
const DefaultColor = ColorBlue

// Palette lists every valid color in picker order.
var Palette = []Color{ColorBlue, ColorRed, ColorGreen, ColorPurple, ColorYellow, ColorPink}

// Valid reports whether c is a palette token.
func (c Color) Valid() bool {
	for _, p := range Palette {
		if c == p {
			return true
		}
	}
	return false
}

func (c Color) String() string { return string(c) }

// ParseColor converts user input into a palette Color. Matching is
// case-insensitive and ignores surrounding whitespace.
func ParseColor(s string) (Color, error) {
	c := Color(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w %q (want one of %s)", ErrInvalidColor, s, PaletteList())
	}
	return c, nil
}

// PaletteList returns the palette as a comma-separated list.
func PaletteList() string {
	names := make([]string, len(Palette))
	for i, p := range Palette {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// EventData holds every event field except the store-assigned ID.
type EventData struct {
	Title       string    `json:"title" yaml:"title"`
	Description *string   `json:"description,omitempty" yaml:"description,omitempty"`
	Date        time.Time `json:"date" yaml:"date"`
	// StartTime and EndTime are zero-padded 24h "HH:MM" clocks. They are kept
	// for all-day events too.
	StartTime string `json:"start_time" yaml:"start_time"`
	EndTime   string `json:"end_time" yaml:"end_time"`
	Color     Color  `json:"color" yaml:"color"`
	AllDay    bool   `json:"all_day" yaml:"all_day"`
}

// Event is a single calendar entry.
type Event struct {
	ID        string `json:"id" yaml:"id"`
	EventData `yaml:",inline"`
}

// DescriptionText returns the description or "" when unset.
func (d EventData) DescriptionText() string {
	if d.Description == nil {
		return ""
	}
	return *d.Description
}
