package widget

import (
	"strings"

	"github.com/fakhrymubarak/weather-stripes/internal/colorscale"
	"github.com/fakhrymubarak/weather-stripes/internal/model"
)

var (
	Background = colorscale.MustHex("#1c1c1c")
	TitleFrom  = colorscale.MustHex("#B22222")
	TitleTo    = colorscale.MustHex("#8B0000")
	TitleColor = colorscale.MustHex("#ffffff")
	ErrorColor = colorscale.MustHex("#ff6b6b")
)

const (
	errorWrapAt = 24
	errorSize   = 180

	// title text offset inside the title bar
	titleTextDX = 14
	titleTextDY = 21

	errorTextTop    = 24
	errorLineHeight = 16
)

type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type Stripe struct {
	Rect
	Color   colorscale.RGB `json:"color"`
	Label   string         `json:"label"`
	Value   *float64       `json:"value"`
	Current bool           `json:"current,omitempty"`
}

// Widget is a fully laid out widget; encoders only draw what is here.
type Widget struct {
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	Background colorscale.RGB `json:"background"`
	Title      string         `json:"title,omitempty"`
	TitleBar   Rect           `json:"title_bar"`
	Kind       model.Kind     `json:"kind,omitempty"`
	Unit       string         `json:"unit,omitempty"`
	Stripes    []Stripe       `json:"stripes,omitempty"`
	Error      []string       `json:"error,omitempty"`
}

// Style holds the pixel metrics of one widget kind. A slot is the stripe
// plus the blank space below it.
type Style struct {
	Padding     int
	Width       int
	TitleHeight int
	TitleGap    int

	CurrentHeight int
	CurrentSlot   int
	StripeHeight  int
	StripeSlot    int
	Gap           int
}

var TemperatureStyle = Style{
	Padding:       10,
	Width:         160,
	TitleHeight:   30,
	TitleGap:      1,
	CurrentHeight: 10,
	CurrentSlot:   11,
	StripeHeight:  11,
	StripeSlot:    12,
	Gap:           1,
}

var CloudStyle = Style{
	Padding:       10,
	Width:         160,
	TitleHeight:   30,
	TitleGap:      1,
	CurrentHeight: 2,
	CurrentSlot:   2,
	StripeHeight:  2,
	StripeSlot:    2,
	Gap:           1,
}

// ScaleFor returns the color scale for a widget kind.
func ScaleFor(kind model.Kind) colorscale.Scale {
	if kind == model.KindCloudCover {
		return colorscale.CloudCover
	}
	return colorscale.Temperature
}

// StyleFor returns the layout metrics for a widget kind.
func StyleFor(kind model.Kind) Style {
	if kind == model.KindCloudCover {
		return CloudStyle
	}
	return TemperatureStyle
}

// Build lays out series with the scale and style of its kind.
func Build(series *model.Series) *Widget {
	return Layout(series, ScaleFor(series.Kind), StyleFor(series.Kind))
}

// Layout stacks a title bar and one stripe per sample, top to bottom in
// sample order.
func Layout(series *model.Series, scale colorscale.Scale, style Style) *Widget {
	w := &Widget{
		Width:      style.Width + 2*style.Padding,
		Background: Background,
		Title:      series.City,
		TitleBar:   Rect{X: style.Padding, Y: style.Padding, W: style.Width, H: style.TitleHeight},
		Kind:       series.Kind,
		Unit:       series.Unit,
		Stripes:    make([]Stripe, 0, len(series.Samples)),
	}

	y := style.Padding + style.TitleHeight + style.TitleGap
	for i, s := range series.Samples {
		if i > 0 {
			y += style.Gap
		}
		h, slot := style.StripeHeight, style.StripeSlot
		if s.Current && series.Kind == model.KindTemperature {
			h, slot = style.CurrentHeight, style.CurrentSlot
		}
		w.Stripes = append(w.Stripes, Stripe{
			Rect:    Rect{X: style.Padding, Y: y, W: style.Width, H: h},
			Color:   scale.Color(s.Value),
			Label:   s.Label,
			Value:   s.Value,
			Current: s.Current,
		})
		y += slot
	}
	w.Height = y + style.Padding
	return w
}

// Error lays out a widget that only shows "Error: <message>".
func Error(message string) *Widget {
	return &Widget{
		Width:      errorSize,
		Height:     errorSize,
		Background: Background,
		Error:      wrap("Error: "+message, errorWrapAt),
	}
}

// wrap breaks s into lines of at most width runes, splitting on spaces
// where possible.
func wrap(s string, width int) []string {
	var lines []string
	var line []rune
	for _, word := range strings.Fields(s) {
		r := []rune(word)
		for len(r) > width {
			if len(line) > 0 {
				lines = append(lines, string(line))
				line = nil
			}
			lines = append(lines, string(r[:width]))
			r = r[width:]
		}
		switch {
		case len(line) == 0:
			line = r
		case len(line)+1+len(r) <= width:
			line = append(append(line, ' '), r...)
		default:
			lines = append(lines, string(line))
			line = r
		}
	}
	if len(line) > 0 {
		lines = append(lines, string(line))
	}
	return lines
}
