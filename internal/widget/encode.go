package widget

import (
	"encoding/json"
	"fmt"
	"io"
)

type Format string

const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseFormat accepts a query/flag spelling; empty selects fallback.
func ParseFormat(s string, fallback Format) (Format, bool) {
	switch s {
	case "":
		return fallback, true
	case "svg", "png", "json", "text":
		return Format(s), true
	case "txt", "ansi":
		return FormatText, true
	}
	return "", false
}

func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatJSON:
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}

// Encode writes w in the given format.
func Encode(out io.Writer, w *Widget, f Format) error {
	switch f {
	case FormatSVG:
		return RenderSVG(out, w)
	case FormatPNG:
		return RenderPNG(out, w)
	case FormatJSON:
		return json.NewEncoder(out).Encode(w)
	case FormatText:
		_, err := io.WriteString(out, RenderTerminal(w))
		return err
	}
	return fmt.Errorf("unsupported format %q", f)
}
