package widget

import (
	"embed"
	"errors"
	"io"
	"io/fs"
	"strconv"
	"text/template"
)

//go:embed templates
var templatesFS embed.FS

var svgTmpl *template.Template

var svgFuncs = template.FuncMap{
	"titleFrom":  TitleFrom.Hex,
	"titleTo":    TitleTo.Hex,
	"titleColor": TitleColor.Hex,
	"errorColor": ErrorColor.Hex,
	"titleX":     func(r Rect) int { return r.X + titleTextDX },
	"titleY":     func(r Rect) int { return r.Y + titleTextDY },
	"errorY":     func(i int) int { return errorTextTop + i*errorLineHeight },
	"reading":    Reading,
}

// loadTemplatesFromFS parses the SVG templates under dir in fsys.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.New("widget").Funcs(svgFuncs).ParseFS(sub, "*.tmpl")
	if err != nil {
		return err
	}
	svgTmpl = tmpl
	return nil
}

// LoadTemplates loads the embedded SVG templates. Call during startup before
// rendering; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(templatesFS, "templates")
}

// RenderSVG writes w as a standalone SVG document.
func RenderSVG(out io.Writer, w *Widget) error {
	if svgTmpl == nil {
		return errors.New("svg template not loaded: call widget.LoadTemplates during startup")
	}
	return svgTmpl.ExecuteTemplate(out, "widget.svg", w)
}

// Reading formats a sample value for labels; missing values read "n/a".
func Reading(v *float64, unit string) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64) + unit
}
