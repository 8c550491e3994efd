package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/aurora"
	"github.com/etnz/aurora/date"
	"github.com/shopspring/decimal"
)

//go:embed *.md
var templates embed.FS

// funcs are the helpers available to every template.
var funcs = template.FuncMap{
	"money": func(v decimal.Decimal, cur string) string { return aurora.M(v, cur).String() },
	"signed": func(v decimal.Decimal, cur string) string {
		return aurora.M(v, cur).SignedString()
	},
	"qty":    aurora.FormatQuantity,
	"number": aurora.FormatNumber,
	"cell":   cell,
	"day": func(d date.Date) string {
		if d.IsZero() {
			return "-"
		}
		return d.String()
	},
	"upper": strings.ToUpper,
}

// cell escapes a value for a markdown table cell.
func cell(s string) string {
	if s == "" {
		return "-"
	}
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// renderTemplate renders a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name results in an empty template.
		if file != "" {
			content, err = fs.ReadFile(templates, file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
