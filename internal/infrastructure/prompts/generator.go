package prompts

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

type ExtractData struct {
	NoTextMarker string
	Languages    []string
}

type LocateData struct {
	Width     int
	Height    int
	Languages []string
}

var funcs = template.FuncMap{"join": strings.Join}

// Render executes a prompt template against data.
func Render(name, baseTemplate string, data any) (string, error) {
	tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(baseTemplate)
	if err != nil {
		return "", fmt.Errorf("parse %s prompt: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", name, err)
	}

	return strings.TrimSpace(buf.String()), nil
}

func Extract(data ExtractData) (string, error) {
	return Render("extract", ExtractPrompt, data)
}

func Locate(data LocateData) (string, error) {
	return Render("locate", LocatePrompt, data)
}
