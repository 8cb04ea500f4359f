// Package templates provides embedded template files for project creation.
package templates

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed init/*
var FS embed.FS

// Data contains the values substituted into project templates.
type Data struct {
	ModulePath string
	AppName    string
	AppID      string
	Backend    string
}

// Render reads an embedded template and executes it with data.
func Render(path string, data Data) (string, error) {
	content, err := FS.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", path, err)
	}
	tmpl, err := template.New(path).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", path, err)
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", path, err)
	}
	return buf.String(), nil
}
