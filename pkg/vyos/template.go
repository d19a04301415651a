package vyos

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"text/template"

	"github.com/erikjseidel/salt-netdb/pkg/util"
)

//go:embed templates
var templateFS embed.FS

// Templates lists the embedded template names.
func Templates() []string {
	var names []string
	_ = fs.WalkDir(templateFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".tmpl") {
			return err
		}
		names = append(names, strings.TrimSuffix(strings.TrimPrefix(path, "templates/"), ".tmpl"))
		return nil
	})
	sort.Strings(names)
	return names
}

// Render executes the request's template and returns the non-blank
// configuration lines it produced.
func Render(req TemplateRequest) ([]string, error) {
	src := req.Source
	if req.Name != "" && src == "" {
		data, err := templateFS.ReadFile("templates/" + req.Name + ".tmpl")
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", req.Name, util.ErrNotFound)
		}
		src = string(data)
	}
	if src == "" {
		return nil, util.NewValidationError("template: name or source required")
	}

	tmpl, err := template.New(templateLabel(req)).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, util.NewValidationError(fmt.Sprintf("template %s: %v", templateLabel(req), err))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, req.Vars); err != nil {
		return nil, util.NewValidationError(fmt.Sprintf("template %s: %v", templateLabel(req), err))
	}

	var lines []string
	for _, l := range strings.Split(buf.String(), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines, nil
}
