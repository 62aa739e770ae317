package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"text/template"

	"corporate_analyst/pkg/core/utils"
)

//go:embed library
var library embed.FS

// LoadDefaults registers the embedded prompt library.
func LoadDefaults(r *Registry) error {
	sub, err := fs.Sub(library, "library")
	if err != nil {
		return err
	}
	return loadPrompts(r, sub)
}

// LoadFromDirectory registers every .json prompt under dir, replacing
// prompts with the same ID. Expected structure:
//
//	dir/
//	  category1/
//	    prompt1.json
//	  category2/
//	    prompt2.json
func LoadFromDirectory(r *Registry, dir string) error {
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("prompts directory not usable: %w", err)
	}
	return loadPrompts(r, os.DirFS(dir))
}

// NewLibrary returns a registry with the embedded prompts, overridden by
// overrideDir when it is set.
func NewLibrary(overrideDir string) (*Registry, error) {
	r := NewRegistry()
	if err := LoadDefaults(r); err != nil {
		return nil, fmt.Errorf("failed to load embedded prompts: %w", err)
	}
	if overrideDir != "" {
		if err := LoadFromDirectory(r, overrideDir); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// loadPrompts walks fsys for .json files. Files may be hand-edited, so they
// go through the lenient parser.
func loadPrompts(r *Registry, fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".json" {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}

		var pt PromptTemplate
		if _, err := utils.SmartParse(string(data), &pt); err != nil {
			return fmt.Errorf("failed to parse %s: %w", p, err)
		}

		// Auto-generate ID from path if not specified
		if pt.ID == "" {
			pt.ID = generateIDFromPath(p)
		}
		// Auto-detect category from folder name if not specified
		if pt.Category == "" {
			pt.Category = detectCategory(p)
		}

		if err := r.Register(&pt); err != nil {
			return fmt.Errorf("failed to register %s: %w", pt.ID, err)
		}
		return nil
	})
}

// generateIDFromPath creates a prompt ID from the file path
// e.g., "report/equity_research.json" -> "report.equity_research"
func generateIDFromPath(p string) string {
	return strings.ReplaceAll(strings.TrimSuffix(p, ".json"), "/", ".")
}

// detectCategory extracts the category from the folder structure
func detectCategory(p string) string {
	parts := strings.Split(p, "/")
	if len(parts) > 1 {
		return parts[0]
	}
	return "default"
}

// RenderUserPrompt executes the user prompt template. Missing required
// variables are an error; missing optional ones take their default.
func RenderUserPrompt(pt *PromptTemplate, ctx *PromptExecutionContext) (string, error) {
	if pt.UserPromptTmpl == "" {
		return "", nil
	}

	vars := make(map[string]interface{}, len(ctx.Variables)+len(pt.Variables))
	for k, v := range ctx.Variables {
		vars[k] = v
	}
	for _, v := range pt.Variables {
		if val, ok := vars[v.Name]; ok && val != nil && val != "" {
			continue
		}
		if v.Required {
			return "", fmt.Errorf("prompt %s: missing required variable %s", pt.ID, v.Name)
		}
		vars[v.Name] = v.Default
	}

	tmpl, err := template.New(pt.ID).Option("missingkey=error").Parse(pt.UserPromptTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
