// Package prompts provides a loader for externalized LLM prompt templates.
// Prompts are stored as JSON files and embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"
)

// Prompt files shipped with the binary.
const (
	AnalysisFile  = "analysis.json"
	TailoringFile = "tailoring.json"
)

// SystemKey holds the system instruction in every prompt file.
const SystemKey = "system"

//go:embed *.json
var promptFiles embed.FS

// library is every embedded prompt file, parsed on first use.
var library = sync.OnceValues(func() (map[string]map[string]string, error) {
	return parseFiles(promptFiles)
})

func parseFiles(fsys fs.FS) (map[string]map[string]string, error) {
	names, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return nil, err
	}

	files := make(map[string]map[string]string, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", name, err)
		}
		var prompts map[string]string
		if err := json.Unmarshal(data, &prompts); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", name, err)
		}
		if strings.TrimSpace(prompts[SystemKey]) == "" {
			return nil, fmt.Errorf("prompt file %s has no %q prompt", name, SystemKey)
		}
		files[name] = prompts
	}
	return files, nil
}

func file(filename string) (map[string]string, error) {
	files, err := library()
	if err != nil {
		return nil, err
	}
	prompts, ok := files[filename]
	if !ok {
		return nil, fmt.Errorf("prompt file %s not found", filename)
	}
	return prompts, nil
}

// Get retrieves a prompt by filename and key.
// The filename should not include the path (e.g., "analysis.json").
func Get(filename, key string) (string, error) {
	prompts, err := file(filename)
	if err != nil {
		return "", err
	}

	prompt, exists := prompts[key]
	if !exists {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// Render loads a prompt and fills its placeholders in one step.
func Render(filename, key string, data map[string]string) (string, error) {
	template, err := Get(filename, key)
	if err != nil {
		return "", err
	}
	return Format(template, data), nil
}

// Format replaces template placeholders in the form {{.Key}} with values from data.
// Values are inserted literally; a value containing another placeholder is not expanded again.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	pairs := make([]string, 0, len(data)*2)
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
