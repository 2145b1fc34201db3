// Package content holds the prompts sent to the text model and the fallback
// templates posted when generation is skipped.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed library.yaml
var defaultLibrary []byte

// Rand is the random source every selection draws from. *math/rand.Rand
// satisfies it; tests pass a seeded one.
type Rand interface {
	Intn(n int) int
}

type ContentType struct {
	Name      string   `yaml:"name"`
	Templates []string `yaml:"templates"`
}

// Replacement lists the candidate phrases for one {name} placeholder.
type Replacement struct {
	Name    string   `yaml:"name"`
	Options []string `yaml:"options"`
}

type Library struct {
	Prompts      []string      `yaml:"prompts"`
	ContentTypes []ContentType `yaml:"content_types"`
	Replacements []Replacement `yaml:"replacements"`
}

var rePlaceholder = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Default returns the built-in library.
func Default() (*Library, error) {
	return Parse(defaultLibrary)
}

// Load reads a library file, or the built-in one when path is empty.
func Load(path string) (*Library, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content library: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates a YAML library.
func Parse(b []byte) (*Library, error) {
	var lib Library
	if err := yaml.Unmarshal(b, &lib); err != nil {
		return nil, fmt.Errorf("decode content library: %w", err)
	}
	if err := lib.Validate(); err != nil {
		return nil, err
	}
	return &lib, nil
}

// Validate checks that every template renders with nothing left unresolved.
func (l *Library) Validate() error {
	var errs []error
	if len(l.Prompts) == 0 {
		errs = append(errs, errors.New("no prompts"))
	}
	for i, p := range l.Prompts {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Errorf("prompt %d is empty", i))
		}
	}
	if len(l.ContentTypes) == 0 {
		errs = append(errs, errors.New("no content types"))
	}

	known := make(map[string]bool, len(l.Replacements))
	for _, r := range l.Replacements {
		if len(r.Options) == 0 {
			errs = append(errs, fmt.Errorf("replacement %q has no options", r.Name))
		}
		if known[r.Name] {
			errs = append(errs, fmt.Errorf("replacement %q defined twice", r.Name))
		}
		known[r.Name] = true
	}

	for _, ct := range l.ContentTypes {
		if len(ct.Templates) == 0 {
			errs = append(errs, fmt.Errorf("content type %q has no templates", ct.Name))
		}
		for i, tpl := range ct.Templates {
			seen := map[string]bool{}
			for _, name := range Placeholders(tpl) {
				if !known[name] {
					errs = append(errs, fmt.Errorf("%s[%d]: unknown placeholder {%s}", ct.Name, i, name))
				}
				// only the first occurrence of a name is substituted
				if seen[name] {
					errs = append(errs, fmt.Errorf("%s[%d]: placeholder {%s} repeated", ct.Name, i, name))
				}
				seen[name] = true
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid content library: %w", errors.Join(errs...))
	}
	return nil
}

// Placeholders returns the names of the {name} tokens in s, in order,
// including repeats.
func Placeholders(s string) []string {
	var names []string
	for _, m := range rePlaceholder.FindAllStringSubmatch(s, -1) {
		names = append(names, m[1])
	}
	return names
}
