// Package pages serves the static informational pages from YAML.
package pages

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultPages []byte

var ErrNotFound = errors.New("page not found")

type Item struct {
	Label  string   `yaml:"label" json:"label"`
	Value  string   `yaml:"value,omitempty" json:"value,omitempty"`
	Text   string   `yaml:"text,omitempty" json:"text,omitempty"`
	Points []string `yaml:"points,omitempty" json:"points,omitempty"`
}

type Section struct {
	Heading string `yaml:"heading" json:"heading"`
	Body    string `yaml:"body,omitempty" json:"body,omitempty"`
	Items   []Item `yaml:"items,omitempty" json:"items,omitempty"`
}

type Page struct {
	Slug        string    `yaml:"slug" json:"slug"`
	Path        string    `yaml:"path" json:"path"`
	Title       string    `yaml:"title" json:"title"`
	Subtitle    string    `yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
	Description string    `yaml:"description" json:"description"`
	Keywords    string    `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	Sections    []Section `yaml:"sections" json:"sections"`
}

type file struct {
	Pages []Page `yaml:"pages"`
}

// Library is an immutable set of pages keyed by slug.
type Library struct {
	order  []string
	bySlug map[string]Page
}

// Default returns the built-in pages.
func Default() (*Library, error) {
	return Parse(defaultPages)
}

// Load reads pages from path, or the built-in pages when path is empty.
func Load(path string) (*Library, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pages file: %w", err)
	}
	return Parse(b)
}

// Parse decodes a pages document. Slugs must be unique and non-empty.
func Parse(b []byte) (*Library, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode pages: %w", err)
	}
	lib := &Library{bySlug: make(map[string]Page, len(f.Pages))}
	for i, p := range f.Pages {
		p.Slug = strings.TrimSpace(p.Slug)
		if p.Slug == "" {
			return nil, fmt.Errorf("page %d: missing slug", i)
		}
		if _, dup := lib.bySlug[p.Slug]; dup {
			return nil, fmt.Errorf("page %q: duplicate slug", p.Slug)
		}
		if p.Path == "" {
			p.Path = "/" + p.Slug
		}
		if p.Sections == nil {
			p.Sections = []Section{}
		}
		lib.bySlug[p.Slug] = p
		lib.order = append(lib.order, p.Slug)
	}
	return lib, nil
}

func (l *Library) Get(slug string) (Page, error) {
	p, ok := l.bySlug[strings.ToLower(strings.TrimSpace(slug))]
	if !ok {
		return Page{}, ErrNotFound
	}
	return p, nil
}

// Slugs lists the pages in document order.
func (l *Library) Slugs() []string {
	return append([]string(nil), l.order...)
}
