package interpreter

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"k8s.io/apimachinery/pkg/util/validation"
	"sigs.k8s.io/yaml"
)

// ErrInvalidTemplate is returned when a catalog entry fails validation.
var ErrInvalidTemplate = errors.New("invalid deployment template")

// Template is a named image and port pair used to fill in a deploy command.
type Template struct {
	Name  string `json:"name"`
	Image string `json:"image"`
	Port  int32  `json:"port"`
}

// catalogFile is the on-disk layout read by LoadCatalog.
type catalogFile struct {
	Templates []Template `json:"templates"`
}

// Catalog is the immutable set of templates known to the interpreter.
// It is safe for concurrent use because nothing mutates it after
// construction.
type Catalog struct {
	templates map[string]Template
	names     []string
}

// DefaultTemplates are used when no catalog file is configured.
func DefaultTemplates() []Template {
	return []Template{
		{Name: "nginx", Image: "nginx:latest", Port: 80},
		{Name: "redis", Image: "redis:latest", Port: 6379},
		{Name: "myapp", Image: "nginx:alpine", Port: 80},
	}
}

// DefaultCatalog returns a catalog holding DefaultTemplates.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultTemplates()...)
	if err != nil {
		panic(fmt.Sprintf("default templates are invalid: %v", err))
	}
	return c
}

// NewCatalog validates templates and builds a catalog. Names must be
// unique lowercase DNS-1123 labels since they become deployment names.
func NewCatalog(templates ...Template) (*Catalog, error) {
	c := &Catalog{templates: make(map[string]Template, len(templates))}

	for i, t := range templates {
		if err := validateTemplate(t); err != nil {
			return nil, fmt.Errorf("template %d: %w", i, err)
		}
		if _, exists := c.templates[t.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidTemplate, t.Name)
		}
		c.templates[t.Name] = t
		c.names = append(c.names, t.Name)
	}
	sort.Strings(c.names)

	return c, nil
}

func validateTemplate(t Template) error {
	if t.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTemplate)
	}
	if errs := validation.IsDNS1123Label(t.Name); len(errs) > 0 {
		return fmt.Errorf("%w: name %q: %s", ErrInvalidTemplate, t.Name, errs[0])
	}
	if t.Image == "" {
		return fmt.Errorf("%w: %q has no image", ErrInvalidTemplate, t.Name)
	}
	if t.Port < 1 || t.Port > 65535 {
		return fmt.Errorf("%w: %q port %d out of range 1-65535", ErrInvalidTemplate, t.Name, t.Port)
	}
	return nil
}

// ParseCatalog decodes a YAML (or JSON) catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse template catalog: %w", err)
	}
	if len(file.Templates) == 0 {
		return nil, fmt.Errorf("%w: catalog defines no templates", ErrInvalidTemplate)
	}
	return NewCatalog(file.Templates...)
}

// LoadCatalog reads a catalog file. An empty path yields DefaultCatalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template catalog %s: %w", path, err)
	}

	return ParseCatalog(data)
}

// Lookup returns the template with the exact given name.
func (c *Catalog) Lookup(name string) (Template, bool) {
	t, ok := c.templates[name]
	return t, ok
}

// Names returns the template names in sorted order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	return len(c.names)
}
