package blocks

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Figliar/extension-plus-API/errors"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// SlotKind is the role of a named connection point or field on a block
type SlotKind string

const (
	SlotValue     SlotKind = "value"
	SlotStatement SlotKind = "statement"
	SlotField     SlotKind = "field"
	SlotVariable  SlotKind = "variable"
	SlotLabel     SlotKind = "label"
)

// IsField reports whether the slot holds a scalar instead of a connection
func (k SlotKind) IsField() bool {
	return k == SlotField || k == SlotVariable || k == SlotLabel
}

// Editable reports whether generic argument filling may write the field
func (k SlotKind) Editable() bool {
	return k == SlotField || k == SlotVariable
}

// Shape describes which statement and output terminals a block has
type Shape string

const (
	ShapeValue     Shape = "value"
	ShapeStatement Shape = "statement"
	ShapeHat       Shape = "hat"
)

// Mutator names the family of mutations a template accepts
type Mutator string

const (
	MutatorNone      Mutator = ""
	MutatorItems     Mutator = "items"
	MutatorIf        Mutator = "if"
	MutatorProcedure Mutator = "procedure"
)

// Slot is one named input or field of a template
type Slot struct {
	Name    string
	Kind    SlotKind
	Default string
}

// UnmarshalYAML reads the compact "<kind> <name>[=<default>]" form
func (s *Slot) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	kind, rest, ok := strings.Cut(strings.TrimSpace(raw), " ")
	if !ok || rest == "" {
		return fmt.Errorf("line %d: slot %q must be \"<kind> <name>\"", node.Line, raw)
	}
	switch SlotKind(kind) {
	case SlotValue, SlotStatement, SlotField, SlotVariable, SlotLabel:
	default:
		return fmt.Errorf("line %d: unknown slot kind %q", node.Line, kind)
	}
	s.Kind = SlotKind(kind)
	s.Name, s.Default, _ = strings.Cut(strings.TrimSpace(rest), "=")
	return nil
}

// Template is a catalog entry a block is instantiated from
type Template struct {
	Name    string  `yaml:"-"`
	Shape   Shape   `yaml:"shape"`
	Mutator Mutator `yaml:"mutator"`
	Slots   []Slot  `yaml:"slots"`
}

// Slot finds a static slot by name
func (t *Template) Slot(name string) (Slot, bool) {
	for _, s := range t.Slots {
		if s.Name == name {
			return s, true
		}
	}
	return Slot{}, false
}

// Catalog is the set of templates a workspace can instantiate
type Catalog struct {
	templates map[string]*Template
}

var (
	defaultCatalog     *Catalog
	defaultCatalogErr  error
	defaultCatalogOnce sync.Once
)

// DefaultCatalog returns the embedded catalog, parsed on first use
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		defaultCatalog, defaultCatalogErr = LoadCatalog(bytes.NewReader(defaultCatalogYAML))
	})
	if defaultCatalogErr != nil {
		panic(fmt.Sprintf("embedded block catalog is invalid: %v", defaultCatalogErr))
	}
	return defaultCatalog
}

// LoadCatalog decodes a catalog document
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var doc struct {
		Templates map[string]*Template `yaml:"templates"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.WrapError(err, errors.CodeUnknownTemplate, "cannot decode block catalog")
	}

	c := &Catalog{templates: make(map[string]*Template, len(doc.Templates))}
	for name, t := range doc.Templates {
		if t == nil {
			t = &Template{}
		}
		t.Name = name
		if t.Shape == "" {
			t.Shape = ShapeStatement
		}
		if err := t.validate(); err != nil {
			return nil, err
		}
		c.templates[name] = t
	}
	return c, nil
}

func (t *Template) validate() error {
	switch t.Shape {
	case ShapeValue, ShapeStatement, ShapeHat:
	default:
		return errors.NewValidationError(errors.CodeUnknownTemplate,
			fmt.Sprintf("template %s: unknown shape %q", t.Name, t.Shape))
	}
	switch t.Mutator {
	case MutatorNone, MutatorItems, MutatorIf, MutatorProcedure:
	default:
		return errors.NewValidationError(errors.CodeUnknownTemplate,
			fmt.Sprintf("template %s: unknown mutator %q", t.Name, t.Mutator))
	}
	seen := make(map[string]bool, len(t.Slots))
	for _, s := range t.Slots {
		if seen[s.Name] {
			return errors.NewValidationError(errors.CodeUnknownTemplate,
				fmt.Sprintf("template %s: duplicate slot %s", t.Name, s.Name))
		}
		seen[s.Name] = true
	}
	return nil
}

// Template returns the named template
func (c *Catalog) Template(name string) (*Template, bool) {
	t, ok := c.templates[name]
	return t, ok
}

// Has reports whether the catalog defines name
func (c *Catalog) Has(name string) bool {
	_, ok := c.templates[name]
	return ok
}

// Names lists every template name sorted
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.templates))
	for name := range c.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of templates
func (c *Catalog) Len() int {
	return len(c.templates)
}
