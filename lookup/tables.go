// Package lookup holds the static call-name tables that steer how calls,
// definitions and constant member accesses are lowered.
package lookup

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Figliar/extension-plus-API/errors"
)

//go:embed tables.yaml
var defaultTablesYAML []byte

// Entry maps a call name to a block template
type Entry struct {
	Template string            `yaml:"template"`
	Fields   map[string]string `yaml:"fields"`
	Rule     string            `yaml:"rule"`
}

// UnmarshalYAML accepts a bare template name or the full mapping
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&e.Template)
	}
	type plain Entry
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*e = Entry(p)
	return nil
}

// FieldNames returns the fixed field names sorted
func (e Entry) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tables is the read-only lookup configuration of a translation run
type Tables struct {
	Callbacks  map[string]string `yaml:"callbacks"`
	Statements map[string]Entry  `yaml:"statements"`
	Values     map[string]Entry  `yaml:"values"`
	Specials   map[string]Entry  `yaml:"specials"`
	Constants  map[string]Entry  `yaml:"constants"`
	Ignore     []string          `yaml:"ignore"`

	ignoreSet map[string]bool
}

var (
	defaultTables     *Tables
	defaultTablesErr  error
	defaultTablesOnce sync.Once
)

// Default returns the embedded tables, parsed and validated once
func Default() *Tables {
	defaultTablesOnce.Do(func() {
		defaultTables, defaultTablesErr = Load(bytes.NewReader(defaultTablesYAML))
	})
	if defaultTablesErr != nil {
		panic(fmt.Sprintf("embedded lookup tables are invalid: %v", defaultTablesErr))
	}
	return defaultTables
}

// Load decodes and validates a tables document
func Load(r io.Reader) (*Tables, error) {
	t := &Tables{}
	if err := yaml.NewDecoder(r).Decode(t); err != nil {
		return nil, errors.WrapError(err, errors.CodeInvalidTables, "cannot decode lookup tables")
	}
	t.index()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadFile reads tables from path
func LoadFile(path string) (*Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CodeInvalidTables, "cannot open lookup tables").
			WithContext("path", path)
	}
	defer f.Close()
	return Load(f)
}

func (t *Tables) index() {
	t.ignoreSet = make(map[string]bool, len(t.Ignore))
	for _, name := range t.Ignore {
		t.ignoreSet[strings.TrimSpace(name)] = true
	}
}

// Validate checks that the call maps are pairwise disjoint and every entry
// names a template. A name may sit in both Statements and Specials since
// they are consulted at different call positions.
func (t *Tables) Validate() error {
	var problems []string

	sections := []struct {
		name    string
		entries map[string]Entry
	}{
		{"statements", t.Statements},
		{"values", t.Values},
		{"specials", t.Specials},
		{"constants", t.Constants},
	}
	for _, s := range sections {
		for _, key := range sortedKeys(s.entries) {
			e := s.entries[key]
			if e.Template == "" && e.Rule == "" {
				problems = append(problems, fmt.Sprintf("%s.%s names no template", s.name, key))
			}
		}
	}
	for name, tmpl := range t.Callbacks {
		if tmpl == "" {
			problems = append(problems, fmt.Sprintf("callbacks.%s names no template", name))
		}
	}

	callbacks := make(map[string]Entry, len(t.Callbacks))
	for name, tmpl := range t.Callbacks {
		callbacks[name] = Entry{Template: tmpl}
	}
	pairs := []struct {
		a, b   string
		ea, eb map[string]Entry
	}{
		{"statements", "values", t.Statements, t.Values},
		{"statements", "callbacks", t.Statements, callbacks},
		{"values", "specials", t.Values, t.Specials},
		{"values", "callbacks", t.Values, callbacks},
		{"specials", "callbacks", t.Specials, callbacks},
	}
	for _, p := range pairs {
		for _, key := range sortedKeys(p.ea) {
			if _, dup := p.eb[key]; dup {
				problems = append(problems, fmt.Sprintf("%s appears in both %s and %s", key, p.a, p.b))
			}
		}
	}

	if len(problems) > 0 {
		return errors.NewValidationError(errors.CodeInvalidTables, strings.Join(problems, "; ")).
			WithContext("problems", len(problems))
	}
	return nil
}

// Ignored reports whether a definition of name is suppressed
func (t *Tables) Ignored(name string) bool {
	if t.ignoreSet == nil {
		t.index()
	}
	return t.ignoreSet[name]
}

// Statement looks up a call without a return value
func (t *Tables) Statement(name string) (Entry, bool) {
	e, ok := t.Statements[name]
	return e, ok
}

// Value looks up a call with a return value
func (t *Tables) Value(name string) (Entry, bool) {
	e, ok := t.Values[name]
	return e, ok
}

// Special looks up a call needing its own decomposition
func (t *Tables) Special(name string) (Entry, bool) {
	e, ok := t.Specials[name]
	return e, ok
}

// Callback looks up an event hook template
func (t *Tables) Callback(name string) (string, bool) {
	tmpl, ok := t.Callbacks[name]
	return tmpl, ok
}

// Constant looks up a constant member access such as math.pi
func (t *Tables) Constant(name string) (Entry, bool) {
	e, ok := t.Constants[name]
	return e, ok
}

// Templates lists every template the tables refer to, sorted
func (t *Tables) Templates() []string {
	set := make(map[string]bool)
	for _, m := range []map[string]Entry{t.Statements, t.Values, t.Specials, t.Constants} {
		for _, e := range m {
			if e.Template != "" {
				set[e.Template] = true
			}
		}
	}
	for _, tmpl := range t.Callbacks {
		set[tmpl] = true
	}
	out := make([]string, 0, len(set))
	for tmpl := range set {
		out = append(out, tmpl)
	}
	sort.Strings(out)
	return out
}

// Rules lists every rule name the tables refer to, sorted
func (t *Tables) Rules() []string {
	set := make(map[string]bool)
	for _, m := range []map[string]Entry{t.Statements, t.Values, t.Specials} {
		for _, e := range m {
			if e.Rule != "" {
				set[e.Rule] = true
			}
		}
	}
	out := make([]string, 0, len(set))
	for rule := range set {
		out = append(out, rule)
	}
	sort.Strings(out)
	return out
}

// Names lists every call, callback and constant name the tables know, sorted
func (t *Tables) Names() []string {
	set := make(map[string]Entry)
	for _, m := range []map[string]Entry{t.Statements, t.Values, t.Specials, t.Constants} {
		for name, e := range m {
			set[name] = e
		}
	}
	for name := range t.Callbacks {
		set[name] = Entry{}
	}
	return sortedKeys(set)
}

func sortedKeys(m map[string]Entry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
