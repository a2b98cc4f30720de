package merchant

import "fmt"

// Source supplies rules and variables to an engine. Built-in tables, rule
// files and legacy CSV files are all sources.
type Source interface {
	Name() string
	Load() ([]*Rule, []Variable, error)
}

// FileSource reads a .merchants file.
type FileSource struct {
	Path string
}

// Name returns the file path.
func (s FileSource) Name() string { return s.Path }

// Load parses the file.
func (s FileSource) Load() ([]*Rule, []Variable, error) {
	return readRules(s.Path)
}

// StaticSource serves a fixed rule list.
type StaticSource struct {
	Label     string
	Rules     []*Rule
	Variables []Variable
}

// Name returns the label.
func (s StaticSource) Name() string { return s.Label }

// Load returns the rules as given.
func (s StaticSource) Load() ([]*Rule, []Variable, error) {
	return s.Rules, s.Variables, nil
}

type chain []Source

// Chain concatenates sources. Rules from earlier sources come first and so
// win categorization over later ones.
func Chain(sources ...Source) Source {
	return chain(sources)
}

func (c chain) Name() string {
	name := ""
	for i, s := range c {
		if i > 0 {
			name += " + "
		}
		name += s.Name()
	}
	return name
}

func (c chain) Load() ([]*Rule, []Variable, error) {
	var (
		rules []*Rule
		vars  []Variable
	)
	for _, s := range c {
		r, v, err := s.Load()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load rules from %s: %w", s.Name(), err)
		}
		rules = append(rules, r...)
		vars = append(vars, v...)
	}
	return rules, vars, nil
}

// Load builds an engine from a source.
func Load(src Source, opts ...Option) (*Engine, error) {
	rules, vars, err := src.Load()
	if err != nil {
		return nil, err
	}
	return New(rules, vars, opts...)
}
