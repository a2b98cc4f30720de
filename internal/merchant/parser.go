package merchant

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Rule properties recognized inside a [Rule Name] block.
const (
	propMatch       = "match"
	propCategory    = "category"
	propSubcategory = "subcategory"
	propMerchant    = "merchant"
	propTags        = "tags"
)

var variableLine = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_]*)\s*=\s*(.+)$`)

// ParseRules reads .merchants content into rules and variables. Every match
// and variable expression is parsed here, so a returned rule set is known to
// be well formed.
//
// The format is line oriented:
//
//	# comment
//	is_large = amount > 500
//
//	[Netflix]
//	match: contains("NETFLIX")
//	category: Subscriptions
//	subcategory: Streaming
//	tags: entertainment, recurring
func ParseRules(content string) ([]*Rule, []Variable, error) {
	p := &fileParser{defined: make(map[string]bool)}
	for i, line := range strings.Split(content, "\n") {
		if err := p.line(i+1, strings.TrimSpace(line)); err != nil {
			return nil, nil, err
		}
	}
	if err := p.flush(); err != nil {
		return nil, nil, err
	}
	return p.rules, p.variables, nil
}

type fileParser struct {
	current   *Rule
	seen      map[string]bool
	defined   map[string]bool
	rules     []*Rule
	variables []Variable
}

func (p *fileParser) line(num int, line string) error {
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
		if err := p.flush(); err != nil {
			return err
		}
		name := strings.TrimSpace(line[1 : len(line)-1])
		if name == "" {
			return parseErrorf(num, "", "Empty rule name")
		}
		p.current = &Rule{Name: name, Line: num}
		p.seen = make(map[string]bool)
		return nil
	}

	if p.current == nil {
		return p.variable(num, line)
	}
	return p.property(num, line)
}

func (p *fileParser) variable(num int, line string) error {
	m := variableLine.FindStringSubmatch(line)
	if m == nil {
		return parseErrorf(num, "", "Unexpected content: %s", line)
	}

	v := Variable{Name: strings.ToLower(m[1]), Expression: strings.TrimSpace(m[2]), Line: num}
	if p.defined[v.Name] {
		return parseErrorf(num, "", "Variable '%s' is already defined", v.Name)
	}
	if err := compileVariable(&v); err != nil {
		return err
	}
	p.defined[v.Name] = true
	p.variables = append(p.variables, v)
	return nil
}

func (p *fileParser) property(num int, line string) error {
	key, value, ok := strings.Cut(line, ":")
	if !ok {
		return parseErrorf(num, p.current.Name, "Unexpected content in rule")
	}
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	if p.seen[key] {
		return parseErrorf(num, p.current.Name, "Duplicate property '%s' in rule '%s'", key, p.current.Name)
	}

	r := p.current
	switch key {
	case propMatch:
		r.Match = value
	case propCategory:
		r.Category = value
	case propSubcategory:
		r.Subcategory = value
	case propMerchant:
		r.Merchant = value
	case propTags:
		r.Tags = ParseTags(value)
	default:
		return parseErrorf(num, r.Name, "Unknown property: %s", key)
	}
	p.seen[key] = true
	return nil
}

// flush validates and stores the rule being read, if any.
func (p *fileParser) flush() error {
	if p.current == nil {
		return nil
	}
	r := p.current
	p.current = nil
	if err := compileRule(r); err != nil {
		return err
	}
	p.rules = append(p.rules, r)
	return nil
}

// Parse reads .merchants content and builds an engine from it.
func Parse(content string, opts ...Option) (*Engine, error) {
	rules, vars, err := ParseRules(content)
	if err != nil {
		return nil, err
	}
	return New(rules, vars, opts...)
}

// LoadFile reads a .merchants file and builds an engine from it.
func LoadFile(path string, opts ...Option) (*Engine, error) {
	return Load(FileSource{Path: path}, opts...)
}

func readRules(path string) ([]*Rule, []Variable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	rules, vars, err := ParseRules(string(data))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, r := range rules {
		r.Source = path
	}
	return rules, vars, nil
}
