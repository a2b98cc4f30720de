package merchant

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/expr"
	"github.com/Veraticus/tally/internal/model"
)

// Config holds engine settings.
type Config struct {
	RegexCache   *common.RegexCache
	RegexTimeout time.Duration
}

// Option is a functional option for configuring the engine.
type Option func(*Config)

// WithRegexCache shares compiled regex() patterns with other engines.
func WithRegexCache(cache *common.RegexCache) Option {
	return func(c *Config) {
		c.RegexCache = cache
	}
}

// WithRegexTimeout bounds each regex() evaluation. Ignored when a cache is supplied.
func WithRegexTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.RegexTimeout = d
	}
}

// Engine matches transactions against an immutable, validated rule set.
// Match may be called from multiple goroutines.
type Engine struct {
	evaluator *expr.Evaluator
	rules     []*Rule
	variables []Variable
}

// MatchResult is the outcome of running every rule against one transaction.
// A transaction may carry tags without being categorized.
type MatchResult struct {
	MatchedRule *Rule
	Tags        Tags
	Merchant    string
	Category    string
	Subcategory string
	TagRules    []*Rule
	Warnings    []Warning
	Matched     bool
	NotTravel   bool
}

// Warning records an expression that could not be evaluated for a
// transaction. The rule involved was treated as non-matching.
type Warning struct {
	Err      error
	Rule     *Rule
	Variable string
}

func (w Warning) String() string {
	if w.Rule != nil {
		return fmt.Sprintf("rule '%s' (line %d): %v", w.Rule.Name, w.Rule.Line, w.Err)
	}
	return fmt.Sprintf("variable '%s': %v", w.Variable, w.Err)
}

// New validates rules and variables and builds an engine. Rules are copied,
// so later changes to the arguments do not affect the engine.
func New(rules []*Rule, vars []Variable, opts ...Option) (*Engine, error) {
	cfg := Config{RegexTimeout: common.DefaultRegexTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	cache := cfg.RegexCache
	if cache == nil {
		cache = common.NewRegexCache(cfg.RegexTimeout)
	}

	e := &Engine{
		evaluator: expr.NewEvaluator(cache),
		rules:     make([]*Rule, 0, len(rules)),
		variables: make([]Variable, 0, len(vars)),
	}

	defined := make(map[string]bool, len(vars))
	for _, v := range vars {
		if defined[v.Name] {
			return nil, parseErrorf(v.Line, "", "Variable '%s' is already defined", v.Name)
		}
		if v.node == nil {
			if err := compileVariable(&v); err != nil {
				return nil, err
			}
		}
		defined[v.Name] = true
		e.variables = append(e.variables, v)
	}

	for _, r := range rules {
		rule := *r
		if r.Tags != nil {
			rule.Tags = NewTags(r.Tags.Sorted()...)
		}
		if rule.node == nil {
			if err := compileRule(&rule); err != nil {
				return nil, err
			}
		}
		e.rules = append(e.rules, &rule)
	}

	return e, nil
}

func compileRule(r *Rule) error {
	if r.Name == "" {
		return parseErrorf(r.Line, "", "Empty rule name")
	}
	if r.Match == "" {
		return parseErrorf(r.Line, r.Name, "Rule '%s' missing 'match:' expression", r.Name)
	}
	if r.Category == "" && len(r.Tags) == 0 {
		return parseErrorf(r.Line, r.Name, "Rule '%s' must have 'category:' or 'tags:'", r.Name)
	}
	node, err := expr.Parse(r.Match)
	if err != nil {
		return parseErrorf(r.Line, r.Name, "Invalid match expression in '%s': %v", r.Name, err)
	}
	r.node = node
	return nil
}

func compileVariable(v *Variable) error {
	if expr.IsReserved(v.Name) {
		return parseErrorf(v.Line, "", "'%s' is a reserved name and cannot be a variable", v.Name)
	}
	node, err := expr.Parse(v.Expression)
	if err != nil {
		return parseErrorf(v.Line, "", "Invalid variable expression '%s': %v", v.Name, err)
	}
	v.node = node
	return nil
}

// Match runs every rule against txn in file order. The first matching
// categorization rule sets merchant and category; every matching rule adds
// its tags. A rule whose expression fails to evaluate is skipped.
func (e *Engine) Match(txn model.Transaction) MatchResult {
	return e.MatchContext(expr.FromTransaction(txn))
}

// MatchContext is Match for an already built transaction context.
func (e *Engine) MatchContext(ctx *expr.TransactionContext) MatchResult {
	result := MatchResult{Tags: make(Tags)}
	vars := e.evaluateVariables(ctx, &result)

	for _, rule := range e.rules {
		ok, err := e.evaluator.Matches(rule.node, ctx, vars)
		if err != nil {
			slog.Debug("Skipping rule", "rule", rule.Name, "line", rule.Line, "error", err)
			result.Warnings = append(result.Warnings, Warning{Rule: rule, Err: err})
			continue
		}
		if !ok {
			continue
		}

		result.Tags.Union(rule.Tags)
		result.TagRules = append(result.TagRules, rule)

		if !result.Matched && rule.IsCategorizationRule() {
			result.Matched = true
			result.Merchant = rule.DisplayMerchant()
			result.Category = rule.Category
			result.Subcategory = rule.Subcategory
			result.MatchedRule = rule
			result.NotTravel = rule.NotTravel
		}
	}

	return result
}

// evaluateVariables evaluates variables in definition order. A variable that
// fails is left undefined, so rules referring to it fail in turn.
func (e *Engine) evaluateVariables(ctx *expr.TransactionContext, result *MatchResult) expr.Variables {
	if len(e.variables) == 0 {
		return nil
	}
	vars := make(expr.Variables, len(e.variables))
	for _, v := range e.variables {
		val, err := e.evaluator.Eval(v.node, ctx, vars)
		if err != nil {
			result.Warnings = append(result.Warnings, Warning{Variable: v.Name, Err: err})
			continue
		}
		vars[v.Name] = val
	}
	return vars
}

// MatchAll matches each transaction independently.
func (e *Engine) MatchAll(txns []model.Transaction) []MatchResult {
	results := make([]MatchResult, len(txns))
	for i, txn := range txns {
		results[i] = e.Match(txn)
	}
	return results
}

// Rules returns the loaded rules in file order.
func (e *Engine) Rules() []*Rule {
	return e.rules
}

// Variables returns the loaded variables in definition order.
func (e *Engine) Variables() []Variable {
	return e.variables
}

// CategorizationRules returns the rules that assign a category.
func (e *Engine) CategorizationRules() []*Rule {
	var out []*Rule
	for _, r := range e.rules {
		if r.IsCategorizationRule() {
			out = append(out, r)
		}
	}
	return out
}

// TagOnlyRules returns the rules that only assign tags.
func (e *Engine) TagOnlyRules() []*Rule {
	var out []*Rule
	for _, r := range e.rules {
		if !r.IsCategorizationRule() {
			out = append(out, r)
		}
	}
	return out
}

// IsParseError reports whether err is a rule file load failure.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
