package expr

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

// DateLayout is the only accepted format for date literals.
const DateLayout = "2006-01-02"

// Variables maps lowercase variable names to values already evaluated for
// the current transaction. Values are string, float64, bool or time.Time.
type Variables map[string]any

// Evaluator runs parsed expressions against transactions. It holds no
// per-transaction state and is safe for concurrent use.
type Evaluator struct {
	regex *common.RegexCache
}

// NewEvaluator creates an evaluator that compiles regex() patterns through cache.
// A nil cache gets a private one with the default time budget.
func NewEvaluator(cache *common.RegexCache) *Evaluator {
	if cache == nil {
		cache = common.NewRegexCache(common.DefaultRegexTimeout)
	}
	return &Evaluator{regex: cache}
}

// Eval evaluates n and returns its value.
func (e *Evaluator) Eval(n Node, ctx *TransactionContext, vars Variables) (any, error) {
	switch n := n.(type) {
	case *Literal:
		return n.Value, nil
	case *Identifier:
		return lookup(n.Name, ctx, vars)
	case *FunctionCall:
		return e.call(n, ctx)
	case *UnaryOp:
		v, err := e.Eval(n.Operand, ctx, vars)
		if err != nil {
			return nil, err
		}
		return !Truthy(v), nil
	case *BinaryOp:
		return e.binary(n, ctx, vars)
	case *Membership:
		return e.membership(n, ctx, vars)
	}
	return nil, evalErrorf("unsupported expression node %T", n)
}

// Matches evaluates n and reduces the result to a boolean.
func (e *Evaluator) Matches(n Node, ctx *TransactionContext, vars Variables) (bool, error) {
	v, err := e.Eval(n, ctx, vars)
	if err != nil {
		return false, err
	}
	return Truthy(v), nil
}

// Truthy reduces a value to a boolean: non-zero numbers, non-empty strings
// and any date are true.
func Truthy(v any) bool {
	switch v := v.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	case time.Time:
		return !v.IsZero()
	}
	return false
}

func lookup(name string, ctx *TransactionContext, vars Variables) (any, error) {
	switch name {
	case FieldDescription:
		return ctx.Description, nil
	case FieldAmount:
		return ctx.Amount, nil
	case FieldDate:
		if !ctx.HasDate {
			return nil, evalErrorf("transaction has no date")
		}
		return ctx.Date, nil
	case FieldYear:
		return float64(ctx.Year), nil
	case FieldMonth:
		return float64(ctx.Month), nil
	case FieldDay:
		return float64(ctx.Day), nil
	}

	if v, ok := vars[name]; ok {
		return v, nil
	}
	return nil, evalErrorf("Unknown variable: %s", name)
}

func (e *Evaluator) call(n *FunctionCall, ctx *TransactionContext) (any, error) {
	switch n.Name {
	case FuncContains:
		return containsFold(ctx.Description, n.Arg), nil
	case FuncRegex:
		re, err := e.regex.Compile(n.Arg)
		if err != nil {
			return nil, evalErrorf("Invalid regex pattern %q: %v", n.Arg, err)
		}
		ok, err := re.MatchString(ctx.Description)
		if err != nil {
			return nil, evalErrorf("regex %q failed: %v", n.Arg, err)
		}
		return ok, nil
	}
	return nil, evalErrorf("unknown function %q", n.Name)
}

func (e *Evaluator) binary(n *BinaryOp, ctx *TransactionContext, vars Variables) (any, error) {
	left, err := e.Eval(n.Left, ctx, vars)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case TokenAnd:
		if !Truthy(left) {
			return false, nil
		}
		right, err := e.Eval(n.Right, ctx, vars)
		if err != nil {
			return nil, err
		}
		return Truthy(right), nil
	case TokenOr:
		if Truthy(left) {
			return true, nil
		}
		right, err := e.Eval(n.Right, ctx, vars)
		if err != nil {
			return nil, err
		}
		return Truthy(right), nil
	}

	right, err := e.Eval(n.Right, ctx, vars)
	if err != nil {
		return nil, err
	}
	return compare(n.Op, left, right)
}

func (e *Evaluator) membership(n *Membership, ctx *TransactionContext, vars Variables) (any, error) {
	needle, err := e.Eval(n.Needle, ctx, vars)
	if err != nil {
		return nil, err
	}
	haystack, err := e.Eval(n.Haystack, ctx, vars)
	if err != nil {
		return nil, err
	}

	ns, ok1 := needle.(string)
	hs, ok2 := haystack.(string)
	if !ok1 || !ok2 {
		return nil, evalErrorf("'in' requires strings, got %s and %s", typeName(needle), typeName(haystack))
	}

	found := containsFold(hs, ns)
	if n.Negated {
		return !found, nil
	}
	return found, nil
}

func compare(op TokenType, left, right any) (any, error) {
	if isDate(left) || isDate(right) {
		l, err := toDate(left)
		if err != nil {
			return nil, err
		}
		r, err := toDate(right)
		if err != nil {
			return nil, err
		}
		return ordered(op, l.Compare(r))
	}

	switch l := left.(type) {
	case float64:
		r, ok := right.(float64)
		if !ok {
			break
		}
		switch {
		case l < r:
			return ordered(op, -1)
		case l > r:
			return ordered(op, 1)
		}
		return ordered(op, 0)

	case string:
		r, ok := right.(string)
		if !ok {
			break
		}
		return ordered(op, strings.Compare(strings.ToLower(l), strings.ToLower(r)))

	case bool:
		r, ok := right.(bool)
		if !ok {
			break
		}
		switch op {
		case TokenEq:
			return l == r, nil
		case TokenNe:
			return l != r, nil
		}
		return nil, evalErrorf("cannot order booleans with %s", op)
	}

	return nil, evalErrorf("cannot compare %s with %s", typeName(left), typeName(right))
}

func ordered(op TokenType, cmp int) (any, error) {
	switch op {
	case TokenEq:
		return cmp == 0, nil
	case TokenNe:
		return cmp != 0, nil
	case TokenLt:
		return cmp < 0, nil
	case TokenLe:
		return cmp <= 0, nil
	case TokenGt:
		return cmp > 0, nil
	case TokenGe:
		return cmp >= 0, nil
	}
	return nil, evalErrorf("unsupported operator %s", op)
}

func isDate(v any) bool {
	_, ok := v.(time.Time)
	return ok
}

func toDate(v any) (time.Time, error) {
	switch v := v.(type) {
	case time.Time:
		return v, nil
	case string:
		t, err := time.Parse(DateLayout, v)
		if err != nil {
			return time.Time{}, evalErrorf("Invalid date format: %q (expected YYYY-MM-DD)", v)
		}
		return t, nil
	}
	return time.Time{}, evalErrorf("cannot compare date with %s", typeName(v))
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func typeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case time.Time:
		return "date"
	case nil:
		return "nothing"
	}
	return fmt.Sprintf("%T", v)
}

// IsEvalError reports whether err came from evaluating an expression.
func IsEvalError(err error) bool {
	var evalErr *EvalError
	return errors.As(err, &evalErr)
}

// MatchesTransaction parses expression and evaluates it against txn in one step.
// Rule engines should parse once and call Evaluator.Matches instead.
func MatchesTransaction(expression string, txn model.Transaction, vars Variables) (bool, error) {
	n, err := Parse(expression)
	if err != nil {
		return false, err
	}
	return NewEvaluator(nil).Matches(n, FromTransaction(txn), vars)
}
