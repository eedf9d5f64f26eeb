package filter

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// exprFilter implements Filter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		helperFuncs: createHelperFunctions(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type exprCompiler struct {
	helperFuncs map[string]any
	cache       *lruCache
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	compileEnv := maps.Clone(c.helperFuncs)
	compileEnv["has"] = func(string) bool { return false }

	program, err := expr.Compile(expression,
		expr.Env(compileEnv),
		expr.AllowUndefinedVariables(), // record fields are only known at run time
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	f := &exprFilter{
		expression: expression,
		program:    program,
		helpers:    c.helperFuncs,
	}

	if c.cache != nil {
		c.cache.Put(expression, f)
	}

	return f, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Len()
	}
	return 0
}

// Match evaluates the filter against a record. Evaluation errors count as no match.
func (f *exprFilter) Match(record Record) bool {
	result, err := expr.Run(f.program, f.runtimeEnv(record))
	if err != nil {
		return false
	}
	matched, _ := result.(bool)
	return matched
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

func (f *exprFilter) runtimeEnv(record Record) map[string]any {
	env := make(map[string]any, len(record)+len(f.helpers)+2)

	item := make(map[string]any, len(record))
	for k, v := range record {
		item[k] = normalize(v)
	}
	maps.Copy(env, item)
	env["item"] = item

	// Helpers shadow record fields of the same name
	maps.Copy(env, f.helpers)
	env["has"] = func(key string) bool {
		_, ok := record[key]
		return ok
	}

	return env
}

// normalize converts json.Number values so expressions can compare them
func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i)
		}
		if fl, err := x.Float64(); err == nil {
			return fl
		}
		return x.String()
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}

func createHelperFunctions() map[string]any {
	return map[string]any{
		// Date helpers
		"daysSince": func(v any) int {
			t, ok := toTime(v)
			if !ok {
				return -1
			}
			return int(time.Since(t).Hours() / 24)
		},
		"daysAgo": func(days int) time.Time {
			return time.Now().AddDate(0, 0, -days)
		},
		"parseDate": func(s string) time.Time {
			t, _ := toTime(s)
			return t
		},
		// String helpers, case insensitive. contains, startsWith and endsWith
		// are operators in expr, so these carry an I suffix.
		"containsI": func(v any, substr string) bool {
			return strings.Contains(strings.ToLower(toString(v)), strings.ToLower(substr))
		},
		"startsWithI": func(v any, prefix string) bool {
			return strings.HasPrefix(strings.ToLower(toString(v)), strings.ToLower(prefix))
		},
		"endsWithI": func(v any, suffix string) bool {
			return strings.HasSuffix(strings.ToLower(toString(v)), strings.ToLower(suffix))
		},
		"lower": func(v any) string { return strings.ToLower(toString(v)) },
		"upper": func(v any) string { return strings.ToUpper(toString(v)) },
		"now":   time.Now,
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func toTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
