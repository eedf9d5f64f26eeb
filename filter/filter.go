// Package filter selects records from Lexia list responses with expr-lang
// expressions.
//
// Every top-level key of a record is a variable; the whole record is also
// available as item. JSON numbers are converted to int or float64 before
// evaluation, so `total > 100 and containsI(status, "proc")` works on the
// raw API payload. Records that fail to evaluate (for example comparing a
// missing field) do not match.
package filter

// Record is one element of a list response
type Record = map[string]any

// Filter matches records
type Filter interface {
	// Match reports whether record satisfies the filter
	Match(record Record) bool

	// Expression returns the source expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	Compile(expression string) (Filter, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}

var defaultCompiler = NewExprCompiler(WithCache(64))

// CompileFilter compiles expression with the shared cached compiler
func CompileFilter(expression string) (Filter, error) {
	return defaultCompiler.Compile(expression)
}

// matchAll is used when no expression is given
type matchAll struct{}

func (matchAll) Match(Record) bool  { return true }
func (matchAll) Expression() string { return "" }

// MatchAll returns a filter that matches every record
func MatchAll() Filter {
	return matchAll{}
}
