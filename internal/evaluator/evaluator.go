// Package evaluator implements calculator expression evaluation on top of
// github.com/expr-lang/expr.
//
// On top of the expr-lang grammar the evaluator understands:
//
//	x = 10          assignment, stores x in the variables map
//	x += 2          compound assignment (+=, -=, *=, /=)
//	a = 2; a * 3    statement chaining, the last value is returned
//
// Division by zero is reported as an error instead of yielding +Inf, and
// referencing an unassigned variable fails with "unknown name".
package evaluator

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ErrEmptyExpression is returned when there is nothing to evaluate.
var ErrEmptyExpression = errors.New("empty expression")

// Evaluator compiles and runs calculator expressions.
// Variables live in a map owned by the caller; Evaluate reads them and
// writes back any assignment.
type Evaluator struct {
	constants map[string]any
	cache     *programCache
	logger    *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithConstants adds named constants visible to every expression. User
// variables of the same name shadow them.
func WithConstants(constants map[string]any) Option {
	return func(e *Evaluator) {
		maps.Copy(e.constants, constants)
	}
}

// WithCacheSize bounds the number of compiled programs retained.
func WithCacheSize(size int) Option {
	return func(e *Evaluator) {
		e.cache = newProgramCache(size)
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Evaluator with the builtin constants pi and e.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		constants: builtinConstants(),
		cache:     newProgramCache(DefaultCacheSize),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate evaluates expression against vars. Assignments are applied to
// vars in statement order, so a failing statement leaves earlier
// assignments of the same chain in place. A nil vars map is treated as
// empty and assignments are discarded.
func (e *Evaluator) Evaluate(expression string, vars map[string]any) (fmt.Stringer, error) {
	if vars == nil {
		vars = make(map[string]any)
	}

	statements := splitStatements(expression)
	if len(statements) == 0 {
		return nil, ErrEmptyExpression
	}

	var result any
	for _, stmt := range statements {
		v, err := e.evalStatement(stmt, vars)
		if err != nil {
			return nil, err
		}
		result = v
	}

	return Value{raw: result}, nil
}

func (e *Evaluator) evalStatement(stmt string, vars map[string]any) (any, error) {
	a, ok := parseAssignment(stmt)
	if !ok {
		return e.run(stmt, vars)
	}

	if IsFunction(a.name) {
		return nil, fmt.Errorf("cannot assign to function %s", a.name)
	}
	if strings.TrimSpace(a.rhs) == "" {
		return nil, fmt.Errorf("missing value in assignment to %s", a.name)
	}

	source := a.rhs
	if a.op != "" {
		if _, exists := vars[a.name]; !exists {
			if _, isConst := e.constants[a.name]; !isConst {
				return nil, fmt.Errorf("unknown name %s", a.name)
			}
		}
		source = a.name + " " + a.op + " (" + a.rhs + ")"
	}

	value, err := e.run(source, vars)
	if err != nil {
		return nil, err
	}

	vars[a.name] = value
	e.logger.Debug("variable assigned", "name", a.name, "type", fmt.Sprintf("%T", value))
	return value, nil
}

func (e *Evaluator) run(source string, vars map[string]any) (any, error) {
	env := make(map[string]any, len(e.constants)+len(vars))
	maps.Copy(env, e.constants)
	for name, value := range vars {
		if !IsFunction(name) {
			env[name] = value
		}
	}

	program, err := e.compile(source, env)
	if err != nil {
		return nil, cleanError(err)
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return nil, cleanError(err)
	}
	return out, nil
}

func (e *Evaluator) compile(source string, env map[string]any) (*vm.Program, error) {
	key := cacheKey(source, env)
	if program, ok := e.cache.Get(key); ok {
		return program, nil
	}

	options := append([]expr.Option{expr.Env(env)}, exprOptions()...)
	program, err := expr.Compile(source, options...)
	if err != nil {
		return nil, err
	}

	e.cache.Put(key, program)
	return program, nil
}

// cacheKey identifies a compiled program: the same source compiles
// differently when a variable changes type, or appears or disappears.
func cacheKey(source string, env map[string]any) string {
	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(source)
	for _, name := range names {
		b.WriteByte(0)
		b.WriteString(name)
		b.WriteByte(':')
		fmt.Fprintf(&b, "%T", env[name])
	}
	return b.String()
}

// errorPosition matches the "(line:column)" expr appends to messages.
var errorPosition = regexp.MustCompile(`\s*\(\d+:\d+\)$`)

// cleanError keeps the first line of an expr error, dropping the source
// snippet and caret that follow it and the position suffix.
func cleanError(err error) error {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	msg = errorPosition.ReplaceAllString(strings.TrimSpace(msg), "")
	return errors.New(msg)
}
