package evaluator

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
)

var (
	// ErrDivisionByZero is returned when the divisor of / evaluates to zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrIntegerOverflow is returned when +, - or * on two integers does
	// not fit in an int.
	ErrIntegerOverflow = errors.New("integer overflow")
)

// Internal functions the arithmetic patcher rewrites operators to.
const (
	divideFunc   = "__divide"
	addFunc      = "__add"
	subtractFunc = "__subtract"
	multiplyFunc = "__multiply"
)

var unaryFunctions = []struct {
	name string
	fn   func(float64) float64
}{
	{"sqrt", math.Sqrt},
	{"ln", math.Log},
	{"log", math.Log10},
	{"exp", math.Exp},
	{"sin", math.Sin},
	{"cos", math.Cos},
	{"tan", math.Tan},
	{"asin", math.Asin},
	{"acos", math.Acos},
	{"atan", math.Atan},
}

var functionNames = func() map[string]bool {
	names := map[string]bool{
		divideFunc: true, addFunc: true, subtractFunc: true, multiplyFunc: true,
		"pow": true,
	}
	for _, f := range unaryFunctions {
		names[f.name] = true
	}
	return names
}()

// IsFunction reports whether name is a function, internal or builtin.
// Functions cannot be assigned to, and variables of the same name are
// ignored.
func IsFunction(name string) bool {
	return functionNames[name]
}

func builtinConstants() map[string]any {
	return map[string]any{
		"pi": math.Pi,
		"e":  math.E,
	}
}

func exprOptions() []expr.Option {
	intOp := new(func(int, int) int)
	options := []expr.Option{
		expr.Patch(arithmeticPatcher{}),
		expr.Function(divideFunc, divide),
		expr.Function(addFunc, checkedAdd, intOp),
		expr.Function(subtractFunc, checkedSubtract, intOp),
		expr.Function(multiplyFunc, checkedMultiply, intOp),
	}
	for _, f := range unaryFunctions {
		options = append(options, unary(f.name, f.fn))
	}
	return append(options,
		expr.Function("pow", func(params ...any) (any, error) {
			if len(params) != 2 {
				return nil, fmt.Errorf("pow expects 2 arguments, got %d", len(params))
			}
			base, err := toFloat(params[0])
			if err != nil {
				return nil, err
			}
			exponent, err := toFloat(params[1])
			if err != nil {
				return nil, err
			}
			return math.Pow(base, exponent), nil
		}),
	)
}

func unary(name string, fn func(float64) float64) expr.Option {
	return expr.Function(name, func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(params))
		}
		x, err := toFloat(params[0])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return fn(x), nil
	})
}

var intType = reflect.TypeOf(0)

// arithmeticPatcher rewrites a / b into __divide(a, b), and +, - and * into
// their checked functions when both operands are known to be int. Operands
// of unknown type keep expr's own operator.
type arithmeticPatcher struct{}

func (arithmeticPatcher) Visit(node *ast.Node) {
	bin, ok := (*node).(*ast.BinaryNode)
	if !ok {
		return
	}

	var fn string
	switch bin.Operator {
	case "/":
		fn = divideFunc
	case "+":
		fn = addFunc
	case "-":
		fn = subtractFunc
	case "*":
		fn = multiplyFunc
	default:
		return
	}
	isInt := isIntNode(bin.Left) && isIntNode(bin.Right)
	if fn != divideFunc && !isInt {
		return
	}

	call := &ast.CallNode{
		Callee:    &ast.IdentifierNode{Value: fn},
		Arguments: []ast.Node{bin.Left, bin.Right},
	}
	ast.Patch(node, call)
	if fn != divideFunc {
		// nested operators are visited after their operands
		call.SetType(intType)
	}
}

func isIntNode(n ast.Node) bool {
	t := n.Type()
	return t != nil && t.Kind() == reflect.Int
}

func intOperands(params []any) (int, int, error) {
	if len(params) != 2 {
		return 0, 0, fmt.Errorf("expected 2 operands, got %d", len(params))
	}
	a, ok := params[0].(int)
	if !ok {
		return 0, 0, fmt.Errorf("expected an int, got %s", typeName(params[0]))
	}
	b, ok := params[1].(int)
	if !ok {
		return 0, 0, fmt.Errorf("expected an int, got %s", typeName(params[1]))
	}
	return a, b, nil
}

func checkedAdd(params ...any) (any, error) {
	a, b, err := intOperands(params)
	if err != nil {
		return nil, err
	}
	c := a + b
	if (b > 0 && c < a) || (b < 0 && c > a) {
		return nil, fmt.Errorf("%w: %d + %d", ErrIntegerOverflow, a, b)
	}
	return c, nil
}

func checkedSubtract(params ...any) (any, error) {
	a, b, err := intOperands(params)
	if err != nil {
		return nil, err
	}
	c := a - b
	if (b > 0 && c > a) || (b < 0 && c < a) {
		return nil, fmt.Errorf("%w: %d - %d", ErrIntegerOverflow, a, b)
	}
	return c, nil
}

func checkedMultiply(params ...any) (any, error) {
	a, b, err := intOperands(params)
	if err != nil {
		return nil, err
	}
	if a == 0 || b == 0 {
		return 0, nil
	}
	c := a * b
	if c/b != a || (a == -1 && b == math.MinInt) || (b == -1 && a == math.MinInt) {
		return nil, fmt.Errorf("%w: %d * %d", ErrIntegerOverflow, a, b)
	}
	return c, nil
}

// divide matches expr's / (always float division) but rejects a zero divisor.
func divide(params ...any) (any, error) {
	if len(params) != 2 {
		return nil, fmt.Errorf("division expects 2 operands, got %d", len(params))
	}
	a, err := toFloat(params[0])
	if err != nil {
		return nil, err
	}
	b, err := toFloat(params[1])
	if err != nil {
		return nil, err
	}
	if b == 0 {
		return nil, ErrDivisionByZero
	}
	return a / b, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("expected a number, got %s", typeName(v))
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "string"
	case bool:
		return "bool"
	default:
		return fmt.Sprintf("%T", v)
	}
}
