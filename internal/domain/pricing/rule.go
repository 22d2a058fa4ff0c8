package pricing

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// Rule is a compiled CEL expression deciding whether special prices apply.
// Variables: hour (0-23), start_hour, weekday (0 = Sunday).
type Rule struct {
	source string
	prg    cel.Program
}

// CompileRule parses and type-checks expr. It must evaluate to bool.
func CompileRule(expr string) (*Rule, error) {
	env, err := cel.NewEnv(
		cel.Variable("hour", cel.IntType),
		cel.Variable("start_hour", cel.IntType),
		cel.Variable("weekday", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}

	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("compile special price rule: %w", iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("special price rule must return bool, got %s", ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build special price rule: %w", err)
	}
	return &Rule{source: expr, prg: prg}, nil
}

// String returns the rule source.
func (r *Rule) String() string {
	return r.source
}

// Eval runs the rule for one point in time.
func (r *Rule) Eval(hour, startHour, weekday int) (bool, error) {
	out, _, err := r.prg.Eval(map[string]any{
		"hour":       int64(hour),
		"start_hour": int64(startHour),
		"weekday":    int64(weekday),
	})
	if err != nil {
		return false, fmt.Errorf("eval special price rule: %w", err)
	}
	open, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("special price rule returned %T", out.Value())
	}
	return open, nil
}
