package v1

import (
	"github.com/google/cel-go/cel"

	apierrors "github.com/satchelhq/satchel/server/internal/errors"
	"github.com/satchelhq/satchel/store"
)

// List endpoints accept a `filter=` CEL expression evaluated against each
// row. The row sets are small (one student's courses and assignments), so
// per-row evaluation beats translating the AST to SQL.

var courseFilterEnv = mustFilterEnv(
	cel.Variable("uid", cel.StringType),
	cel.Variable("canvas_id", cel.IntType),
	cel.Variable("name", cel.StringType),
	cel.Variable("code", cel.StringType),
	cel.Variable("term", cel.StringType),
	cel.Variable("row_status", cel.StringType),
)

var assignmentFilterEnv = mustFilterEnv(
	cel.Variable("uid", cel.StringType),
	cel.Variable("canvas_id", cel.IntType),
	cel.Variable("course_id", cel.IntType),
	cel.Variable("title", cel.StringType),
	cel.Variable("status", cel.StringType),
	cel.Variable("row_status", cel.StringType),
	cel.Variable("due_ts", cel.IntType),
	cel.Variable("points", cel.DoubleType),
	cel.Variable("has_due", cel.BoolType),
)

func mustFilterEnv(opts ...cel.EnvOption) *cel.Env {
	env, err := cel.NewEnv(opts...)
	if err != nil {
		panic(err)
	}
	return env
}

// rowFilter is one compiled filter expression.
type rowFilter struct {
	prg cel.Program
}

func newRowFilter(env *cel.Env, expression string) (*rowFilter, error) {
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, apierrors.InvalidArgument("invalid filter: %v", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, apierrors.InvalidArgument("filter must be a boolean expression")
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, apierrors.InvalidArgument("invalid filter: %v", err)
	}
	return &rowFilter{prg: prg}, nil
}

func (f *rowFilter) matches(row map[string]any) (bool, error) {
	out, _, err := f.prg.Eval(row)
	if err != nil {
		return false, apierrors.InvalidArgument("filter evaluation failed: %v", err)
	}
	keep, ok := out.Value().(bool)
	if !ok {
		return false, apierrors.InvalidArgument("filter must evaluate to a boolean")
	}
	return keep, nil
}

func courseFilterRow(course *store.Course) map[string]any {
	return map[string]any{
		"uid":        course.UID,
		"canvas_id":  course.CanvasID,
		"name":       course.Name,
		"code":       course.Code,
		"term":       course.Term,
		"row_status": string(course.RowStatus),
	}
}

func assignmentFilterRow(assignment *store.Assignment) map[string]any {
	var dueTs int64
	if assignment.DueTs != nil {
		dueTs = *assignment.DueTs
	}
	return map[string]any{
		"uid":        assignment.UID,
		"canvas_id":  assignment.CanvasID,
		"course_id":  int64(assignment.CourseID),
		"title":      assignment.Title,
		"status":     assignment.Status,
		"row_status": string(assignment.RowStatus),
		"due_ts":     dueTs,
		"points":     assignment.PointsPossible,
		"has_due":    assignment.DueTs != nil,
	}
}
