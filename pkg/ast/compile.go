package ast

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/semql/pkg/model"
)

// errorStructName names the placeholder struct produced by a source that
// failed to compile. Lookups against it fail silently so one mistake does
// not cascade into many diagnostics.
const errorStructName = "~error~"

func errorStruct() *model.StructDef {
	return &model.StructDef{Name: errorStructName}
}

// IsErrorStruct reports whether s stands in for a failed source.
func IsErrorStruct(s *model.StructDef) bool {
	return s == nil || s.Name == errorStructName
}

// fieldSpace resolves field references against a struct.
type fieldSpace struct {
	s *model.StructDef
}

func newFieldSpace(s *model.StructDef) *fieldSpace {
	return &fieldSpace{s: s}
}

// compiled is an expression plus whether it aggregates.
type compiled struct {
	expr      *model.Expr
	aggregate bool
}

func (c compiled) typ() model.FieldType {
	return c.expr.Type
}

// loose types are accepted anywhere a specific type is wanted.
func loose(t model.FieldType) bool {
	return t == model.TypeNull || t == model.TypeError || t == model.TypeSQLNative
}

func errored(cs ...compiled) bool {
	for _, c := range cs {
		if c.typ() == model.TypeError {
			return true
		}
	}
	return false
}

func (fs *fieldSpace) compile(env Env, e Expr) compiled {
	switch e := e.(type) {
	case *ExprNumber:
		return compiled{expr: &model.Expr{Node: model.ExprLiteral, Type: model.TypeNumber, Value: e.Value}}
	case *ExprString:
		return compiled{expr: &model.Expr{Node: model.ExprLiteral, Type: model.TypeString, Value: e.Value}}
	case *ExprBool:
		return compiled{expr: &model.Expr{Node: model.ExprLiteral, Type: model.TypeBoolean, Value: strconv.FormatBool(e.Value)}}
	case *ExprNull:
		return compiled{expr: &model.Expr{Node: model.ExprLiteral, Type: model.TypeNull}}
	case *ExprField:
		return fs.field(env, e)
	case *ExprCall:
		return fs.call(env, e)
	case *ExprBinary:
		return fs.binary(env, e)
	case *ExprUnary:
		return fs.unary(env, e)
	case *errorElement:
		return fail()
	default:
		errorf(env, e.Location(), "Cannot compile '%s' as an expression", e.ElementType())
		return fail()
	}
}

func fail() compiled {
	return compiled{expr: &model.Expr{Node: model.ExprLiteral, Type: model.TypeError}}
}

func (fs *fieldSpace) field(env Env, e *ExprField) compiled {
	name := strings.Join(e.Path, ".")
	f, ok := fs.s.Field(name)
	if !ok {
		if !IsErrorStruct(fs.s) {
			errorf(env, e.Location(), "'%s' is not defined", name)
		}
		return fail()
	}
	return compiled{
		expr:      &model.Expr{Node: model.ExprField, Type: f.Type, Path: append([]string(nil), e.Path...)},
		aggregate: f.IsAggregate(),
	}
}

func (fs *fieldSpace) call(env Env, e *ExprCall) compiled {
	def, ok := functions[e.Name]
	if !ok {
		errorf(env, e.Location(), "Unknown function '%s'", e.Name)
		return fail()
	}
	if len(e.Args) < def.minArgs || (def.maxArgs >= 0 && len(e.Args) > def.maxArgs) {
		errorf(env, e.Location(), "Wrong number of arguments to '%s'", e.Name)
		return fail()
	}

	args := make([]*model.Expr, 0, len(e.Args))
	types := make([]model.FieldType, 0, len(e.Args))
	aggregate := def.aggregate
	bad := false
	for _, a := range e.Args {
		c := fs.compile(env, a)
		args = append(args, c.expr)
		types = append(types, c.typ())
		if c.typ() == model.TypeError {
			bad = true
			continue
		}
		if c.aggregate {
			if def.aggregate {
				errorf(env, a.Location(), "Aggregate function '%s' cannot take an aggregate argument", e.Name)
				bad = true
			}
			aggregate = true
		}
		if def.argType != "" && !loose(c.typ()) && c.typ() != def.argType {
			errorf(env, a.Location(), "'%s' requires %s arguments", e.Name, def.argType)
			bad = true
		}
	}
	if bad {
		return compiled{expr: &model.Expr{Node: model.ExprCall, Type: model.TypeError, Func: e.Name, Args: args}, aggregate: aggregate}
	}

	node := model.ExprCall
	if def.aggregate {
		node = model.ExprAggregate
	}
	return compiled{
		expr:      &model.Expr{Node: node, Type: def.returns(types), Func: e.Name, Args: args},
		aggregate: aggregate,
	}
}

func (fs *fieldSpace) binary(env Env, e *ExprBinary) compiled {
	l := fs.compile(env, e.Left)
	r := fs.compile(env, e.Right)
	out := compiled{
		expr:      &model.Expr{Node: model.ExprBinary, Op: e.Op, Args: []*model.Expr{l.expr, r.expr}},
		aggregate: l.aggregate || r.aggregate,
	}
	if errored(l, r) {
		out.expr.Type = model.TypeError
		return out
	}

	switch e.Op {
	case "and", "or":
		out.expr.Type = model.TypeBoolean
		if !isBoolean(l.typ()) || !isBoolean(r.typ()) {
			errorf(env, e.Location(), "'%s' requires boolean operands", e.Op)
			out.expr.Type = model.TypeError
		}
	case "=", "!=", "<", ">", "<=", ">=":
		out.expr.Type = model.TypeBoolean
		if !loose(l.typ()) && !loose(r.typ()) && l.typ() != r.typ() {
			errorf(env, e.Location(), "Cannot compare a %s to a %s", l.typ(), r.typ())
			out.expr.Type = model.TypeError
		}
	default:
		out.expr.Type = model.TypeNumber
		if !isNumber(l.typ()) || !isNumber(r.typ()) {
			errorf(env, e.Location(), "'%s' requires number operands", e.Op)
			out.expr.Type = model.TypeError
		}
	}
	return out
}

func (fs *fieldSpace) unary(env Env, e *ExprUnary) compiled {
	c := fs.compile(env, e.Operand)
	out := compiled{
		expr:      &model.Expr{Node: model.ExprUnary, Op: e.Op, Args: []*model.Expr{c.expr}},
		aggregate: c.aggregate,
	}
	if errored(c) {
		out.expr.Type = model.TypeError
		return out
	}
	if e.Op == "not" {
		out.expr.Type = model.TypeBoolean
		if !isBoolean(c.typ()) {
			errorf(env, e.Location(), "'not' requires a boolean operand")
			out.expr.Type = model.TypeError
		}
		return out
	}
	out.expr.Type = model.TypeNumber
	if !isNumber(c.typ()) {
		errorf(env, e.Location(), "Unary '-' requires a number operand")
		out.expr.Type = model.TypeError
	}
	return out
}

func isBoolean(t model.FieldType) bool {
	return t == model.TypeBoolean || loose(t)
}

func isNumber(t model.FieldType) bool {
	return t == model.TypeNumber || loose(t)
}

// filter compiles a boolean condition. Aggregates are not allowed.
func (fs *fieldSpace) filter(env Env, e Expr) (model.Filter, bool) {
	c := fs.compile(env, e)
	if c.typ() == model.TypeError {
		return model.Filter{}, false
	}
	if c.typ() != model.TypeBoolean {
		errorf(env, e.Location(), "Filter expression must have boolean value")
		return model.Filter{}, false
	}
	if c.aggregate {
		errorf(env, e.Location(), "Aggregate expressions are not allowed in a filter")
		return model.Filter{}, false
	}
	return model.Filter{Source: e.Text(), Expr: c.expr}, true
}
