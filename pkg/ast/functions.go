package ast

import "github.com/leapstack-labs/semql/pkg/model"

// funcDef describes a function callable from expressions.
type funcDef struct {
	aggregate bool
	minArgs   int
	maxArgs   int // -1 for variadic
	// argType, when set, is required of every argument.
	argType model.FieldType
	// returns computes the result type from the argument types.
	returns func(args []model.FieldType) model.FieldType
}

func always(t model.FieldType) func([]model.FieldType) model.FieldType {
	return func([]model.FieldType) model.FieldType { return t }
}

func firstArg(args []model.FieldType) model.FieldType {
	if len(args) == 0 {
		return model.TypeNull
	}
	return args[0]
}

func firstNonNull(args []model.FieldType) model.FieldType {
	for _, a := range args {
		if a != model.TypeNull {
			return a
		}
	}
	return model.TypeNull
}

var functions = map[string]funcDef{
	"count":          {aggregate: true, minArgs: 0, maxArgs: 1, returns: always(model.TypeNumber)},
	"count_distinct": {aggregate: true, minArgs: 1, maxArgs: 1, returns: always(model.TypeNumber)},
	"sum":            {aggregate: true, minArgs: 1, maxArgs: 1, argType: model.TypeNumber, returns: always(model.TypeNumber)},
	"avg":            {aggregate: true, minArgs: 1, maxArgs: 1, argType: model.TypeNumber, returns: always(model.TypeNumber)},
	"min":            {aggregate: true, minArgs: 1, maxArgs: 1, returns: firstArg},
	"max":            {aggregate: true, minArgs: 1, maxArgs: 1, returns: firstArg},

	"upper":    {minArgs: 1, maxArgs: 1, argType: model.TypeString, returns: always(model.TypeString)},
	"lower":    {minArgs: 1, maxArgs: 1, argType: model.TypeString, returns: always(model.TypeString)},
	"trim":     {minArgs: 1, maxArgs: 1, argType: model.TypeString, returns: always(model.TypeString)},
	"length":   {minArgs: 1, maxArgs: 1, argType: model.TypeString, returns: always(model.TypeNumber)},
	"concat":   {minArgs: 1, maxArgs: -1, returns: always(model.TypeString)},
	"substr":   {minArgs: 2, maxArgs: 3, returns: always(model.TypeString)},
	"coalesce": {minArgs: 1, maxArgs: -1, returns: firstNonNull},
	"nullif":   {minArgs: 2, maxArgs: 2, returns: firstArg},
	"round":    {minArgs: 1, maxArgs: 2, argType: model.TypeNumber, returns: always(model.TypeNumber)},
	"abs":      {minArgs: 1, maxArgs: 1, argType: model.TypeNumber, returns: always(model.TypeNumber)},
	"floor":    {minArgs: 1, maxArgs: 1, argType: model.TypeNumber, returns: always(model.TypeNumber)},
	"ceil":     {minArgs: 1, maxArgs: 1, argType: model.TypeNumber, returns: always(model.TypeNumber)},
}

// FunctionNames returns the names of all known functions, for completion.
func FunctionNames() []string {
	out := make([]string, 0, len(functions))
	for name := range functions {
		out = append(out, name)
	}
	return out
}
