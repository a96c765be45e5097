package ast

// Expr is an expression element.
type Expr interface {
	Element
	// Text is the expression as written, used as the source of filters.
	Text() string
}

type exprBase struct {
	base
	text string
}

func (e *exprBase) Text() string { return e.text }

// ExprNumber is a numeric literal.
type ExprNumber struct {
	exprBase
	Value string
}

func (e *ExprNumber) ElementType() string { return "number" }
func (e *ExprNumber) Children() []Element { return nil }

// ExprString is a string literal.
type ExprString struct {
	exprBase
	Value string
}

func (e *ExprString) ElementType() string { return "string" }
func (e *ExprString) Children() []Element { return nil }

// ExprBool is true or false.
type ExprBool struct {
	exprBase
	Value bool
}

func (e *ExprBool) ElementType() string { return "boolean" }
func (e *ExprBool) Children() []Element { return nil }

// ExprNull is the null literal.
type ExprNull struct {
	exprBase
}

func (e *ExprNull) ElementType() string { return "null" }
func (e *ExprNull) Children() []Element { return nil }

// ExprField references a field by (possibly dotted) path.
type ExprField struct {
	exprBase
	Path []string
}

func (e *ExprField) ElementType() string { return "field reference" }
func (e *ExprField) Children() []Element { return nil }

// ExprCall is a function call. Name is lower case.
type ExprCall struct {
	exprBase
	Name string
	Args []Expr
}

func (e *ExprCall) ElementType() string { return "function call" }
func (e *ExprCall) Children() []Element {
	out := make([]Element, 0, len(e.Args))
	for _, a := range e.Args {
		out = append(out, a)
	}
	return out
}

// ExprBinary is an infix operation.
type ExprBinary struct {
	exprBase
	Op          string
	Left, Right Expr
}

func (e *ExprBinary) ElementType() string { return "binary expression" }
func (e *ExprBinary) Children() []Element { return children(e.Left, e.Right) }

// ExprUnary is "not x" or "-x".
type ExprUnary struct {
	exprBase
	Op      string
	Operand Expr
}

func (e *ExprUnary) ElementType() string { return "unary expression" }
func (e *ExprUnary) Children() []Element { return children(e.Operand) }
