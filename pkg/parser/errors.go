package parser

import (
	"fmt"

	"github.com/leapstack-labs/semql/pkg/token"
)

// SyntaxError is a lexical or grammatical error with position information.
type SyntaxError struct {
	Pos     token.Position
	Len     int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Common error messages
const (
	ErrUnexpectedToken     = "Unexpected %s, expected %s"
	ErrUnterminatedString  = "Unterminated string literal"
	ErrUnterminatedIdent   = "Unterminated quoted identifier"
	ErrUnterminatedComment = "Unterminated block comment"
	ErrIllegalCharacter    = "Illegal character %s"
)

// quote renders a token for use in a message.
func quote(tok token.Token) string {
	if tok.Type == token.EOF {
		return "'<EOF>'"
	}
	return "'" + tok.Literal + "'"
}
