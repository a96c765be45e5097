package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/semql/pkg/token"
)

// Lexer tokenizes SemQL input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)
	index   int  // index of the next token

	// Comments collected during lexing (for highlighting)
	Comments []*token.Comment
	// Errors holds lexical errors such as unterminated strings.
	Errors []*SyntaxError
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	if l.pos < len(l.input) && l.readPos > 0 && l.input[l.pos] == '\n' {
		l.line++
		l.col = 0
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// peekCharN returns the character n positions ahead of the current one.
func (l *Lexer) peekCharN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// atEOF reports whether the whole input has been consumed. A NUL byte in
// the middle of the input is not the end.
func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()
	tok := l.scan(pos)
	tok.Pos = pos
	tok.Len = l.pos - pos.Offset
	tok.Index = l.index
	l.index++
	return tok
}

func (l *Lexer) scan(pos token.Position) token.Token {
	if l.atEOF() {
		return token.Token{Type: token.EOF}
	}

	var tok token.Token
	switch l.ch {
	case '+':
		tok = l.single(token.PLUS)
	case '-':
		if l.peekChar() == '>' {
			l.readChar()
			l.readChar()
			return token.Token{Type: token.ARROW, Literal: "->"}
		}
		tok = l.single(token.MINUS)
	case '*':
		tok = l.single(token.STAR)
	case '/':
		tok = l.single(token.SLASH)
	case '%':
		tok = l.single(token.PERCENT)
	case '=':
		tok = l.single(token.EQ)
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok = token.Token{Type: token.LE, Literal: "<="}
		case '>':
			l.readChar()
			tok = token.Token{Type: token.NE, Literal: "<>"}
		default:
			tok = l.single(token.LT)
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.GE, Literal: ">="}
		} else {
			tok = l.single(token.GT)
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.NE, Literal: "!="}
		} else {
			tok = l.single(token.ILLEGAL)
		}
	case '.':
		tok = l.single(token.DOT)
	case ',':
		tok = l.single(token.COMMA)
	case ':':
		tok = l.single(token.COLON)
	case ';':
		tok = l.single(token.SEMI)
	case '(':
		tok = l.single(token.LPAREN)
	case ')':
		tok = l.single(token.RPAREN)
	case '{':
		tok = l.single(token.LBRACE)
	case '}':
		tok = l.single(token.RBRACE)
	case '\'', '"':
		if l.ch == '"' && l.peekChar() == '"' && l.peekCharN(2) == '"' {
			return token.Token{Type: token.STRING, Literal: l.readTripleString(pos)}
		}
		return token.Token{Type: token.STRING, Literal: l.readString(pos, l.ch)}
	case '`':
		return token.Token{Type: token.IDENT, Literal: l.readQuotedIdentifier(pos)}
	default:
		switch {
		case isLetter(l.ch) || l.ch == '_':
			lit := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(strings.ToLower(lit)), Literal: lit}
		case isDigit(l.ch):
			return token.Token{Type: token.NUMBER, Literal: l.readNumber()}
		default:
			r, size := utf8.DecodeRuneInString(l.input[l.pos:])
			for range size - 1 {
				l.readChar()
			}
			tok = token.Token{Type: token.ILLEGAL, Literal: string(r)}
		}
	}

	l.readChar()
	return tok
}

// single returns a one-character token for the current char.
func (l *Lexer) single(t token.TokenType) token.Token {
	return token.Token{Type: t, Literal: string(l.ch)}
}

// skipWhitespaceAndComments skips whitespace and collects comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}

		// -- and // both start a line comment
		if (l.ch == '-' && l.peekChar() == '-') || (l.ch == '/' && l.peekChar() == '/') {
			l.collectLineComment()
			continue
		}

		if l.ch == '/' && l.peekChar() == '*' {
			l.collectBlockComment()
			continue
		}

		break
	}
}

// collectLineComment collects a line comment.
func (l *Lexer) collectLineComment() {
	startPos := l.currentPos()
	startOffset := l.pos

	for l.ch != '\n' && !l.atEOF() {
		l.readChar()
	}

	l.Comments = append(l.Comments, &token.Comment{
		Kind: token.LineComment,
		Text: l.input[startOffset:l.pos],
		Span: token.Span{Start: startPos, End: l.currentPos()},
	})
}

// collectBlockComment collects a block comment.
func (l *Lexer) collectBlockComment() {
	startPos := l.currentPos()
	startOffset := l.pos

	l.readChar() // skip '/'
	l.readChar() // skip '*'

	closed := false
	for !l.atEOF() {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // skip '*'
			l.readChar() // skip '/'
			closed = true
			break
		}
		l.readChar()
	}
	if !closed {
		l.Errors = append(l.Errors, &SyntaxError{Pos: startPos, Len: l.pos - startOffset, Message: ErrUnterminatedComment})
	}

	l.Comments = append(l.Comments, &token.Comment{
		Kind: token.BlockComment,
		Text: l.input[startOffset:l.pos],
		Span: token.Span{Start: startPos, End: l.currentPos()},
	})
}

// readString reads a single- or double-quoted string literal.
// Backslash escapes \n, \t, \\ and an escaped quote are decoded.
func (l *Lexer) readString(start token.Position, quote byte) string {
	l.readChar() // skip opening quote

	var result strings.Builder
	for {
		if l.atEOF() || l.ch == '\n' {
			l.Errors = append(l.Errors, &SyntaxError{Pos: start, Len: l.pos - start.Offset, Message: ErrUnterminatedString})
			return result.String()
		}
		switch l.ch {
		case quote:
			l.readChar() // skip closing quote
			return result.String()
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				result.WriteByte('\n')
			case 't':
				result.WriteByte('\t')
			case 0:
				continue
			default:
				result.WriteByte(l.ch)
			}
			l.readChar()
		default:
			result.WriteByte(l.ch)
			l.readChar()
		}
	}
}

// readTripleString reads a """...""" literal, which may span lines and is
// taken verbatim.
func (l *Lexer) readTripleString(start token.Position) string {
	for range 3 {
		l.readChar()
	}
	bodyStart := l.pos
	for !l.atEOF() {
		if l.ch == '"' && l.peekChar() == '"' && l.peekCharN(2) == '"' {
			body := l.input[bodyStart:l.pos]
			for range 3 {
				l.readChar()
			}
			return body
		}
		l.readChar()
	}
	l.Errors = append(l.Errors, &SyntaxError{Pos: start, Len: l.pos - start.Offset, Message: ErrUnterminatedString})
	return l.input[bodyStart:l.pos]
}

// readQuotedIdentifier reads a backtick-quoted identifier.
func (l *Lexer) readQuotedIdentifier(start token.Position) string {
	l.readChar() // skip opening backtick
	bodyStart := l.pos
	for !l.atEOF() && l.ch != '`' && l.ch != '\n' {
		l.readChar()
	}
	body := l.input[bodyStart:l.pos]
	if l.ch != '`' {
		l.Errors = append(l.Errors, &SyntaxError{Pos: start, Len: l.pos - start.Offset, Message: ErrUnterminatedIdent})
		return body
	}
	l.readChar() // skip closing backtick
	return body
}

// readIdentifier reads an unquoted identifier.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a numeric literal (integer, decimal, or scientific).
func (l *Lexer) readNumber() string {
	start := l.pos

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // skip '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	// Exponent part (e.g., 1e10, 1E-5)
	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) || ((l.peekChar() == '+' || l.peekChar() == '-') && isDigit(l.peekCharN(2)))) {
		l.readChar() // skip 'e' or 'E'
		if l.ch == '+' || l.ch == '-' {
			l.readChar() // skip sign
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[start:l.pos]
}

// isLetter returns true if ch is an ASCII letter.
func isLetter(ch byte) bool {
	return ch < utf8.RuneSelf && unicode.IsLetter(rune(ch))
}

// isDigit returns true if ch is a digit.
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize returns all tokens from the input, ending with EOF.
func Tokenize(input string) []token.Token {
	l := NewLexer(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return tokens
}
