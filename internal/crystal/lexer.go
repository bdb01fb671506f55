package crystal

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Token rules for the scripting language. Rules are tried in order; Number
// must precede Path so "3.14" lexes as a number, and Path must precede Ident
// so drive-letter paths are not split. Bare absolute unix paths are written as
// quoted strings; unquoted path tokens cover drive paths, ./ ../ and ~/ forms.
var scriptLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Variable", Pattern: `'[a-zA-Z_][a-zA-Z0-9_]*'`},
	{Name: "Number", Pattern: `[0-9]+(?:\.[0-9]+)?`},
	{Name: "Path", Pattern: `[A-Za-z]:[/\\][^\s;]*|\.\.?/[^\s;]+|~(?:/[^\s;]*)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[-+*/%(){}=<>;]`},
	{Name: "Newline", Pattern: `\n`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
})

var symbols = scriptLexer.Symbols()

var (
	tokComment    = symbols["Comment"]
	tokString     = symbols["String"]
	tokVariable   = symbols["Variable"]
	tokNumber     = symbols["Number"]
	tokPath       = symbols["Path"]
	tokIdent      = symbols["Ident"]
	tokPunct      = symbols["Punct"]
	tokNewline    = symbols["Newline"]
	tokWhitespace = symbols["Whitespace"]
)

// Lex tokenizes source and drops whitespace and comments. Newlines are kept:
// they terminate statements.
func Lex(src, filename string) ([]lexer.Token, *ScriptError) {
	lx, err := scriptLexer.Lex(filename, strings.NewReader(src))
	if err != nil {
		return nil, &ScriptError{Message: err.Error(), Location: Location{Filename: filename, Line: 1, Column: 1}}
	}

	all, err := lexer.ConsumeAll(lx)
	if err != nil {
		if lexErr, ok := err.(*lexer.Error); ok {
			return nil, &ScriptError{
				Message: lexErr.Msg,
				Location: Location{
					Filename: lexErr.Pos.Filename,
					Line:     lexErr.Pos.Line,
					Column:   lexErr.Pos.Column,
				},
			}
		}
		return nil, &ScriptError{Message: err.Error(), Location: Location{Filename: filename}}
	}

	tokens := make([]lexer.Token, 0, len(all))
	for _, tok := range all {
		if tok.EOF() || tok.Type == tokWhitespace || tok.Type == tokComment {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// TokenName maps a token type back to its rule name, for the lex debug
// subcommand.
func TokenName(t lexer.TokenType) string {
	if t == lexer.EOF {
		return "EOF"
	}
	for name, typ := range symbols {
		if typ == t {
			return name
		}
	}
	return "Unknown"
}
