package crystal

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Parser is a recursive-descent parser over the lexed token stream. Statements
// are newline-terminated; semicolons chain several statements on one line.
type Parser struct {
	tokens   []lexer.Token
	pos      int
	filename string
}

// Parse turns script text into the statement tree the engine consumes.
func Parse(src, filename string) ([]Statement, *ScriptError) {
	tokens, err := Lex(src, filename)
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: tokens, filename: filename}
	return p.parseProgram()
}

func (p *Parser) parseProgram() ([]Statement, *ScriptError) {
	var stmts []Statement
	for {
		p.skipNewlines()
		if p.atEOF() {
			return stmts, nil
		}
		stmt, err := p.parseLine()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if err := p.endOfStatement(); err != nil {
			return nil, err
		}
	}
}

// parseLine parses one statement, folding `a; b; c` into a chain.
func (p *Parser) parseLine() (Statement, *ScriptError) {
	first, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if !p.atPunct(";") {
		return first, nil
	}

	chain := &ChainStmt{node: node{Loc: first.Pos()}, Stmts: []Statement{first}}
	for p.atPunct(";") {
		p.next()
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		chain.Stmts = append(chain.Stmts, stmt)
	}
	return chain, nil
}

func (p *Parser) parseStatement() (Statement, *ScriptError) {
	tok := p.peek()
	if tok.Type != tokIdent {
		return nil, p.errAt(tok, "expected a statement, found %q", tok.Value)
	}
	loc := p.loc(tok)

	switch tok.Value {
	case "say":
		p.next()
		text, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return &SayStmt{node: node{Loc: loc}, Text: text}, nil

	case "ask":
		p.next()
		prompt, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		scope, err := p.parseScope()
		if err != nil {
			return nil, err
		}
		name, err := p.parseVariableName()
		if err != nil {
			return nil, err
		}
		return &AskStmt{node: node{Loc: loc}, Prompt: prompt, Scope: scope, Name: name}, nil

	case "set":
		p.next()
		scope, err := p.parseScope()
		if err != nil {
			return nil, err
		}
		name, err := p.parseVariableName()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct("="); err != nil {
			err.Help = "set expects: set local 'name' = <value>"
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &SetStmt{node: node{Loc: loc}, Scope: scope, Name: name, Value: value}, nil

	case "if":
		p.next()
		return p.parseIf(loc)

	case "repeat":
		p.next()
		return p.parseRepeat(loc)

	case "copy", "move":
		p.next()
		src, err := p.parsePathValue()
		if err != nil {
			return nil, err
		}
		if err := p.expectIdent("to"); err != nil {
			return nil, err
		}
		dst, err := p.parsePathValue()
		if err != nil {
			return nil, err
		}
		force := p.acceptIdent("force")
		if tok.Value == "copy" {
			return &CopyStmt{node: node{Loc: loc}, Src: src, Dst: dst, Force: force}, nil
		}
		return &MoveStmt{node: node{Loc: loc}, Src: src, Dst: dst, Force: force}, nil

	case "delete":
		p.next()
		path, err := p.parsePathValue()
		if err != nil {
			return nil, err
		}
		force := p.acceptIdent("force")
		return &DeleteStmt{node: node{Loc: loc}, Path: path, Force: force}, nil

	case "list", "ls":
		p.next()
		return p.parseList(loc)

	case "create":
		p.next()
		folder := false
		switch {
		case p.acceptIdent("file"):
		case p.acceptIdent("folder"):
			folder = true
		default:
			return nil, p.errHere("create: expected 'file' or 'folder'")
		}
		path, err := p.parsePathValue()
		if err != nil {
			return nil, err
		}
		return &CreateStmt{node: node{Loc: loc}, Folder: folder, Path: path}, nil

	case "make":
		p.next()
		return p.parseMake(loc)

	case "include":
		p.next()
		path, err := p.parsePathValue()
		if err != nil {
			return nil, err
		}
		return &IncludeStmt{node: node{Loc: loc}, Path: path}, nil

	case "function":
		p.next()
		name := p.peek()
		if name.Type != tokIdent {
			return nil, p.errAt(name, "function: expected a name")
		}
		p.next()
		body, err := p.parseBlock("end")
		if err != nil {
			return nil, err
		}
		if err := p.expectEnd("function"); err != nil {
			return nil, err
		}
		return &FuncDefStmt{node: node{Loc: loc}, Name: name.Value, Body: body}, nil

	case "pause":
		p.next()
		var msg Expr
		if p.peek().Type == tokString {
			var err *ScriptError
			msg, err = p.parseValue()
			if err != nil {
				return nil, err
			}
		}
		return &PauseStmt{node: node{Loc: loc}, Message: msg}, nil

	case "try":
		p.next()
		tryBody, err := p.parseBlock("catch")
		if err != nil {
			return nil, err
		}
		p.next() // catch
		catchBody, err := p.parseBlock("end")
		if err != nil {
			return nil, err
		}
		if err := p.expectEnd("try"); err != nil {
			return nil, err
		}
		return &TryStmt{node: node{Loc: loc}, Try: tryBody, Catch: catchBody}, nil

	case "error":
		p.next()
		msg, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return &ErrorStmt{node: node{Loc: loc}, Message: msg}, nil

	case "ping":
		p.next()
		host, err := p.parsePathValue()
		if err != nil {
			return nil, err
		}
		return &PingStmt{node: node{Loc: loc}, Host: host}, nil

	case "download":
		p.next()
		url, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if err := p.expectIdent("to"); err != nil {
			return nil, err
		}
		dest, err := p.parsePathValue()
		if err != nil {
			return nil, err
		}
		force := p.acceptIdent("force")
		return &DownloadStmt{node: node{Loc: loc}, URL: url, Dest: dest, Force: force}, nil

	case "zip":
		p.next()
		var sources []Expr
		for !p.atIdent("to") {
			src, err := p.parsePathValue()
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
		}
		p.next() // to
		dest, err := p.parsePathValue()
		if err != nil {
			return nil, err
		}
		return &ZipStmt{node: node{Loc: loc}, Sources: sources, Dest: dest}, nil

	case "unzip":
		p.next()
		archive, err := p.parsePathValue()
		if err != nil {
			return nil, err
		}
		if err := p.expectIdent("to"); err != nil {
			return nil, err
		}
		dest, err := p.parsePathValue()
		if err != nil {
			return nil, err
		}
		return &UnzipStmt{node: node{Loc: loc}, Archive: archive, Dest: dest}, nil

	case "wait":
		p.next()
		amount, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		unit, err := p.parseWaitUnit()
		if err != nil {
			return nil, err
		}
		return &WaitStmt{node: node{Loc: loc}, Amount: amount, Unit: unit}, nil

	case "cd":
		p.next()
		dir, err := p.parsePathValue()
		if err != nil {
			return nil, err
		}
		return &CdStmt{node: node{Loc: loc}, Dir: dir}, nil

	case "pwd":
		p.next()
		return &PwdStmt{node: node{Loc: loc}}, nil

	case "path":
		p.next()
		switch {
		case p.acceptIdent("list"):
			return &PathStmt{node: node{Loc: loc}, Action: PathList}, nil
		case p.acceptIdent("add"):
			dir, err := p.parsePathValue()
			if err != nil {
				return nil, err
			}
			return &PathStmt{node: node{Loc: loc}, Action: PathAdd, Dir: dir}, nil
		case p.acceptIdent("remove"):
			dir, err := p.parsePathValue()
			if err != nil {
				return nil, err
			}
			return &PathStmt{node: node{Loc: loc}, Action: PathRemove, Dir: dir}, nil
		default:
			return nil, p.errHere("path: expected 'list', 'add' or 'remove'")
		}

	default:
		// A bare name is a function call. Unknown names are resolved (and
		// quietly skipped) at run time, not here.
		p.next()
		return &FuncCallStmt{node: node{Loc: loc}, Name: tok.Value}, nil
	}
}

func (p *Parser) parseIf(loc Location) (Statement, *ScriptError) {
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	thenBody, err := p.parseBlock("otherwise", "end")
	if err != nil {
		return nil, err
	}
	var otherwise []Statement
	if p.atIdent("otherwise") {
		p.next()
		otherwise, err = p.parseBlock("end")
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectEnd("if"); err != nil {
		return nil, err
	}
	return &IfStmt{node: node{Loc: loc}, Cond: cond, Then: thenBody, Otherwise: otherwise}, nil
}

func (p *Parser) parseRepeat(loc Location) (Statement, *ScriptError) {
	stmt := &RepeatStmt{node: node{Loc: loc}}

	switch {
	case p.acceptIdent("infinite"):
		stmt.Mode = RepeatInfinite
	case p.acceptIdent("while"):
		stmt.Mode = RepeatWhile
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		stmt.Cond = cond
	case p.acceptIdent("until"):
		stmt.Mode = RepeatUntil
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		stmt.Cond = cond
	case p.acceptIdent("for"):
		if err := p.expectIdent("each"); err != nil {
			return nil, err
		}
		name, err := p.parseVariableName()
		if err != nil {
			return nil, err
		}
		if err := p.expectIdent("in"); err != nil {
			return nil, err
		}
		dir, err := p.parsePathValue()
		if err != nil {
			return nil, err
		}
		stmt.Mode = RepeatForEach
		stmt.Var = name
		stmt.Dir = dir
	default:
		stmt.Mode = RepeatCount
		count, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		stmt.Count = count
	}

	body, err := p.parseBlock("end")
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd("repeat"); err != nil {
		return nil, err
	}
	stmt.Body = body
	return stmt, nil
}

func (p *Parser) parseList(loc Location) (Statement, *ScriptError) {
	stmt := &ListStmt{node: node{Loc: loc}, Filter: ListAll}
	switch {
	case p.acceptIdent("files"):
		stmt.Filter = ListFiles
	case p.acceptIdent("folders"):
		stmt.Filter = ListFolders
	case p.acceptIdent("all"):
		stmt.Filter = ListAll
	}
	if p.acceptIdent("in") {
		dir, err := p.parsePathValue()
		if err != nil {
			return nil, err
		}
		stmt.Dir = dir
	}
	return stmt, nil
}

func (p *Parser) parseMake(loc Location) (Statement, *ScriptError) {
	switch {
	case p.acceptIdent("file"):
		path, err := p.parsePathValue()
		if err != nil {
			return nil, err
		}
		content, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		force := p.acceptIdent("force")
		return &MakeFileStmt{node: node{Loc: loc}, Path: path, Content: content, Force: force}, nil

	case p.acceptIdent("folder"):
		var paths []Expr
		for {
			path, err := p.parsePathValue()
			if err != nil {
				return nil, err
			}
			paths = append(paths, path)
			if !p.atPathValue() {
				break
			}
		}
		return &MakeFolderStmt{node: node{Loc: loc}, Paths: paths}, nil

	default:
		return nil, p.errHere("make: expected 'file' or 'folder'")
	}
}

// Conditions

func (p *Parser) parseCondition() (Condition, *ScriptError) {
	if p.atPunct("{") {
		p.next()
		path, err := p.parsePathValue()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct("}"); err != nil {
			return nil, err
		}
		if err := p.expectIdent("exists"); err != nil {
			return nil, err
		}
		return &ExistsCond{Path: path}, nil
	}

	left, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	op, err := p.parseCompareOp()
	if err != nil {
		return nil, err
	}
	right, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &CompareCond{Left: left, Op: op, Right: right}, nil
}

func (p *Parser) parseCompareOp() (CompareOp, *ScriptError) {
	tok := p.peek()
	switch {
	case p.atPunct(">"):
		p.next()
		return CmpGreater, nil
	case p.atPunct("<"):
		p.next()
		return CmpLess, nil
	case p.atPunct("="):
		p.next()
		return CmpEqual, nil
	case p.acceptIdent("greater"):
		if err := p.expectIdent("than"); err != nil {
			return 0, err
		}
		return CmpGreater, nil
	case p.acceptIdent("less"):
		if err := p.expectIdent("than"); err != nil {
			return 0, err
		}
		return CmpLess, nil
	case p.acceptIdent("equals"), p.acceptIdent("is"):
		return CmpEqual, nil
	}
	return 0, p.errAt(tok, "expected a comparison operator, found %q", tok.Value)
}

// Expressions: add/subtract bind loosest, multiply/divide/modulo tighter,
// parentheses override.

func (p *Parser) parseExpression() (Expr, *ScriptError) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch {
		case p.atPunct("+"):
			op = OpAdd
		case p.atPunct("-"):
			op = OpSubtract
		default:
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseTerm() (Expr, *ScriptError) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch {
		case p.atPunct("*"):
			op = OpMultiply
		case p.atPunct("/"):
			op = OpDivide
		case p.atPunct("%"):
			op = OpModulo
		default:
			return left, nil
		}
		p.next()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseFactor() (Expr, *ScriptError) {
	if p.atPunct("(") {
		p.next()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return p.parseValue()
}

// Leaf values

func (p *Parser) parseValue() (Expr, *ScriptError) {
	tok := p.peek()
	switch tok.Type {
	case tokString:
		p.next()
		return &StringLit{Text: strings.Trim(tok.Value, `"`)}, nil
	case tokNumber:
		p.next()
		return &NumberLit{Text: tok.Value}, nil
	case tokVariable:
		p.next()
		return &VariableRef{Name: strings.Trim(tok.Value, "'")}, nil
	case tokPath:
		p.next()
		return &PathLit{Text: tok.Value}, nil
	}
	return nil, p.errAt(tok, "expected a value, found %q", tok.Value)
}

// parsePathValue accepts the token kinds that can denote a path.
func (p *Parser) parsePathValue() (Expr, *ScriptError) {
	tok := p.peek()
	switch tok.Type {
	case tokPath:
		p.next()
		return &PathLit{Text: tok.Value}, nil
	case tokString:
		p.next()
		return &StringLit{Text: strings.Trim(tok.Value, `"`)}, nil
	case tokVariable:
		p.next()
		return &VariableRef{Name: strings.Trim(tok.Value, "'")}, nil
	}
	return nil, p.errAt(tok, "expected a path, found %q", tok.Value)
}

func (p *Parser) atPathValue() bool {
	t := p.peek().Type
	return t == tokPath || t == tokString || t == tokVariable
}

func (p *Parser) parseScope() (VarScope, *ScriptError) {
	switch {
	case p.acceptIdent("local"):
		return LocalScope, nil
	case p.acceptIdent("global"):
		return GlobalScope, nil
	}
	err := p.errHere("expected 'local' or 'global'")
	err.Help = "every variable is declared 'local' (this run) or 'global' (shared)"
	return 0, err
}

func (p *Parser) parseVariableName() (string, *ScriptError) {
	tok := p.peek()
	if tok.Type != tokVariable {
		err := p.errAt(tok, "expected a 'variable' name, found %q", tok.Value)
		err.Help = "variable names are written in single quotes, like 'count'"
		return "", err
	}
	p.next()
	return strings.Trim(tok.Value, "'"), nil
}

func (p *Parser) parseWaitUnit() (WaitUnit, *ScriptError) {
	switch {
	case p.acceptIdent("seconds"), p.acceptIdent("second"):
		return WaitSeconds, nil
	case p.acceptIdent("minutes"), p.acceptIdent("minute"):
		return WaitMinutes, nil
	case p.acceptIdent("hours"), p.acceptIdent("hour"):
		return WaitHours, nil
	}
	return 0, p.errHere("wait: expected 'seconds', 'minutes' or 'hours'")
}

// Blocks

// parseBlock parses statements until one of the stop keywords begins a line.
// The stop token itself is left for the caller.
func (p *Parser) parseBlock(stops ...string) ([]Statement, *ScriptError) {
	var stmts []Statement
	for {
		p.skipNewlines()
		if p.atEOF() {
			err := p.errHere("unexpected end of script, expected %q", strings.Join(stops, "' or '"))
			err.Help = "blocks close with 'end if', 'end repeat', 'end function' or 'end try'"
			return nil, err
		}
		for _, stop := range stops {
			if p.atIdent(stop) {
				return stmts, nil
			}
		}
		stmt, err := p.parseLine()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if err := p.endOfStatement(); err != nil {
			return nil, err
		}
	}
}

// expectEnd consumes `end <keyword>` after a block body.
func (p *Parser) expectEnd(keyword string) *ScriptError {
	if err := p.expectIdent("end"); err != nil {
		return err
	}
	return p.expectIdent(keyword)
}

// Token stream helpers

func (p *Parser) peek() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) next() lexer.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) atEOF() bool {
	return p.peek().Type == lexer.EOF
}

func (p *Parser) atIdent(value string) bool {
	tok := p.peek()
	return tok.Type == tokIdent && tok.Value == value
}

func (p *Parser) acceptIdent(value string) bool {
	if p.atIdent(value) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expectIdent(value string) *ScriptError {
	tok := p.peek()
	if tok.Type != tokIdent || tok.Value != value {
		return p.errAt(tok, "expected %q, found %q", value, tok.Value)
	}
	p.next()
	return nil
}

func (p *Parser) atPunct(value string) bool {
	tok := p.peek()
	return tok.Type == tokPunct && tok.Value == value
}

func (p *Parser) expectPunct(value string) *ScriptError {
	tok := p.peek()
	if tok.Type != tokPunct || tok.Value != value {
		return p.errAt(tok, "expected %q, found %q", value, tok.Value)
	}
	p.next()
	return nil
}

func (p *Parser) skipNewlines() {
	for p.peek().Type == tokNewline {
		p.next()
	}
}

// endOfStatement requires a newline (or the end of input) after a statement.
func (p *Parser) endOfStatement() *ScriptError {
	tok := p.peek()
	if tok.Type == tokNewline {
		p.next()
		return nil
	}
	if tok.Type == lexer.EOF {
		return nil
	}
	return p.errAt(tok, "unexpected %q after statement", tok.Value)
}

func (p *Parser) loc(tok lexer.Token) Location {
	return Location{Filename: p.filename, Line: tok.Pos.Line, Column: tok.Pos.Column}
}

func (p *Parser) errAt(tok lexer.Token, format string, args ...interface{}) *ScriptError {
	msg := fmt.Sprintf(format, args...)
	if tok.Type == lexer.EOF {
		msg = strings.Replace(msg, `""`, "end of script", 1)
	}
	return &ScriptError{Message: msg, Location: p.loc(tok)}
}

func (p *Parser) errHere(format string, args ...interface{}) *ScriptError {
	return p.errAt(p.peek(), format, args...)
}
