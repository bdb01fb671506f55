package crystal

import "strings"

// The parser produces immutable trees of these nodes; the engine only reads
// them.

type Expr interface {
	String() string
}

type StringLit struct {
	Text string // unquoted
}

func (e *StringLit) String() string { return `"` + e.Text + `"` }

type NumberLit struct {
	Text string // literal text; numeric parsing is deferred to coercion
}

func (e *NumberLit) String() string { return e.Text }

type VariableRef struct {
	Name string
}

func (e *VariableRef) String() string { return "'" + e.Name + "'" }

type PathLit struct {
	Text string
}

func (e *PathLit) String() string { return e.Text }

type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	case OpModulo:
		return "%"
	}
	return "?"
}

type BinaryExpr struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (e *BinaryExpr) String() string {
	return "(" + e.Left.String() + " " + e.Op.String() + " " + e.Right.String() + ")"
}

// Conditions

type Condition interface {
	condNode()
}

type ExistsCond struct {
	Path Expr
}

func (*ExistsCond) condNode() {}

type CompareOp int

const (
	CmpGreater CompareOp = iota
	CmpLess
	CmpEqual
)

func (op CompareOp) String() string {
	switch op {
	case CmpGreater:
		return ">"
	case CmpLess:
		return "<"
	case CmpEqual:
		return "="
	}
	return "?"
}

type CompareCond struct {
	Left  Expr
	Op    CompareOp
	Right Expr
}

func (*CompareCond) condNode() {}

// Statements

type Statement interface {
	stmtNode()
	Pos() Location
}

type node struct {
	Loc Location
}

func (n node) Pos() Location { return n.Loc }
func (node) stmtNode()       {}

type VarScope int

const (
	LocalScope VarScope = iota
	GlobalScope
)

func (s VarScope) String() string {
	if s == GlobalScope {
		return "global"
	}
	return "local"
}

type SayStmt struct {
	node
	Text Expr
}

type AskStmt struct {
	node
	Prompt Expr
	Scope  VarScope
	Name   string
}

type SetStmt struct {
	node
	Scope VarScope
	Name  string
	Value Expr
}

type IfStmt struct {
	node
	Cond      Condition
	Then      []Statement
	Otherwise []Statement // nil when no otherwise branch
}

type RepeatMode int

const (
	RepeatCount RepeatMode = iota
	RepeatInfinite
	RepeatWhile
	RepeatUntil
	RepeatForEach
)

type RepeatStmt struct {
	node
	Mode  RepeatMode
	Count Expr      // RepeatCount
	Cond  Condition // RepeatWhile, RepeatUntil
	Var   string    // RepeatForEach loop variable
	Dir   Expr      // RepeatForEach directory
	Body  []Statement
}

type CopyStmt struct {
	node
	Src, Dst Expr
	Force    bool
}

type MoveStmt struct {
	node
	Src, Dst Expr
	Force    bool
}

type DeleteStmt struct {
	node
	Path  Expr
	Force bool
}

type ListFilter int

const (
	ListAll ListFilter = iota
	ListFiles
	ListFolders
)

func (f ListFilter) String() string {
	switch f {
	case ListFiles:
		return "files"
	case ListFolders:
		return "folders"
	}
	return "all"
}

type ListStmt struct {
	node
	Filter ListFilter
	Dir    Expr // nil means current directory
}

type CreateStmt struct {
	node
	Folder bool
	Path   Expr
}

type MakeFileStmt struct {
	node
	Path    Expr
	Content Expr
	Force   bool
}

type MakeFolderStmt struct {
	node
	Paths []Expr
}

type IncludeStmt struct {
	node
	Path Expr
}

type FuncDefStmt struct {
	node
	Name string
	Body []Statement
}

type FuncCallStmt struct {
	node
	Name string
}

type PauseStmt struct {
	node
	Message Expr // nil for the default prompt
}

type TryStmt struct {
	node
	Try   []Statement
	Catch []Statement
}

type ErrorStmt struct {
	node
	Message Expr
}

type PingStmt struct {
	node
	Host Expr
}

type DownloadStmt struct {
	node
	URL   Expr
	Dest  Expr
	Force bool
}

type ChainStmt struct {
	node
	Stmts []Statement
}

type ZipStmt struct {
	node
	Sources []Expr
	Dest    Expr
}

type UnzipStmt struct {
	node
	Archive Expr
	Dest    Expr
}

type WaitUnit int

const (
	WaitSeconds WaitUnit = iota
	WaitMinutes
	WaitHours
)

type WaitStmt struct {
	node
	Amount Expr
	Unit   WaitUnit
}

type CdStmt struct {
	node
	Dir Expr
}

type PwdStmt struct {
	node
}

type PathAction int

const (
	PathList PathAction = iota
	PathAdd
	PathRemove
)

type PathStmt struct {
	node
	Action PathAction
	Dir    Expr // nil for PathList
}

// FormatStatements renders a statement tree for the ast debug subcommand.
func FormatStatements(stmts []Statement, indent string) string {
	var b strings.Builder
	for _, s := range stmts {
		b.WriteString(indent)
		switch v := s.(type) {
		case *SayStmt:
			b.WriteString("say " + v.Text.String() + "\n")
		case *AskStmt:
			b.WriteString("ask " + v.Prompt.String() + " " + v.Scope.String() + " '" + v.Name + "'\n")
		case *SetStmt:
			b.WriteString("set " + v.Scope.String() + " '" + v.Name + "' = " + v.Value.String() + "\n")
		case *IfStmt:
			b.WriteString("if " + formatCondition(v.Cond) + "\n")
			b.WriteString(FormatStatements(v.Then, indent+"  "))
			if v.Otherwise != nil {
				b.WriteString(indent + "otherwise\n")
				b.WriteString(FormatStatements(v.Otherwise, indent+"  "))
			}
		case *RepeatStmt:
			switch v.Mode {
			case RepeatCount:
				b.WriteString("repeat " + v.Count.String() + "\n")
			case RepeatInfinite:
				b.WriteString("repeat infinite\n")
			case RepeatWhile:
				b.WriteString("repeat while " + formatCondition(v.Cond) + "\n")
			case RepeatUntil:
				b.WriteString("repeat until " + formatCondition(v.Cond) + "\n")
			case RepeatForEach:
				b.WriteString("repeat for each '" + v.Var + "' in " + v.Dir.String() + "\n")
			}
			b.WriteString(FormatStatements(v.Body, indent+"  "))
		case *TryStmt:
			b.WriteString("try\n")
			b.WriteString(FormatStatements(v.Try, indent+"  "))
			b.WriteString(indent + "catch\n")
			b.WriteString(FormatStatements(v.Catch, indent+"  "))
		case *FuncDefStmt:
			b.WriteString("function " + v.Name + "\n")
			b.WriteString(FormatStatements(v.Body, indent+"  "))
		case *FuncCallStmt:
			b.WriteString("call " + v.Name + "\n")
		case *ChainStmt:
			b.WriteString("chain\n")
			b.WriteString(FormatStatements(v.Stmts, indent+"  "))
		case *ErrorStmt:
			b.WriteString("error " + v.Message.String() + "\n")
		default:
			b.WriteString(stmtTypeString(s) + "\n")
		}
	}
	return b.String()
}

func formatCondition(c Condition) string {
	switch v := c.(type) {
	case *ExistsCond:
		return "{" + v.Path.String() + "} exists"
	case *CompareCond:
		return v.Left.String() + " " + v.Op.String() + " " + v.Right.String()
	}
	return "?"
}

func stmtTypeString(s Statement) string {
	switch s.(type) {
	case *CopyStmt:
		return "copy"
	case *MoveStmt:
		return "move"
	case *DeleteStmt:
		return "delete"
	case *ListStmt:
		return "list"
	case *CreateStmt:
		return "create"
	case *MakeFileStmt:
		return "make file"
	case *MakeFolderStmt:
		return "make folder"
	case *IncludeStmt:
		return "include"
	case *PauseStmt:
		return "pause"
	case *PingStmt:
		return "ping"
	case *DownloadStmt:
		return "download"
	case *ZipStmt:
		return "zip"
	case *UnzipStmt:
		return "unzip"
	case *WaitStmt:
		return "wait"
	case *CdStmt:
		return "cd"
	case *PwdStmt:
		return "pwd"
	case *PathStmt:
		return "path"
	}
	return "statement"
}
