package crystal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CallMode controls the scope a function body runs against. CallShared is the
// language's historical behavior: the body sees and mutates the caller's live
// local scope, with no parameter binding and no depth limit. CallIsolated
// swaps in a fresh local scope per call for anyone who wants real frames.
type CallMode int

const (
	CallShared CallMode = iota
	CallIsolated
)

// Evaluator walks a statement tree and carries out each statement in order,
// mutating the shared Context and delegating side effects to the Gateway.
type Evaluator struct {
	ctx       *Context
	gw        Gateway
	out       io.Writer
	in        *bufio.Reader
	calls     CallMode
	interrupt <-chan struct{}
}

func NewEvaluator(ctx *Context, gw Gateway) *Evaluator {
	return &Evaluator{
		ctx: ctx,
		gw:  gw,
		out: os.Stdout,
		in:  bufio.NewReader(os.Stdin),
	}
}

func (e *Evaluator) SetOutput(w io.Writer) {
	e.out = w
}

func (e *Evaluator) SetInput(r io.Reader) {
	e.in = bufio.NewReader(r)
}

func (e *Evaluator) SetCallMode(mode CallMode) {
	e.calls = mode
}

// SetInterrupt installs the channel an infinite repeat polls. Closing or
// sending on it ends the loop cleanly without aborting the script.
func (e *Evaluator) SetInterrupt(ch <-chan struct{}) {
	e.interrupt = ch
}

func (e *Evaluator) Context() *Context {
	return e.ctx
}

// Run executes a statement sequence to completion. A non-nil result is a hard
// failure that no try/catch handled.
func (e *Evaluator) Run(stmts []Statement) *ScriptError {
	return e.execBlock(stmts)
}

// execBlock runs statements strictly in order; the first hard failure
// abandons the remaining siblings.
func (e *Evaluator) execBlock(stmts []Statement) *ScriptError {
	for _, stmt := range stmts {
		if err := e.execStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) execStatement(stmt Statement) *ScriptError {
	switch v := stmt.(type) {
	case *SayStmt:
		e.printf("%s\n", e.resolve(v.Text).String())
		return nil

	case *AskStmt:
		prompt := e.resolve(v.Prompt).String()
		input := e.readLine(prompt + " ")
		if v.Scope == GlobalScope {
			e.ctx.SetGlobal(v.Name, StringValue(input))
		} else {
			e.ctx.SetLocal(v.Name, StringValue(input))
		}
		return nil

	case *SetStmt:
		value := e.evalExpr(v.Value)
		if v.Scope == GlobalScope {
			e.ctx.SetGlobal(v.Name, value)
		} else {
			e.ctx.SetLocal(v.Name, value)
		}
		return nil

	case *IfStmt:
		if e.evalCondition(v.Cond) {
			return e.execBlock(v.Then)
		}
		if v.Otherwise != nil {
			return e.execBlock(v.Otherwise)
		}
		return nil

	case *RepeatStmt:
		return e.execRepeat(v)

	case *TryStmt:
		if err := e.execBlock(v.Try); err != nil {
			e.printf("[ERROR CAUGHT] %s\n", err.Message)
			// Errors inside the catch block propagate to the next handler.
			return e.execBlock(v.Catch)
		}
		return nil

	case *ErrorStmt:
		return &ScriptError{Message: e.resolve(v.Message).String(), Location: v.Pos()}

	case *ChainStmt:
		return e.execBlock(v.Stmts)

	case *FuncDefStmt:
		e.ctx.DefineFunction(v.Name, v.Body)
		e.printf("[FUNCTION] Defined: %s\n", v.Name)
		return nil

	case *FuncCallStmt:
		return e.execCall(v)

	case *IncludeStmt:
		return e.execInclude(v)

	case *PauseStmt:
		message := "Press Enter to continue..."
		if v.Message != nil {
			message = e.resolve(v.Message).String()
		}
		e.readLine(message)
		return nil

	case *CopyStmt:
		msg, err := e.gw.Copy(e.resolvePath(v.Src), e.resolvePath(v.Dst), v.Force)
		return e.report(v, msg, err)

	case *MoveStmt:
		msg, err := e.gw.Move(e.resolvePath(v.Src), e.resolvePath(v.Dst), v.Force)
		return e.report(v, msg, err)

	case *DeleteStmt:
		msg, err := e.gw.Delete(e.resolvePath(v.Path), v.Force)
		return e.report(v, msg, err)

	case *ListStmt:
		dir := e.ctx.Cwd()
		if v.Dir != nil {
			dir = e.resolvePath(v.Dir)
		}
		if !e.gw.Exists(dir) {
			e.printf("[ERROR] Path not found: %s\n", dir)
			return nil
		}
		if !e.gw.IsDir(dir) {
			e.printf("[ERROR] Not a directory: %s\n", dir)
			return nil
		}
		msg, err := e.gw.List(dir, v.Filter)
		return e.report(v, msg, err)

	case *CreateStmt:
		path := e.resolvePath(v.Path)
		var msg string
		var err error
		if v.Folder {
			msg, err = e.gw.CreateFolder(path)
		} else {
			msg, err = e.gw.CreateFile(path)
		}
		return e.report(v, msg, err)

	case *MakeFileStmt:
		content := e.resolve(v.Content).String()
		msg, err := e.gw.WriteFile(e.resolvePath(v.Path), content, v.Force)
		return e.report(v, msg, err)

	case *MakeFolderStmt:
		var created []string
		for _, pathExpr := range v.Paths {
			path := e.resolvePath(pathExpr)
			if err := e.gw.EnsureFolder(path); err != nil {
				return &ScriptError{Message: err.Error(), Location: v.Pos()}
			}
			created = append(created, path)
		}
		e.printf("[SUCCESS] Created %d folder(s):\n", len(created))
		for _, folder := range created {
			e.printf("  - %s\n", folder)
		}
		return nil

	case *ZipStmt:
		sources := make([]string, 0, len(v.Sources))
		for _, src := range v.Sources {
			sources = append(sources, e.resolvePath(src))
		}
		msg, err := e.gw.Zip(sources, e.resolvePath(v.Dest))
		return e.report(v, msg, err)

	case *UnzipStmt:
		msg, err := e.gw.Unzip(e.resolvePath(v.Archive), e.resolvePath(v.Dest))
		return e.report(v, msg, err)

	case *PingStmt:
		msg, err := e.gw.Ping(e.resolve(v.Host).String())
		return e.report(v, msg, err)

	case *DownloadStmt:
		url := e.resolve(v.URL).String()
		e.printf("Downloading %s...\n", url)
		msg, err := e.gw.Download(url, e.resolvePath(v.Dest), v.Force)
		return e.report(v, msg, err)

	case *WaitStmt:
		seconds := e.toNumber(e.evalExpr(v.Amount))
		switch v.Unit {
		case WaitMinutes:
			seconds *= 60
		case WaitHours:
			seconds *= 3600
		}
		if seconds > 0 {
			e.gw.Wait(time.Duration(seconds * float64(time.Second)))
		}
		return nil

	case *CdStmt:
		dir := e.resolvePath(v.Dir)
		if !e.gw.IsDir(dir) {
			e.printf("[ERROR] Not a directory: %s\n", dir)
			return nil
		}
		e.ctx.Chdir(dir)
		return nil

	case *PwdStmt:
		e.printf("%s\n", e.ctx.Cwd())
		return nil

	case *PathStmt:
		return e.execPath(v)
	}

	return &ScriptError{Message: "unsupported statement", Location: stmt.Pos()}
}

func (e *Evaluator) execRepeat(v *RepeatStmt) *ScriptError {
	switch v.Mode {
	case RepeatCount:
		// The count is evaluated once, before looping.
		count := int(e.toNumber(e.evalExpr(v.Count)))
		for i := 0; i < count; i++ {
			if err := e.execBlock(v.Body); err != nil {
				return err
			}
		}
		return nil

	case RepeatInfinite:
		for {
			if e.interrupted() {
				e.printf("\n[Loop interrupted]\n")
				return nil
			}
			if err := e.execBlock(v.Body); err != nil {
				return err
			}
		}

	case RepeatWhile:
		for e.evalCondition(v.Cond) {
			if err := e.execBlock(v.Body); err != nil {
				return err
			}
		}
		return nil

	case RepeatUntil:
		for !e.evalCondition(v.Cond) {
			if err := e.execBlock(v.Body); err != nil {
				return err
			}
		}
		return nil

	case RepeatForEach:
		dir := e.resolvePath(v.Dir)
		if !e.gw.IsDir(dir) {
			e.printf("[ERROR] Not a directory: %s\n", dir)
			return nil
		}
		entries, err := e.gw.Entries(dir)
		if err != nil {
			return &ScriptError{Message: err.Error(), Location: v.Pos()}
		}
		for _, name := range entries {
			// The binding persists after the loop, holding the last entry.
			e.ctx.SetLocal(v.Var, StringValue(name))
			if err := e.execBlock(v.Body); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

// execCall runs a stored function body. Unknown names are quietly skipped:
// the engine assumes they were something else, not a typo to report. In
// CallShared mode the body runs against the caller's live context.
func (e *Evaluator) execCall(v *FuncCallStmt) *ScriptError {
	body, ok := e.ctx.LookupFunction(v.Name)
	if !ok {
		return nil
	}

	if e.calls == CallIsolated {
		saved := e.ctx.swapLocals(make(map[string]Value))
		err := e.execBlock(body)
		e.ctx.swapLocals(saved)
		return err
	}
	return e.execBlock(body)
}

// execInclude parses another script and runs its statements against the same
// context, so it can read and mutate the includer's variables and functions.
func (e *Evaluator) execInclude(v *IncludeStmt) *ScriptError {
	path := e.resolvePath(v.Path)
	if !e.gw.Exists(path) {
		e.printf("[ERROR] Script not found: %s\n", path)
		return nil
	}

	src, err := e.gw.ReadScript(path)
	if err != nil {
		return &ScriptError{Message: err.Error(), Location: v.Pos()}
	}

	stmts, perr := Parse(src, path)
	if perr != nil {
		e.printf("[ERROR] Failed to include script: %s\n", perr.Error())
		return nil
	}

	if err := e.execBlock(stmts); err != nil {
		return err
	}
	e.printf("[INCLUDED] %s\n", path)
	return nil
}

func (e *Evaluator) execPath(v *PathStmt) *ScriptError {
	switch v.Action {
	case PathList:
		entries := e.gw.PathEntries()
		e.printf("PATH entries:\n")
		for _, entry := range entries {
			e.printf("  %s\n", entry)
		}
		return nil
	case PathAdd:
		msg, err := e.gw.PathAdd(e.resolvePath(v.Dir))
		return e.report(v, msg, err)
	case PathRemove:
		msg, err := e.gw.PathRemove(e.resolvePath(v.Dir))
		return e.report(v, msg, err)
	}
	return nil
}

// report prints a gateway display message and converts a hard gateway fault
// into a propagating error carrying the statement's location.
func (e *Evaluator) report(stmt Statement, msg string, err error) *ScriptError {
	if err != nil {
		return &ScriptError{Message: err.Error(), Location: stmt.Pos()}
	}
	if msg != "" {
		e.printf("%s\n", msg)
	}
	return nil
}

// resolvePath reduces a path expression and resolves it against the tracked
// working directory.
func (e *Evaluator) resolvePath(expr Expr) string {
	path := e.resolve(expr).String()
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + path[1:]
		}
	}
	if filepath.IsAbs(path) || isDrivePath(path) {
		return path
	}
	return filepath.Join(e.ctx.Cwd(), path)
}

func isDrivePath(path string) bool {
	return len(path) > 2 && path[1] == ':' && (path[2] == '/' || path[2] == '\\')
}

func (e *Evaluator) interrupted() bool {
	select {
	case <-e.interrupt:
		return true
	default:
		return false
	}
}

func (e *Evaluator) printf(format string, args ...interface{}) {
	fmt.Fprintf(e.out, format, args...)
}

// readLine prints a prompt and blocks for one line of input. EOF yields an
// empty string.
func (e *Evaluator) readLine(prompt string) string {
	fmt.Fprint(e.out, prompt)
	line, err := e.in.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimRight(line, "\r\n")
}
