package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"crystal/internal/crystal"
)

const historyFile = ".crystal_history"

func main() {
	if len(os.Args) < 2 {
		os.Exit(runREPL())
	}

	switch os.Args[1] {
	case "lex":
		if len(os.Args) < 3 {
			fmt.Println("Usage: crystal lex <script.cry>")
			os.Exit(1)
		}
		lexDebug(os.Args[2])
		return
	case "ast":
		if len(os.Args) < 3 {
			fmt.Println("Usage: crystal ast <script.cry>")
			os.Exit(1)
		}
		astDebug(os.Args[2])
		return
	}

	os.Exit(runScript(os.Args[1]))
}

func runScript(scriptPath string) int {
	content, err := os.ReadFile(scriptPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Script file not found: %s\n", scriptPath)
		return 1
	}
	if !strings.HasSuffix(scriptPath, ".cry") {
		fmt.Fprintf(os.Stderr, "Warning: '%s' is not a .cry file\n", scriptPath)
	}

	stmts, perr := crystal.Parse(string(content), scriptPath)
	if perr != nil {
		fmt.Fprint(os.Stderr, crystal.FormatError(perr))
		return 1
	}

	ctx := crystal.NewContext()
	eval := crystal.NewEvaluator(ctx, crystal.NewOSGateway())
	eval.SetInterrupt(interruptChannel())

	fmt.Printf("Running Crystal script: %s\n\n", scriptPath)
	if rerr := eval.Run(stmts); rerr != nil {
		fmt.Fprint(os.Stderr, crystal.FormatError(rerr))
		return 1
	}
	return 0
}

// interruptChannel forwards SIGINT to the engine so an infinite repeat can
// end cleanly without killing the process. A second SIGINT while the first is
// still pending means nothing is draining the channel, so the run aborts.
func interruptChannel() <-chan struct{} {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	return forwardInterrupts(sigc, func() {
		fmt.Fprintln(os.Stderr, "\nInterrupted")
		os.Exit(1)
	})
}

func forwardInterrupts(sigc <-chan os.Signal, abort func()) <-chan struct{} {
	ch := make(chan struct{}, 1)
	go func() {
		for range sigc {
			select {
			case ch <- struct{}{}:
			default:
				abort()
				return
			}
		}
	}()
	return ch
}

func runREPL() int {
	fmt.Println("Crystal Shell v0.1")
	fmt.Println("Type 'exit' to quit")
	fmt.Println("Run a script: crystal script.cry")
	fmt.Println()

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := historyPath()
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	ctx := crystal.NewContext()
	eval := crystal.NewEvaluator(ctx, crystal.NewOSGateway())
	// Liner owns Ctrl-C at the prompt; this channel covers SIGINT while a
	// statement runs, so an infinite repeat ends instead of the shell.
	eval.SetInterrupt(interruptChannel())

	for {
		line, err := ln.Prompt("crystal> ")
		if err == liner.ErrPromptAborted {
			fmt.Println("Use 'exit' to quit")
			continue
		}
		if err == io.EOF {
			fmt.Println()
			return 0
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.EqualFold(trimmed, "exit") {
			return 0
		}
		ln.AppendHistory(line)

		stmts, perr := crystal.Parse(line+"\n", "<repl>")
		if perr != nil {
			fmt.Printf("Error: %s\n", perr.Message)
			continue
		}
		// Uncaught errors are recoverable in the REPL.
		if rerr := eval.Run(stmts); rerr != nil {
			fmt.Printf("Error: %s\n", rerr.Message)
		}
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFile
	}
	return filepath.Join(home, historyFile)
}

func lexDebug(filename string) {
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}

	tokens, lerr := crystal.Lex(string(content), filename)
	if lerr != nil {
		fmt.Print(crystal.FormatError(lerr))
		os.Exit(1)
	}

	fmt.Printf("Lexing: %s\n", filename)
	fmt.Printf("%-4s %-3s %-10s %s\n", "Line", "Col", "Kind", "Value")
	for _, tok := range tokens {
		value := tok.Value
		if value == "\n" {
			value = "\\n"
		}
		fmt.Printf("%-4d %-3d %-10s %s\n", tok.Pos.Line, tok.Pos.Column, crystal.TokenName(tok.Type), value)
	}
	fmt.Printf("%d tokens\n", len(tokens))
}

func astDebug(filename string) {
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}

	stmts, perr := crystal.Parse(string(content), filename)
	if perr != nil {
		fmt.Print(crystal.FormatError(perr))
		os.Exit(1)
	}

	fmt.Printf("Parsed %d top-level statement(s): %s\n", len(stmts), filename)
	fmt.Print(crystal.FormatStatements(stmts, "  "))
}
