package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"

	"github.com/npillmayer/clisp/runtime"
	"github.com/npillmayer/clisp/runtime/native"
)

// main() starts an interactive CLI, where users may enter s-expressions.
// The sandbox evaluates each s-expr and prints the result. It is intended
// for experiments with the runtime: reference counts, scopes, thunks and
// calls into native libraries.
//
func main() {
	// set up logging
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	initf := flag.String("init", "", "Initial load")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelInfo) // will set the correct level later
	pterm.Info.Println("Welcome to the CLisp sandbox")
	tracer().Infof("Trace level is %s", *tlevel)
	//
	// set up lexer and runtime
	lx, err := newLexer()
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	tracer().SetTraceLevel(traceLevel(*tlevel)) // now set the user supplied level
	rt := runtime.NewRuntime(native.Builtins, sandboxBuiltins)
	if !native.Available {
		pterm.Warning.Println("native calls are not available in this build")
	}
	//
	// set up REPL
	repl, err := readline.New("clisp> ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &Intp{
		rt:    rt,
		lexer: lx,
		repl:  repl,
	}
	input := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if input != "" {
		intp.Eval(input)
	}
	//
	// load an init file and start receiving commands / s-expressions
	tracer().Infof("Quit with <ctrl>D") // inform user how to stop the CLI
	intp.loadInitFile(*initf)           // init file name provided by flag
	intp.REPL()                         // go into interactive mode
	intp.shutdown()
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	rt    *runtime.Runtime
	lexer *lexer
	repl  *readline.Instance
}

func (intp *Intp) loadInitFile(filename string) {
	if filename == "" {
		return
	}
	f, err := os.Open(filename)
	if err != nil {
		tracer().Errorf("Unable to open init file: %s", filename)
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineno := 1
	for scanner.Scan() {
		line := scanner.Text()
		if line = strings.TrimSpace(line); line == "" {
			lineno++
			continue
		}
		if _, err := intp.Eval(line); err != nil {
			tracer().Errorf("Error line %d: %v", lineno, err)
		}
		lineno++
	}
	if err := scanner.Err(); err != nil {
		tracer().Errorf("Error while reading init file: " + err.Error())
	}
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		quit, err := intp.Eval(line)
		if err != nil {
			continue
		}
		if quit {
			break
		}
	}
	println("Good bye!")
}

func (intp *Intp) shutdown() {
	intp.repl.Close()
	if forced := intp.rt.Close(); forced > 0 {
		tracer().Infof("%d environments were kept alive by cycles", forced)
	}
	native.CloseLibraries()
}

// Eval evaluates a line of input: either a sandbox command or one or more
// s-expressions.
//
func (intp *Intp) Eval(line string) (bool, error) {
	if strings.HasPrefix(line, ":") {
		return intp.command(strings.Fields(line[1:]))
	}
	tokens, err := intp.lexer.tokenize(line)
	if err != nil {
		pterm.Error.Println(err.Error())
		return false, err
	}
	exprs, err := read(tokens)
	if err != nil {
		pterm.Error.Println(err.Error())
		return false, err
	}
	for _, expr := range exprs {
		tracer().Debugf("eval %v", expr)
		result, err := eval(expr, intp.rt.Current())
		if err != nil {
			pterm.Error.Println(err.Error())
			return false, err
		}
		intp.printResult(result)
		runtime.Release(result)
	}
	return false, nil
}

func (intp *Intp) printResult(result runtime.Object) {
	if result.Type() == runtime.UnspecifiedType {
		return
	}
	tracer().Debugf("result %s has %d references", result.Type(), runtime.Refs(result))
	pterm.Info.Println(runtime.Repr(result))
}

// command executes a sandbox command (a line starting with ':').
func (intp *Intp) command(args []string) (bool, error) {
	if len(args) == 0 {
		return false, nil
	}
	switch args[0] {
	case "quit", "q":
		return true, nil
	case "env":
		intp.dumpEnvironments(len(args) > 1 && args[1] == "all")
	case "push":
		env := intp.rt.PushScope(0)
		pterm.Info.Println(fmt.Sprintf("entered scope %s", env.Name))
	case "pop":
		if err := intp.rt.PopScope(); err != nil {
			pterm.Error.Println(err.Error())
			return false, err
		}
	case "trace":
		if len(args) > 1 {
			level := traceLevel(args[1])
			tracer().SetTraceLevel(level)
			tracing.Select("clisp.runtime").SetTraceLevel(level)
			tracing.Select("clisp.native").SetTraceLevel(level)
		}
	case "libs":
		for _, alias := range native.KnownAliases() {
			pterm.Info.Println(fmt.Sprintf("%-8s %s", alias, strings.Join(native.Candidates(alias), ", ")))
		}
	default:
		err := fmt.Errorf("unknown command :%s", args[0])
		pterm.Error.Println(err.Error())
		return false, err
	}
	return false, nil
}

// dumpEnvironments prints the chain of scopes from the global scope down to
// the current one as a tree. Builtins are only listed on request.
func (intp *Intp) dumpEnvironments(all bool) {
	var chain []*runtime.Environment
	for env := intp.rt.Current(); env != nil; env = env.Parent() {
		chain = append([]*runtime.Environment{env}, chain...)
	}
	ll := pterm.LeveledList{}
	for level, env := range chain {
		ll = append(ll, pterm.LeveledListItem{
			Level: level,
			Text:  fmt.Sprintf("%s (refs=%d)", env.Name, env.Refs()),
		})
		if env == intp.rt.Globals && !all {
			continue
		}
		env.Each(func(name string, v runtime.Object) {
			ll = append(ll, pterm.LeveledListItem{
				Level: level + 1,
				Text:  fmt.Sprintf("%s = %s [%d]", name, runtime.Repr(v), runtime.Refs(v)),
			})
		})
	}
	pterm.Println(fmt.Sprintf("%d environments alive", intp.rt.Reachable()))
	root := pterm.NewTreeFromLeveledList(ll)
	pterm.DefaultTree.WithRoot(root).Render()
}

func traceLevel(l string) tracing.TraceLevel {
	return tracing.TraceLevelFromString(l)
}
