// Package repl is an interactive shell that lowers Lua input chunk by chunk
// into one persistent workspace.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"github.com/Figliar/extension-plus-API/blocks"
	"github.com/Figliar/extension-plus-API/errors"
	"github.com/Figliar/extension-plus-API/logging"
	"github.com/Figliar/extension-plus-API/lookup"
	"github.com/Figliar/extension-plus-API/lowering"
	"github.com/Figliar/extension-plus-API/syntax/gopherlua"
	"github.com/Figliar/extension-plus-API/syntax/sitter"
)

// REPLConfig contains configuration for the REPL
type REPLConfig struct {
	Tables         *lookup.Tables
	Options        []lowering.Option
	Logger         logging.Logger
	Prompt         string // Main prompt (default: "lua> ")
	ContinuePrompt string // Continuation prompt (default: "... ")
	HistoryFile    string
	HistorySize    int
	ShowWelcome    bool
	Output         io.Writer
}

// REPL represents the Read-Translate-Print Loop
type REPL struct {
	ws      *blocks.MemoryWorkspace
	session *lowering.Session
	tables  *lookup.Tables
	options []lowering.Option
	logger  logging.Logger

	prompt         string
	continuePrompt string
	historyFile    string
	historySize    int
	showWelcome    bool
	running        bool
	inputs         int

	buffer *ChunkBuffer
	out    io.Writer
}

// NewREPLWithConfig creates a REPL with its own workspace and session
func NewREPLWithConfig(config REPLConfig) (*REPL, error) {
	prompt := config.Prompt
	if prompt == "" {
		prompt = "lua> "
	}
	continuePrompt := config.ContinuePrompt
	if continuePrompt == "" {
		continuePrompt = "... "
	}
	historySize := config.HistorySize
	if historySize == 0 {
		historySize = 1000
	}
	logger := config.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	out := config.Output
	if out == nil {
		out = os.Stdout
	}

	r := &REPL{
		ws:             blocks.NewMemoryWorkspace(nil),
		tables:         config.Tables,
		options:        config.Options,
		logger:         logger.WithComponent("repl"),
		prompt:         prompt,
		continuePrompt: continuePrompt,
		historyFile:    config.HistoryFile,
		historySize:    historySize,
		showWelcome:    config.ShowWelcome,
		buffer:         NewChunkBuffer(),
		out:            out,
	}
	session, err := lowering.NewSession(r.ws, r.tables, r.options...)
	if err != nil {
		return nil, err
	}
	r.session = session
	return r, nil
}

// Workspace returns the workspace every input is lowered into
func (r *REPL) Workspace() *blocks.MemoryWorkspace { return r.ws }

// Session returns the persistent lowering session
func (r *REPL) Session() *lowering.Session { return r.session }

// Running reports whether the loop still accepts input
func (r *REPL) Running() bool { return r.running }

// isInteractive checks if the input is interactive (terminal) or piped
func (r *REPL) isInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// Run starts the loop on stdin
func (r *REPL) Run() error {
	r.running = true
	if r.isInteractive() {
		if r.showWelcome {
			r.printWelcome()
		}
		return r.runInteractive()
	}
	return r.RunReader(os.Stdin)
}

// runInteractive runs the loop with readline line editing and history
func (r *REPL) runInteractive() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          r.prompt,
		HistoryFile:     r.historyFile,
		HistoryLimit:    r.historySize,
		InterruptPrompt: "^C",
		EOFPrompt:       ":quit",
		AutoComplete:    r.completer(),
	})
	if err != nil {
		return errors.NewSystemError("READLINE_INIT_FAILED", fmt.Sprintf("failed to initialize readline: %v", err))
	}
	defer func() {
		if err := rl.Close(); err != nil {
			r.logger.Warn("failed to close readline", logging.ErrorField("error", err))
		}
	}()

	for r.running {
		if r.buffer.Pending() {
			rl.SetPrompt(r.continuePrompt)
		} else {
			rl.SetPrompt(r.prompt)
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 && !r.buffer.Pending() {
					fmt.Fprintln(r.out, "Goodbye!")
					break
				}
				r.buffer.Reset()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(r.out, "Goodbye!")
				break
			}
			return errors.NewSystemError("READ_ERROR", fmt.Sprintf("read error: %v", err))
		}
		r.Feed(line)
	}
	return nil
}

// RunReader feeds every line of in through the loop, then flushes whatever
// is still buffered
func (r *REPL) RunReader(in io.Reader) error {
	r.running = true
	scanner := bufio.NewScanner(in)
	for r.running && scanner.Scan() {
		r.Feed(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return errors.NewSystemError("STDIN_READ_ERROR", fmt.Sprintf("error reading input: %v", err))
	}
	if r.running && r.buffer.Pending() {
		r.translate(r.buffer.Source())
		r.buffer.Reset()
	}
	return nil
}

// Feed processes one input line: a command, or Lua that is buffered until
// the chunk is complete and then lowered
func (r *REPL) Feed(line string) {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, ":") {
		if err := r.handleCommand(trimmed); err != nil {
			r.displayError(err)
		}
		return
	}
	if trimmed == "" && !r.buffer.Pending() {
		return
	}

	r.buffer.Add(line)
	if !r.buffer.Complete() {
		return
	}
	r.translate(r.buffer.Source())
	r.buffer.Reset()
}

// translate lowers one complete chunk and prints the blocks it added
func (r *REPL) translate(src string) {
	r.inputs++
	name := fmt.Sprintf("<input %d>", r.inputs)
	before := len(r.ws.Blocks())

	root, err := gopherlua.Parse([]byte(src), name)
	if err != nil {
		r.displayError(err)
		diags, derr := sitter.Diagnose(context.Background(), []byte(src))
		if derr == nil {
			for _, d := range diags {
				fmt.Fprintf(r.out, "  %s\n", d)
			}
		}
		return
	}

	report, err := r.session.Translate(root)
	if err != nil {
		r.displayError(err)
		return
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(r.out, "warning: %s\n", w.Message)
	}

	created := r.ws.Blocks()[before:]
	fresh := make(map[blocks.Block]bool, len(created))
	for _, b := range created {
		fresh[b] = true
	}
	for _, b := range created {
		// chain heads: new top blocks and new blocks hung below an older one
		if parent := b.Parent(); parent == nil || (!fresh[parent] && b.Previous() != nil) {
			fmt.Fprint(r.out, blocks.DumpChain(r.ws, b))
		}
	}
	r.logger.Debug("input lowered",
		logging.StringField("input", name),
		logging.IntField("blocks", len(created)))
}

// handleCommand runs a ':' command
func (r *REPL) handleCommand(input string) error {
	parts := strings.Fields(strings.TrimPrefix(input, ":"))
	if len(parts) == 0 {
		return errors.NewValidationError("INVALID_COMMAND", "empty command")
	}

	switch parts[0] {
	case "help", "h":
		r.printHelp()
	case "quit", "q", "exit":
		r.running = false
	case "reset":
		r.ws.Clear()
		r.session.Reset()
		r.buffer.Reset()
		fmt.Fprintln(r.out, "workspace cleared")
	case "undo":
		line, ok := r.buffer.Pop()
		if !ok {
			return errors.NewValidationError("INVALID_COMMAND", "nothing buffered")
		}
		fmt.Fprintf(r.out, "dropped: %s (%d lines buffered)\n", line, r.buffer.Lines())
	case "dump":
		fmt.Fprint(r.out, blocks.Dump(r.ws))
	case "vars":
		for _, v := range r.ws.Variables() {
			fmt.Fprintf(r.out, "%s %s\n", v.ID, v.Name)
		}
	case "sigs":
		r.printSignatures()
	case "kinds":
		fmt.Fprintln(r.out, strings.Join(r.session.Registry().Kinds(), " "))
	case "warnings":
		for _, w := range r.session.Warnings() {
			fmt.Fprintln(r.out, w.Error())
		}
	default:
		return errors.NewValidationError("UNKNOWN_COMMAND", fmt.Sprintf("unknown command: :%s", parts[0]))
	}
	return nil
}

func (r *REPL) printSignatures() {
	sigs := r.session.Signatures().All()
	sort.Slice(sigs, func(i, j int) bool { return sigs[i].Name < sigs[j].Name })
	for _, sig := range sigs {
		kind := "procedure"
		if sig.HasReturn {
			kind = "function"
		}
		fmt.Fprintf(r.out, "%s %s(%s)\n", kind, sig.Name, strings.Join(sig.Params, ", "))
	}
}

// printWelcome displays the welcome message
func (r *REPL) printWelcome() {
	fmt.Fprintln(r.out, "luablocks - Lua to blocks translator")
	fmt.Fprintln(r.out, "Type ':help' for available commands or ':quit' to exit")
	fmt.Fprintln(r.out)
}

// printHelp displays help information
func (r *REPL) printHelp() {
	fmt.Fprintln(r.out, "Available commands:")
	fmt.Fprintln(r.out, "  :help, :h          - Show this help message")
	fmt.Fprintln(r.out, "  :quit, :q          - Exit the REPL")
	fmt.Fprintln(r.out, "  :reset             - Clear the workspace, signatures and warnings")
	fmt.Fprintln(r.out, "  :undo              - Drop the last buffered line")
	fmt.Fprintln(r.out, "  :dump              - Print the whole workspace")
	fmt.Fprintln(r.out, "  :vars              - List workspace variables")
	fmt.Fprintln(r.out, "  :sigs              - List known function signatures")
	fmt.Fprintln(r.out, "  :kinds             - List node kinds with a translator")
	fmt.Fprintln(r.out, "  :warnings          - List warnings recorded so far")
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "Lua input is buffered until every block it opens is closed.")
}

// completer offers the commands and the names known to the lookup tables
func (r *REPL) completer() readline.AutoCompleter {
	items := []readline.PrefixCompleterInterface{}
	for _, cmd := range []string{":help", ":quit", ":reset", ":undo", ":dump", ":vars", ":sigs", ":kinds", ":warnings"} {
		items = append(items, readline.PcItem(cmd))
	}
	for _, name := range r.session.Tables().Names() {
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(items...)
}

// displayError prints err in its structured form
func (r *REPL) displayError(err error) {
	if te, ok := errors.AsTranslationError(err); ok {
		fmt.Fprintf(r.out, "error: %s\n", te.Error())
		return
	}
	fmt.Fprintf(r.out, "error: %v\n", err)
}
