// Package repl is the interactive greenhouse console. It drives a simulation
// one day at a time and lets the operator take manual control of the
// environment.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/steveyegge/flaxsim/internal/environment"
	"github.com/steveyegge/flaxsim/internal/report"
	"github.com/steveyegge/flaxsim/internal/simulation"
)

// errExit is returned by the exit command to end the loop
var errExit = errors.New("exit")

// REPL represents the interactive console
type REPL struct {
	sim      *simulation.Simulation
	history  *report.History
	out      io.Writer
	rl       *readline.Instance
	ctx      context.Context
	commands map[string]CommandHandler
	manual   environment.Overrides
}

// CommandHandler handles a specific command
type CommandHandler func(args []string) error

// Config holds REPL configuration
type Config struct {
	Sim *simulation.Simulation

	// History must be registered as a sink of Sim; it backs the summary command
	History *report.History

	// Out receives all output (default: os.Stdout)
	Out io.Writer
}

// New creates a new console
func New(cfg *Config) (*REPL, error) {
	if cfg.Sim == nil {
		return nil, fmt.Errorf("simulation is required")
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	r := &REPL{
		sim:      cfg.Sim,
		history:  cfg.History,
		out:      out,
		ctx:      context.Background(),
		commands: make(map[string]CommandHandler),
		manual:   environment.Overrides{},
	}
	r.registerCommands()
	return r, nil
}

// Run starts the console loop
func (r *REPL) Run(ctx context.Context) error {
	r.ctx = ctx

	cyan := color.New(color.FgCyan).SprintFunc()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cyan("flax> "),
		AutoComplete:      r.completer(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		Stdout:            r.out,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()
	r.rl = rl

	r.printWelcome()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			} else if err == io.EOF {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return r.sim.Finish(ctx)
			}
			return err
		}

		if err := r.Execute(line); err != nil {
			if errors.Is(err, errExit) {
				return r.sim.Finish(ctx)
			}
			red := color.New(color.FgRed).SprintFunc()
			fmt.Fprintf(r.out, "%s %v\n", red("Error:"), err)
		}
	}
}

// Execute runs a single line of input
func (r *REPL) Execute(line string) error {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return nil
	}

	command := strings.ToLower(parts[0])
	if handler, ok := r.commands[command]; ok {
		return handler(parts[1:])
	}

	if s := suggest(command, r.commandNames()); s != "" {
		return fmt.Errorf("unknown command %q (did you mean %q?)", command, s)
	}
	return fmt.Errorf("unknown command %q (type 'help' for available commands)", command)
}

// registerCommands registers all built-in commands
func (r *REPL) registerCommands() {
	r.commands["help"] = r.cmdHelp
	r.commands["?"] = r.cmdHelp
	r.commands["step"] = r.cmdStep
	r.commands["run"] = r.cmdRun
	r.commands["set"] = r.cmdSet
	r.commands["clear"] = r.cmdClear
	r.commands["status"] = r.cmdStatus
	r.commands["predict"] = r.cmdPredict
	r.commands["recommend"] = r.cmdRecommend
	r.commands["summary"] = r.cmdSummary
	r.commands["exit"] = r.cmdExit
	r.commands["quit"] = r.cmdExit
}

func (r *REPL) commandNames() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		if name != "?" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (r *REPL) completer() *readline.PrefixCompleter {
	params := make([]readline.PrefixCompleterInterface, 0, len(paramAliases))
	for _, name := range paramNames() {
		params = append(params, readline.PcItem(name))
	}
	items := []readline.PrefixCompleterInterface{
		readline.PcItem("set", params...),
		readline.PcItem("clear", params...),
	}
	for _, name := range r.commandNames() {
		if name != "set" && name != "clear" {
			items = append(items, readline.PcItem(name))
		}
	}
	return readline.NewPrefixCompleter(items...)
}

// printWelcome prints the welcome message
func (r *REPL) printWelcome() {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	info := r.sim.Info()
	fmt.Fprintf(r.out, "\n%s\n", cyan("Flax greenhouse console"))
	fmt.Fprintf(r.out, "Run %s: %d plants, %d days, seed %d\n",
		info.ID, info.Config.NumPlants, info.Config.TotalDays, info.Seed)
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "Type 'help' for available commands, 'exit' to quit")
	fmt.Fprintln(r.out)
}

// cmdHelp shows help information
func (r *REPL) cmdHelp(args []string) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "\n%s\n\n", cyan("Available Commands:"))

	commands := []struct {
		name string
		desc string
	}{
		{"step [n]", "Simulate the next n days (default 1)"},
		{"run", "Simulate every remaining day"},
		{"set <param> <value>", "Take manual control of a parameter"},
		{"clear [param]", "Release one parameter (or all) back to the generator"},
		{"status", "Show the day, phase and every plant"},
		{"predict", "Project each plant to maturity at nominal rates"},
		{"recommend", "Show setpoints for the current phase"},
		{"summary", "Summarize the days simulated so far"},
		{"help, ?", "Show this help message"},
		{"exit, quit", "Finish the run and leave"},
	}
	for _, cmd := range commands {
		fmt.Fprintf(r.out, "  %-22s %s\n", green(cmd.name), cmd.desc)
	}
	fmt.Fprintf(r.out, "\nParameters: %s\n\n", strings.Join(paramNames(), ", "))
	return nil
}

// cmdExit exits the console
func (r *REPL) cmdExit(args []string) error {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "\n%s Goodbye!\n", green("✓"))
	return errExit
}

// suggest returns the candidate closest to input, or "" when nothing is close
func suggest(input string, candidates []string) string {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(input, c)
		if d > suggestLimit(len(c)) {
			continue
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func suggestLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
