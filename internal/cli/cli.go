package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/viant/attendly/attendance"
	"github.com/viant/attendly/engine"
)

// ErrUsage reports a malformed command line.
var ErrUsage = errors.New("usage")

// Run opens the store described by cfg, executes cfg.Args and closes the store.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	mode, err := engine.ParseMode(cfg.Engine)
	if err != nil {
		return err
	}
	store := attendance.Open([]engine.Option{
		engine.WithPath(cfg.DBPath()),
		engine.WithMode(mode),
		engine.WithLogger(log.Default()),
	})
	defer store.Close()

	a := &app{cfg: cfg, store: store, out: out, now: time.Now}
	return a.dispatch(ctx, cfg.Args)
}

type app struct {
	cfg   Config
	store *attendance.Store
	out   io.Writer
	now   func() time.Time
}

type command struct {
	usage string
	run   func(a *app, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"init":           {"init", (*app).initStore},
	"students":       {"students [-group N]", (*app).students},
	"groups":         {"groups", (*app).groups},
	"add-student":    {"add-student <name> [-group N] [-fee X]", (*app).addStudent},
	"update-student": {"update-student <id> [-name S] [-group N] [-no-group] [-fee X]", (*app).updateStudent},
	"delete-student": {"delete-student <id>", (*app).deleteStudent},
	"add-group":      {"add-group <name>", (*app).addGroup},
	"rename-group":   {"rename-group <id> <name>", (*app).renameGroup},
	"delete-group":   {"delete-group <id>", (*app).deleteGroup},
	"mark":           {"mark <date> <student-id> <status>", (*app).mark},
	"attendance":     {"attendance [date]", (*app).attendanceForDate},
	"history":        {"history <student-id>", (*app).history},
	"finalize":       {"finalize [date]", (*app).finalize},
	"pay":            {"pay <student-id> <amount> [date] [note]", (*app).pay},
	"payments":       {"payments [-student N [-last]] [date]", (*app).payments},
	"stats":          {"stats <group-id> [-days N]", (*app).stats},
	"export":         {"export", (*app).export},
	"import":         {"import <location>", (*app).importBackup},
	"query":          {"query <sql> [args...]", (*app).query},
}

// Usage lists every command.
func Usage() string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString("attendly [flags] <command> [args]\n\ncommands:\n")
	for _, name := range names {
		b.WriteString("  " + commands[name].usage + "\n")
	}
	return b.String()
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command\n%s", ErrUsage, Usage())
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q\n%s", ErrUsage, args[0], Usage())
	}
	if err := cmd.run(a, ctx, args[1:]); err != nil {
		if errors.Is(err, ErrUsage) {
			return fmt.Errorf("%w: %s", err, cmd.usage)
		}
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return nil
}

func (a *app) today() string { return attendance.FormatDay(a.now()) }

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseArgs parses flags that may appear before, between or after
// positional arguments and returns the positionals.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	fs.SetOutput(io.Discard)
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUsage, err)
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", ErrUsage, value)
	}
	return id, nil
}

func expectArgs(args []string, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		return fmt.Errorf("%w: expected %d to %d arguments, got %d", ErrUsage, lo, hi, len(args))
	}
	return nil
}
