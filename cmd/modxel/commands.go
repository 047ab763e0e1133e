package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/pflag"

	"github.com/GriffinCanCode/modxel/internal/app"
	"github.com/GriffinCanCode/modxel/internal/domain/element"
	"github.com/GriffinCanCode/modxel/internal/domain/workflow"
	"github.com/GriffinCanCode/modxel/internal/editor"
	"github.com/GriffinCanCode/modxel/internal/editor/terminal"
	"github.com/GriffinCanCode/modxel/internal/infrastructure/config"
	"github.com/GriffinCanCode/modxel/internal/service"
)

const programName = "modxel"

// Exit codes
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

// errUsage marks argument errors
var errUsage = errors.New("usage")

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// env is what a command runs against
type env struct {
	app *app.App
	out io.Writer
}

// invocation holds the parsed flags of a command
type invocation struct {
	req     service.Request
	regions []editor.Region
}

// shownError is a failure the editor already displayed
type shownError struct {
	error
}

func (e shownError) Unwrap() error { return e.error }

type runFunc func(ctx context.Context, e env, args []string, inv invocation) error

// cliCommand is one subcommand
type cliCommand struct {
	name    string
	summary string
	usage   string
	// flags registers the command's flags and returns their parser
	flags func(fs *pflag.FlagSet) func() (invocation, error)
	run   runFunc
}

func commands() []cliCommand {
	return []cliCommand{
		{
			name:    service.CommandLogin,
			summary: "Configure the server address and log in",
			usage:   "login",
			run:     execute(service.CommandLogin, 0),
		},
		{
			name:    service.CommandOpen,
			summary: "Open an element in a scratch file",
			usage:   "open [--class CLASS] [--name NAME]",
			flags:   classFlags(true),
			run:     execute(service.CommandOpen, 0),
		},
		{
			name:    service.CommandOpenRef,
			summary: "Open the chunk or snippet tag at an offset of FILE",
			usage:   "open-ref FILE --offset N",
			flags: func(fs *pflag.FlagSet) func() (invocation, error) {
				offset := fs.Int("offset", -1, "byte offset of the cursor")
				return func() (invocation, error) {
					if *offset < 0 {
						return invocation{}, usageError("--offset is required")
					}
					return invocation{req: service.Request{Offset: *offset}}, nil
				}
			},
			run: execute(service.CommandOpenRef, 1),
		},
		{
			name:    service.CommandCreate,
			summary: "Create an element from FILE or some of its regions",
			usage:   "create FILE [--class CLASS] [--region START:END]...",
			flags:   createFlags,
			run:     execute(service.CommandCreate, 1),
		},
		{
			name:    service.CommandUpdate,
			summary: "Edit the name, description and category of FILE's element",
			usage:   "update FILE",
			run:     execute(service.CommandUpdate, 1),
		},
		{
			name:    service.CommandRemove,
			summary: "Delete FILE's element from the server",
			usage:   "remove FILE",
			run:     execute(service.CommandRemove, 1),
		},
		{
			name:    service.CommandSelectClass,
			summary: "Choose a class, then run open or create",
			usage:   "select-class COMMAND [FILE]",
			run:     runSelectClass,
		},
		{
			name:    "save",
			summary: "Upload each file's element if armed, then write the file",
			usage:   "save FILE|PATTERN...",
			run:     runSave,
		},
		{
			name:    "status",
			summary: "List the files bound to elements",
			usage:   "status",
			run:     runStatus,
		},
		{
			name:    "commands",
			summary: "List the element commands",
			usage:   "commands",
			run:     runCommands,
		},
	}
}

func classFlags(withName bool) func(fs *pflag.FlagSet) func() (invocation, error) {
	return func(fs *pflag.FlagSet) func() (invocation, error) {
		class := fs.StringP("class", "c", "", "element class: template, chunk, snippet or plugin")
		var name *string
		if withName {
			name = fs.StringP("name", "n", "", "preselect the element with this name")
		}
		return func() (invocation, error) {
			var inv invocation
			if *class != "" {
				c, err := element.Parse(*class)
				if err != nil {
					return inv, usageError("%v", err)
				}
				inv.req.Class = c
			}
			if name != nil {
				inv.req.Name = *name
			}
			return inv, nil
		}
	}
}

func createFlags(fs *pflag.FlagSet) func() (invocation, error) {
	parseClass := classFlags(false)(fs)
	regions := fs.StringArrayP("region", "r", nil, "selected region START:END, repeatable")
	return func() (invocation, error) {
		inv, err := parseClass()
		if err != nil {
			return inv, err
		}
		for _, r := range *regions {
			region, err := parseRegion(r)
			if err != nil {
				return inv, err
			}
			inv.regions = append(inv.regions, region)
		}
		return inv, nil
	}
}

func parseRegion(s string) (editor.Region, error) {
	start, end, ok := strings.Cut(s, ":")
	if !ok {
		return editor.Region{}, usageError("region %q is not START:END", s)
	}
	a, err := strconv.Atoi(strings.TrimSpace(start))
	if err != nil || a < 0 {
		return editor.Region{}, usageError("region %q has a bad start", s)
	}
	b, err := strconv.Atoi(strings.TrimSpace(end))
	if err != nil || b < 0 {
		return editor.Region{}, usageError("region %q has a bad end", s)
	}
	return editor.Region{Start: a, End: b}.Normalize(), nil
}

// execute runs a service command, opening FILE as the buffer when files
// is 1
func execute(name string, files int) runFunc {
	return func(ctx context.Context, e env, args []string, inv invocation) error {
		if len(args) != files {
			return usageError("%s takes %d file argument(s), got %d", name, files, len(args))
		}
		req := inv.req
		if files == 1 {
			buf, err := e.app.Workspace().OpenFile(args[0])
			if err != nil {
				return err
			}
			if len(inv.regions) > 0 {
				buf.SetSelections(inv.regions)
			}
			req.Buffer = buf
		}
		return shown(e.app.Service().Execute(ctx, name, req))
	}
}

func runSelectClass(ctx context.Context, e env, args []string, inv invocation) error {
	if len(args) < 1 || len(args) > 2 {
		return usageError("select-class takes COMMAND [FILE]")
	}
	req := inv.req
	req.Target = args[0]
	if len(args) == 2 {
		buf, err := e.app.Workspace().OpenFile(args[1])
		if err != nil {
			return err
		}
		req.Buffer = buf
	}
	return shown(e.app.Service().Execute(ctx, service.CommandSelectClass, req))
}

func runSave(ctx context.Context, e env, args []string, _ invocation) error {
	if len(args) == 0 {
		return usageError("save takes FILE...")
	}
	files, err := expand(args)
	if err != nil {
		return err
	}

	var errs []error
	for _, file := range files {
		buf, err := e.app.Workspace().OpenFile(file)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		err = e.app.Service().Save(ctx, buf)
		if errors.Is(err, service.ErrWriteFailed) {
			errs = append(errs, err)
		} else if err != nil {
			errs = append(errs, shownError{err})
		}
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}

// expand resolves glob patterns such as scratch/** to files. Arguments
// without a match are kept so that opening them reports the failure.
func expand(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, usageError("bad pattern %q: %v", arg, err)
		}
		if len(matches) == 0 {
			files = append(files, arg)
			continue
		}
		files = append(files, matches...)
	}
	return files, nil
}

// shown marks service failures other than argument errors as displayed
func shown(err error) error {
	if err == nil || errors.Is(err, service.ErrUnknownCommand) || errors.Is(err, service.ErrNoBuffer) {
		return err
	}
	return shownError{err}
}

func runStatus(_ context.Context, e env, args []string, _ invocation) error {
	if len(args) != 0 {
		return usageError("status takes no arguments")
	}
	entries := e.app.Service().Status()
	if len(entries) == 0 {
		fmt.Fprintln(e.out, "No bound files")
		return nil
	}

	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CLASS\tID\tNAME\tARMED\tFILE")
	for _, entry := range entries {
		b := entry.Binding
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", b.Class, b.ID, b.Name, b.PendingSync, entry.Buffer.Path())
	}
	return tw.Flush()
}

func runCommands(_ context.Context, e env, args []string, _ invocation) error {
	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	for _, def := range e.app.Service().Commands().List() {
		fmt.Fprintf(tw, "%s\t%s\n", def.Usage, def.Summary)
	}
	return tw.Flush()
}

func findCommand(name string) (cliCommand, bool) {
	for _, c := range commands() {
		if c.name == name {
			return c, true
		}
	}
	return cliCommand{}, false
}

// suggest returns the closest element command to an unknown name
func suggest(name string) string {
	r := service.NewRegistry(nil)
	if err := service.RegisterBuiltins(r, workflow.Deps{}); err != nil {
		return ""
	}
	if found := r.Discover(name, 1); len(found) > 0 {
		return found[0].Name
	}
	return ""
}

func printUsage(w io.Writer, global *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage: %s [flags] COMMAND [ARGS]\n\nCommands:\n", programName)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range commands() {
		fmt.Fprintf(tw, "  %s\t%s\n", c.usage, c.summary)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\nFlags:\n%s", global.FlagUsages())
}

func run(ctx context.Context, args []string, std stdio) int {
	global := pflag.NewFlagSet(programName, pflag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(std.err)
	configPath := global.String("config", "", "TOML configuration file")
	logLevel := global.String("log-level", "", "log level: debug, info, warn or error")
	dev := global.Bool("dev", false, "development logging")
	noTUI := global.Bool("no-tui", false, "read answers as plain lines")
	help := global.BoolP("help", "h", false, "show help")

	if err := global.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	rest := global.Args()
	if *help || len(rest) == 0 || rest[0] == "help" {
		printUsage(std.out, global)
		if len(rest) == 0 && !*help {
			return exitUsage
		}
		return exitOK
	}

	cmd, ok := findCommand(rest[0])
	if !ok {
		if s := suggest(rest[0]); s != "" {
			fmt.Fprintf(std.err, "%s: unknown command %q (did you mean %q?)\n", programName, rest[0], s)
		} else {
			fmt.Fprintf(std.err, "%s: unknown command %q\n", programName, rest[0])
		}
		return exitUsage
	}

	fs := pflag.NewFlagSet(programName+" "+cmd.name, pflag.ContinueOnError)
	fs.SetOutput(std.err)
	fs.Usage = func() {
		fmt.Fprintf(std.err, "Usage: %s %s\n%s", programName, cmd.usage, fs.FlagUsages())
	}
	var parse func() (invocation, error)
	if cmd.flags != nil {
		parse = cmd.flags(fs)
	}
	if err := fs.Parse(rest[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	var inv invocation
	if parse != nil {
		var err error
		if inv, err = parse(); err != nil {
			fmt.Fprintf(std.err, "%s: %v\n", programName, err)
			return exitUsage
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(std.err, "%s: %v\n", programName, err)
		return exitFailed
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *dev {
		cfg.Logging.Development = true
	}

	term := terminal.New(terminal.Options{
		In:          std.in,
		Out:         std.out,
		ErrOut:      std.err,
		Interactive: std.tty && !*noTUI,
	})

	a, err := app.New(cfg, term)
	if err != nil {
		fmt.Fprintf(std.err, "%s: %v\n", programName, err)
		return exitFailed
	}

	err = cmd.run(ctx, env{app: a, out: std.out}, fs.Args(), inv)
	if cerr := a.Close(); cerr != nil && err == nil {
		err = cerr
	}

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		fmt.Fprintf(std.err, "%s: %v\nUsage: %s %s\n", programName, err, programName, cmd.usage)
		return exitUsage
	default:
		printUnshown(std.err, err)
		return exitFailed
	}
}

// printUnshown prints the failures the editor has not displayed yet
func printUnshown(w io.Writer, err error) {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			printUnshown(w, e)
		}
		return
	}
	if errors.As(err, new(shownError)) {
		return
	}
	fmt.Fprintf(w, "%s: %v\n", programName, err)
}
