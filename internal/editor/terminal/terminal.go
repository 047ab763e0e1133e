package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/microcosm-cc/bluemonday"

	"github.com/GriffinCanCode/modxel/internal/editor"
)

// Options configures a Terminal.
type Options struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
	// Interactive selects the TUI widgets; line mode reads plain lines.
	Interactive bool
	Keys        KeyMap
	Styles      *Styles
}

// Terminal renders prompts and choices on a terminal and prints editor
// messages.
type Terminal struct {
	in          io.Reader
	lines       *bufio.Reader
	out         io.Writer
	errOut      io.Writer
	interactive bool
	keys        KeyMap
	styles      Styles
	policy      *bluemonday.Policy

	status *color.Color
	failed *color.Color

	mu sync.Mutex
}

var _ editor.Interactor = (*Terminal)(nil)

// New creates a terminal.
func New(opts Options) *Terminal {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.ErrOut == nil {
		opts.ErrOut = os.Stderr
	}
	if opts.Keys.Accept.Keys() == nil {
		opts.Keys = DefaultKeyMap
	}
	styles := DefaultStyles()
	if opts.Styles != nil {
		styles = *opts.Styles
	}

	return &Terminal{
		in:          opts.In,
		lines:       bufio.NewReader(opts.In),
		out:         opts.Out,
		errOut:      opts.ErrOut,
		interactive: opts.Interactive,
		keys:        opts.Keys,
		styles:      styles,
		policy:      bluemonday.StrictPolicy(),
		status:      color.New(color.FgGreen),
		failed:      color.New(color.FgRed, color.Bold),
	}
}

// NewStdio creates a terminal on the process streams, using the TUI when
// both stdin and stdout are terminals.
func NewStdio() *Terminal {
	return New(Options{Interactive: IsTerminal(os.Stdin) && IsTerminal(os.Stdout)})
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Interactive reports whether the TUI widgets are in use.
func (t *Terminal) Interactive() bool {
	return t.interactive
}

// Prompt asks for a line of text. A dismissed prompt returns
// editor.ErrCancelled.
func (t *Terminal) Prompt(ctx context.Context, p editor.Prompt) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.interactive {
		return t.promptLine(p)
	}

	final, err := t.run(ctx, newPromptModel(p, t.keys, t.styles))
	if err != nil {
		return "", err
	}
	m := final.(promptModel)
	if !m.done {
		return "", editor.ErrCancelled
	}
	return m.Value(), nil
}

// Choose asks for one of c.Options and returns its index, or -1 when
// dismissed.
func (t *Terminal) Choose(ctx context.Context, c editor.Choice) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(c.Options) == 0 {
		return -1, nil
	}
	if !t.interactive {
		return t.chooseLine(c)
	}

	final, err := t.run(ctx, newChooserModel(c, t.keys, t.styles))
	if err != nil {
		return -1, err
	}
	return final.(chooserModel).Index(), nil
}

func (t *Terminal) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	program := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out))

	final, err := program.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil, editor.ErrCancelled
		}
		return nil, fmt.Errorf("terminal: %w", err)
	}
	return final, nil
}

// readLine returns the next input line; EOF cancels
func (t *Terminal) readLine() (string, error) {
	line, err := t.lines.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		if errors.Is(err, io.EOF) {
			return "", editor.ErrCancelled
		}
		return "", fmt.Errorf("terminal: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// keepInitial answers a line prompt with its shown initial value. An empty
// line is an empty answer, which lets prompts with a default be dismissed.
const keepInitial = "."

func (t *Terminal) promptLine(p editor.Prompt) (string, error) {
	offer := p.Initial != "" && !p.Secret
	if offer {
		fmt.Fprintf(t.out, "%s [%s] (%s keeps): ", strings.TrimSuffix(p.Caption, ":"), p.Initial, keepInitial)
	} else {
		fmt.Fprintf(t.out, "%s: ", strings.TrimSuffix(p.Caption, ":"))
	}

	line, err := t.readLine()
	if err != nil {
		return "", err
	}
	if offer && line == keepInitial {
		return p.Initial, nil
	}
	return line, nil
}

func (t *Terminal) chooseLine(c editor.Choice) (int, error) {
	fmt.Fprintln(t.out, c.Caption)
	for i, opt := range c.Options {
		marker := " "
		if i == c.Selected {
			marker = "*"
		}
		fmt.Fprintf(t.out, "%s%3d) %s\n", marker, i+1, opt)
	}

	for {
		fmt.Fprint(t.out, "Number (q to cancel): ")
		line, err := t.readLine()
		if errors.Is(err, editor.ErrCancelled) {
			return -1, nil
		}
		if err != nil {
			return -1, err
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			if c.Selected >= 0 && c.Selected < len(c.Options) {
				return c.Selected, nil
			}
			return 0, nil
		case strings.EqualFold(line, "q"):
			return -1, nil
		}

		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(c.Options) {
			return n - 1, nil
		}
		for i, opt := range c.Options {
			if strings.EqualFold(opt, line) {
				return i, nil
			}
		}
		fmt.Fprintf(t.out, "No option %q\n", line)
	}
}

// Status prints an informational message.
func (t *Terminal) Status(msg string) {
	t.status.Fprintln(t.out, t.Clean(msg))
}

// Error prints an error message.
func (t *Terminal) Error(msg string) {
	t.failed.Fprintln(t.errOut, t.Clean(msg))
}

// Clean strips markup from server-provided text.
func (t *Terminal) Clean(msg string) string {
	return strings.TrimSpace(html.UnescapeString(t.policy.Sanitize(msg)))
}
