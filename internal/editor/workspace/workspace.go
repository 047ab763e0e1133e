package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-yaml"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/modxel/internal/editor"
	"github.com/GriffinCanCode/modxel/internal/infrastructure/logging"
	"github.com/GriffinCanCode/modxel/internal/shared/id"
	"github.com/GriffinCanCode/modxel/internal/shared/paths"
)

// MessageSink displays editor-wide messages
type MessageSink interface {
	Status(msg string)
	Error(msg string)
}

// Options configures a workspace
type Options struct {
	// StateDir holds the buffer state file
	StateDir string
	Messages MessageSink
	Logger   *logging.Logger
}

type state struct {
	Windows []windowState `yaml:"windows"`
}

type windowState struct {
	ID      string        `yaml:"id"`
	Buffers []bufferState `yaml:"buffers"`
}

type bufferState struct {
	ID   string `yaml:"id"`
	Path string `yaml:"path,omitempty"`
	// Content is only kept for buffers that have never been saved
	Content  string            `yaml:"content,omitempty"`
	Syntax   string            `yaml:"syntax,omitempty"`
	Status   map[string]string `yaml:"status,omitempty"`
	Settings map[string]any    `yaml:"settings,omitempty"`
}

// Workspace is a file-backed editor. Buffer metadata survives between
// processes in a YAML state file; buffer content lives in the files.
type Workspace struct {
	stateFile string
	messages  MessageSink
	logger    *logging.Logger

	mu      sync.Mutex
	windows []*Window
}

var _ editor.Editor = (*Workspace)(nil)

// Open loads the workspace state from opts.StateDir
func Open(opts Options) (*Workspace, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	w := &Workspace{
		stateFile: paths.StateFile(opts.StateDir),
		messages:  opts.Messages,
		logger:    logger.Named("workspace"),
	}

	data, err := os.ReadFile(w.stateFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read workspace state: %w", err)
	default:
		var st state
		if err := yaml.Unmarshal(data, &st); err != nil {
			return nil, fmt.Errorf("failed to parse workspace state %s: %w", w.stateFile, err)
		}
		for _, ws := range st.Windows {
			win := &Window{id: ws.ID, ws: w}
			for _, bs := range ws.Buffers {
				win.buffers = append(win.buffers, restoreBuffer(w, bs))
			}
			w.windows = append(w.windows, win)
		}
	}

	if len(w.windows) == 0 {
		w.NewWindow()
	}
	return w, nil
}

// Windows returns every window in creation order
func (w *Workspace) Windows() []editor.Window {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]editor.Window, len(w.windows))
	for i, win := range w.windows {
		out[i] = win
	}
	return out
}

// ActiveWindow returns the most recently created window
func (w *Workspace) ActiveWindow() editor.Window {
	return w.active()
}

func (w *Workspace) active() *Window {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.windows[len(w.windows)-1]
}

// NewWindow opens a window and makes it active
func (w *Workspace) NewWindow() *Window {
	win := &Window{id: id.NewWindowID().String(), ws: w}
	w.mu.Lock()
	w.windows = append(w.windows, win)
	w.mu.Unlock()
	return win
}

// StatusMessage forwards msg to the message sink
func (w *Workspace) StatusMessage(msg string) {
	if w.messages != nil {
		w.messages.Status(msg)
	}
}

// ErrorMessage forwards msg to the message sink
func (w *Workspace) ErrorMessage(msg string) {
	if w.messages != nil {
		w.messages.Error(msg)
	}
}

// Find returns the buffer saving to path, if any. When several buffers
// share the path the most recently opened one wins.
func (w *Workspace) Find(path string) (*Buffer, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := len(w.windows) - 1; i >= 0; i-- {
		buffers := w.windows[i].snapshot()
		for j := len(buffers) - 1; j >= 0; j-- {
			if buffers[j].Path() == abs {
				return buffers[j], true
			}
		}
	}
	return nil, false
}

// OpenFile returns the buffer for an existing file, creating one in the
// active window when the file is not open yet
func (w *Workspace) OpenFile(path string) (*Buffer, error) {
	if b, ok := w.Find(path); ok {
		if err := b.Err(); err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		return b, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	content, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	b := newBuffer(w)
	b.path = abs
	b.content = content
	b.loaded = true
	w.active().add(b)
	return b, nil
}

// Flush writes the workspace state file
func (w *Workspace) Flush() error {
	w.mu.Lock()
	st := state{Windows: make([]windowState, 0, len(w.windows))}
	for _, win := range w.windows {
		ws := windowState{ID: win.id}
		for _, b := range win.snapshot() {
			ws.Buffers = append(ws.Buffers, b.snapshot())
		}
		st.Windows = append(st.Windows, ws)
	}
	w.mu.Unlock()

	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode workspace state: %w", err)
	}

	if err := paths.EnsureDir(filepath.Dir(w.stateFile)); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	tmp := w.stateFile + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write workspace state: %w", err)
	}
	if err := os.Rename(tmp, w.stateFile); err != nil {
		return fmt.Errorf("failed to replace workspace state: %w", err)
	}
	w.logger.Debug("workspace state written", zap.String("path", w.stateFile))
	return nil
}

// Window is an ordered set of buffers
type Window struct {
	id string
	ws *Workspace

	mu      sync.Mutex
	buffers []*Buffer
}

var _ editor.Window = (*Window)(nil)

// ID returns the window id
func (win *Window) ID() string {
	return win.id
}

// Buffers returns the window's buffers in opening order
func (win *Window) Buffers() []editor.Buffer {
	bufs := win.snapshot()
	out := make([]editor.Buffer, len(bufs))
	for i, b := range bufs {
		out[i] = b
	}
	return out
}

// NewBuffer opens an empty unsaved buffer
func (win *Window) NewBuffer() (editor.Buffer, error) {
	b := newBuffer(win.ws)
	b.loaded = true
	win.add(b)
	return b, nil
}

func (win *Window) add(b *Buffer) {
	win.mu.Lock()
	defer win.mu.Unlock()
	win.buffers = append(win.buffers, b)
}

func (win *Window) snapshot() []*Buffer {
	win.mu.Lock()
	defer win.mu.Unlock()
	return append([]*Buffer(nil), win.buffers...)
}
