package testutil

import (
	"fmt"
	"sync"

	"github.com/GriffinCanCode/modxel/internal/editor"
)

// Editor is an in-memory editor.Editor.
type Editor struct {
	mu       sync.Mutex
	windows  []*Window
	statuses []string
	errors   []string
	nextID   int
}

// NewEditor creates an editor with one empty window.
func NewEditor() *Editor {
	e := &Editor{}
	e.NewWindow()
	return e
}

// NewWindow opens a window and makes it active.
func (e *Editor) NewWindow() *Window {
	e.mu.Lock()
	defer e.mu.Unlock()
	w := &Window{editor: e}
	e.windows = append(e.windows, w)
	return w
}

// Windows returns every window.
func (e *Editor) Windows() []editor.Window {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]editor.Window, len(e.windows))
	for i, w := range e.windows {
		out[i] = w
	}
	return out
}

// ActiveWindow returns the most recent window.
func (e *Editor) ActiveWindow() editor.Window {
	return e.Active()
}

// Active returns the most recent window with its concrete type.
func (e *Editor) Active() *Window {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.windows[len(e.windows)-1]
}

// StatusMessage records msg.
func (e *Editor) StatusMessage(msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.statuses = append(e.statuses, msg)
}

// ErrorMessage records msg.
func (e *Editor) ErrorMessage(msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errors = append(e.errors, msg)
}

// Statuses returns every status message.
func (e *Editor) Statuses() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.statuses...)
}

// Errors returns every error message.
func (e *Editor) Errors() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.errors...)
}

func (e *Editor) newID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	return fmt.Sprintf("buf%d", e.nextID)
}

// Window is an in-memory editor.Window.
type Window struct {
	editor  *Editor
	mu      sync.Mutex
	buffers []*Buffer
}

// Buffers returns the window's buffers.
func (w *Window) Buffers() []editor.Buffer {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]editor.Buffer, len(w.buffers))
	for i, b := range w.buffers {
		out[i] = b
	}
	return out
}

// NewBuffer opens an empty buffer.
func (w *Window) NewBuffer() (editor.Buffer, error) {
	return w.Open(""), nil
}

// Open adds a buffer holding content.
func (w *Window) Open(content string) *Buffer {
	b := &Buffer{
		id:       w.editor.newID(),
		content:  content,
		settings: make(map[string]any),
		status:   make(map[string]string),
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buffers = append(w.buffers, b)
	return b
}

// Last returns the most recently opened buffer.
func (w *Window) Last() *Buffer {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buffers) == 0 {
		return nil
	}
	return w.buffers[len(w.buffers)-1]
}

// Buffer is an in-memory editor.Buffer.
type Buffer struct {
	id string

	mu         sync.Mutex
	content    string
	path       string
	selections []editor.Region
	settings   map[string]any
	syntax     string
	status     map[string]string
	saved      []string
	SaveErr    error
	LoadErr    error
}

func (b *Buffer) ID() string { return b.id }

// Err returns LoadErr.
func (b *Buffer) Err() error { return b.LoadErr }

func (b *Buffer) Content() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content
}

func (b *Buffer) Substr(r editor.Region) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	r = r.Normalize()
	return b.content[r.Start:r.End]
}

func (b *Buffer) Selections() []editor.Region {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]editor.Region(nil), b.selections...)
}

// Select sets the selections.
func (b *Buffer) Select(regions ...editor.Region) *Buffer {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selections = regions
	return b
}

func (b *Buffer) Replace(r editor.Region, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	r = r.Normalize()
	if r.Start < 0 || r.End > len(b.content) {
		return fmt.Errorf("region %d:%d out of range", r.Start, r.End)
	}
	b.content = b.content[:r.Start] + text + b.content[r.End:]
	b.selections = nil
	return nil
}

func (b *Buffer) Append(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content += text
}

// SetContent replaces the whole content, as if typed by the user.
func (b *Buffer) SetContent(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = text
}

func (b *Buffer) Settings() editor.Settings { return memorySettings{b} }

func (b *Buffer) Path() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.path
}

func (b *Buffer) Retarget(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.path = path
}

func (b *Buffer) Save() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.SaveErr != nil {
		return b.SaveErr
	}
	b.saved = append(b.saved, b.content)
	return nil
}

// Saved returns the content written by each Save.
func (b *Buffer) Saved() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.saved...)
}

func (b *Buffer) SetSyntax(selector string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.syntax = selector
}

// Syntax returns the syntax selector.
func (b *Buffer) Syntax() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.syntax
}

func (b *Buffer) SetStatus(key, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status[key] = text
}

func (b *Buffer) EraseStatus(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.status, key)
}

// Status returns the status entry for key.
func (b *Buffer) Status(key string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status[key]
}

type memorySettings struct {
	b *Buffer
}

func (s memorySettings) Get(key string) any {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	return s.b.settings[key]
}

func (s memorySettings) Set(key string, value any) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	s.b.settings[key] = value
}

func (s memorySettings) Erase(key string) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	delete(s.b.settings, key)
}
