package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/modxel/internal/editor"
	"github.com/GriffinCanCode/modxel/internal/shared/id"
)

// ErrNoPath is returned when saving a buffer that has no file
var ErrNoPath = errors.New("buffer has no file path")

// ErrNotLoaded is returned when saving a buffer whose file could not be read
var ErrNotLoaded = errors.New("buffer content was not loaded")

// Buffer is a document backed by a file on disk
type Buffer struct {
	ws *Workspace
	id string

	mu         sync.Mutex
	path       string
	content    string
	loaded     bool
	loadErr    error
	selections []editor.Region
	syntax     string
	status     map[string]string
	settings   map[string]any
}

var _ editor.Buffer = (*Buffer)(nil)

func newBuffer(ws *Workspace) *Buffer {
	return &Buffer{
		ws:       ws,
		id:       id.NewBufferID().String(),
		status:   make(map[string]string),
		settings: make(map[string]any),
	}
}

func restoreBuffer(ws *Workspace, bs bufferState) *Buffer {
	b := newBuffer(ws)
	if bs.ID != "" {
		b.id = bs.ID
	}
	b.path = bs.Path
	b.syntax = bs.Syntax
	if bs.Path == "" {
		b.content = bs.Content
		b.loaded = true
	}
	for k, v := range bs.Status {
		b.status[k] = v
	}
	for k, v := range bs.Settings {
		b.settings[k] = v
	}
	return b
}

func (b *Buffer) snapshot() bufferState {
	b.mu.Lock()
	defer b.mu.Unlock()
	bs := bufferState{
		ID:     b.id,
		Path:   b.path,
		Syntax: b.syntax,
	}
	if b.path == "" {
		bs.Content = b.content
	}
	if len(b.status) > 0 {
		bs.Status = make(map[string]string, len(b.status))
		for k, v := range b.status {
			bs.Status[k] = v
		}
	}
	if len(b.settings) > 0 {
		bs.Settings = make(map[string]any, len(b.settings))
		for k, v := range b.settings {
			bs.Settings[k] = v
		}
	}
	return bs
}

// ID returns the buffer id
func (b *Buffer) ID() string {
	return b.id
}

// load reads the file on first access; callers hold b.mu
func (b *Buffer) load() {
	if b.loaded {
		return
	}
	b.loaded = true
	data, err := os.ReadFile(b.path)
	if err != nil {
		b.ws.logger.Warn("failed to read buffer file",
			zap.String("path", b.path),
			zap.Error(err))
		b.loadErr = fmt.Errorf("failed to read %s: %w", b.path, err)
		return
	}
	content, err := decodeText(data)
	if err != nil {
		b.ws.logger.Warn("failed to decode buffer file",
			zap.String("path", b.path),
			zap.Error(err))
		b.loadErr = fmt.Errorf("failed to decode %s: %w", b.path, err)
		return
	}
	b.content = content
}

// Err returns the error that kept the buffer's file from loading. Such a
// buffer has no content and refuses to save.
func (b *Buffer) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.load()
	return b.loadErr
}

// Content returns the whole buffer text
func (b *Buffer) Content() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.load()
	return b.content
}

// Substr returns the text of r, clamped to the buffer
func (b *Buffer) Substr(r editor.Region) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.load()
	r = clamp(r.Normalize(), len(b.content))
	return b.content[r.Start:r.End]
}

// Selections returns the current selections
func (b *Buffer) Selections() []editor.Region {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]editor.Region(nil), b.selections...)
}

// SetSelections replaces the selections, ordered by start offset
func (b *Buffer) SetSelections(regions []editor.Region) {
	sel := make([]editor.Region, len(regions))
	for i, r := range regions {
		sel[i] = r.Normalize()
	}
	sort.SliceStable(sel, func(i, j int) bool { return sel[i].Start < sel[j].Start })

	b.mu.Lock()
	defer b.mu.Unlock()
	b.selections = sel
}

// Replace substitutes text for r and clears the selections
func (b *Buffer) Replace(r editor.Region, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.load()
	r = r.Normalize()
	if r.Start < 0 || r.End > len(b.content) {
		return fmt.Errorf("region %d:%d out of range", r.Start, r.End)
	}
	b.content = b.content[:r.Start] + text + b.content[r.End:]
	b.selections = nil
	return nil
}

// Append adds text at the end of the buffer
func (b *Buffer) Append(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.load()
	b.content += text
}

// Settings returns the buffer's metadata
func (b *Buffer) Settings() editor.Settings {
	return bufferSettings{b: b}
}

// Path returns the file the buffer saves to
func (b *Buffer) Path() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.path
}

// Retarget points the buffer at another file without touching its content
func (b *Buffer) Retarget(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.load()
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	b.path = path
}

// Save writes the content to the buffer's file
func (b *Buffer) Save() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.path == "" {
		return ErrNoPath
	}
	b.load()
	if b.loadErr != nil {
		return fmt.Errorf("%w: %w", ErrNotLoaded, b.loadErr)
	}
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", b.path, err)
	}
	if err := os.WriteFile(b.path, []byte(b.content), 0o644); err != nil {
		return fmt.Errorf("failed to save %s: %w", b.path, err)
	}
	return nil
}

// SetSyntax records the syntax selector
func (b *Buffer) SetSyntax(selector string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.syntax = selector
}

// Syntax returns the syntax selector
func (b *Buffer) Syntax() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.syntax
}

// SetStatus sets a status-line entry
func (b *Buffer) SetStatus(key, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status[key] = text
}

// EraseStatus removes a status-line entry
func (b *Buffer) EraseStatus(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.status, key)
}

// Status returns the status-line entry for key
func (b *Buffer) Status(key string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status[key]
}

type bufferSettings struct {
	b *Buffer
}

func (s bufferSettings) Get(key string) any {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	return s.b.settings[key]
}

func (s bufferSettings) Set(key string, value any) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	s.b.settings[key] = value
}

func (s bufferSettings) Erase(key string) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	delete(s.b.settings, key)
}

func clamp(r editor.Region, n int) editor.Region {
	if r.Start < 0 {
		r.Start = 0
	}
	if r.End > n {
		r.End = n
	}
	if r.Start > r.End {
		r.Start = r.End
	}
	return r
}
