package editor

import (
	"context"
	"errors"
)

// ErrCancelled is returned by an Interactor when the user dismisses a prompt
var ErrCancelled = errors.New("cancelled")

// Region is a half-open byte range of buffer content
type Region struct {
	Start int
	End   int
}

// Normalize orders the bounds
func (r Region) Normalize() Region {
	if r.Start > r.End {
		return Region{Start: r.End, End: r.Start}
	}
	return r
}

// Empty reports whether the region covers no text
func (r Region) Empty() bool {
	return r.Start == r.End
}

// Settings is a buffer's own key/value metadata
type Settings interface {
	Get(key string) any
	Set(key string, value any)
	Erase(key string)
}

// Buffer is an open document
type Buffer interface {
	ID() string
	Content() string
	Substr(r Region) string
	Selections() []Region
	Replace(r Region, text string) error
	Append(text string)
	Settings() Settings

	// Path is the file the buffer saves to, empty for unsaved buffers
	Path() string
	Retarget(path string)
	// Save writes the content without raising the pre-save hook
	Save() error

	SetSyntax(selector string)
	SetStatus(key, text string)
	EraseStatus(key string)
}

// Loader is implemented by buffers that read their content lazily. Err
// reports why the content could not be read.
type Loader interface {
	Err() error
}

// Window groups buffers
type Window interface {
	Buffers() []Buffer
	NewBuffer() (Buffer, error)
}

// Editor is the host application
type Editor interface {
	Windows() []Window
	ActiveWindow() Window
	StatusMessage(msg string)
	ErrorMessage(msg string)
}

// Prompt asks for one line of text
type Prompt struct {
	Caption string
	Initial string
	Secret  bool
}

// Choice asks for one of several labelled options
type Choice struct {
	Caption  string
	Options  []string
	Selected int
}

// Interactor renders prompts and choices. Implementations return
// ErrCancelled, or a negative index from Choose, when dismissed.
type Interactor interface {
	Prompt(ctx context.Context, p Prompt) (string, error)
	Choose(ctx context.Context, c Choice) (int, error)
}
