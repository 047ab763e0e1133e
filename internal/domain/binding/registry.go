package binding

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/modxel/internal/domain/element"
	"github.com/GriffinCanCode/modxel/internal/editor"
	"github.com/GriffinCanCode/modxel/internal/infrastructure/logging"
	"github.com/GriffinCanCode/modxel/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/modxel/internal/shared/paths"
)

// Buffer settings keys
const (
	KeyClass       = "modx_element_class"
	KeyID          = "modx_element_id"
	KeyName        = "modx_element_name"
	KeyDescription = "modx_element_description"
	KeyPendingSync = "modx_do_update"
)

// StatusKey is the status-line slot owned by bindings
const StatusKey = "Modx"

// Binding ties a buffer to a remote element
type Binding struct {
	Class       element.Class
	ID          element.ID
	Name        string
	Description string
	PendingSync bool
}

// Actionable reports whether the binding identifies an element
func (b Binding) Actionable() bool {
	return b.Class.Valid() && b.ID != "" && b.Name != ""
}

// StatusText is the status line shown for a bound buffer
func StatusText(class element.Class, name string) string {
	return fmt.Sprintf("Modx Element (%s): %s", class, name)
}

// SyntaxSource resolves the syntax selector for a class
type SyntaxSource interface {
	Syntax(class element.Class) string
}

// Entry is a bound buffer
type Entry struct {
	Buffer  editor.Buffer
	Binding Binding
}

// Registry reads and writes bindings stored in buffer settings
type Registry struct {
	editor     editor.Editor
	syntax     SyntaxSource
	scratchDir string
	logger     *logging.Logger
	metrics    *monitoring.Metrics
}

// NewRegistry creates a registry over the buffers of ed. Bound buffers are
// retargeted into scratchDir.
func NewRegistry(ed editor.Editor, syntax SyntaxSource, scratchDir string, logger *logging.Logger, metrics *monitoring.Metrics) *Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Registry{
		editor:     ed,
		syntax:     syntax,
		scratchDir: scratchDir,
		logger:     logger.Named("binding"),
		metrics:    metrics,
	}
}

// ScratchPath is the file a buffer bound to the named element saves to.
// Each class has its own directory since names are only unique per class.
func ScratchPath(dir string, class element.Class, name string) string {
	return paths.Scratch(dir, strings.ToLower(class.Label()), name)
}

// Bind attaches el to buf and writes the buffer to its scratch file
func (r *Registry) Bind(buf editor.Buffer, class element.Class, el element.Element) error {
	name := el.DisplayName()

	buf.Retarget(ScratchPath(r.scratchDir, class, name))
	buf.Settings().Set(KeyPendingSync, false)
	if err := buf.Save(); err != nil {
		return fmt.Errorf("failed to save bound buffer: %w", err)
	}

	if r.syntax != nil {
		if selector := r.syntax.Syntax(class); selector != "" {
			buf.SetSyntax(selector)
		}
	}

	settings := buf.Settings()
	settings.Set(KeyClass, class.String())
	settings.Set(KeyID, el.ID.String())
	settings.Set(KeyName, name)
	settings.Set(KeyDescription, el.Description)
	buf.SetStatus(StatusKey, StatusText(class, name))

	r.logger.Debug("buffer bound",
		zap.String("buffer", buf.ID()),
		zap.String("class", class.String()),
		zap.String("id", el.ID.String()))
	return nil
}

// Unbind erases every binding attribute and the status line
func (r *Registry) Unbind(buf editor.Buffer) {
	settings := buf.Settings()
	for _, key := range []string{KeyClass, KeyID, KeyName, KeyDescription, KeyPendingSync} {
		settings.Erase(key)
	}
	buf.EraseStatus(StatusKey)
}

// Lookup decodes the binding of buf; unbound buffers yield the zero Binding
func (r *Registry) Lookup(buf editor.Buffer) Binding {
	settings := buf.Settings()
	b := Binding{
		ID:          element.ID(text(settings.Get(KeyID))),
		Name:        text(settings.Get(KeyName)),
		Description: text(settings.Get(KeyDescription)),
		PendingSync: truthy(settings.Get(KeyPendingSync)),
	}
	if class, err := element.Parse(text(settings.Get(KeyClass))); err == nil {
		b.Class = class
	}
	return b
}

// IsActionable reports whether buf is bound to an element
func (r *Registry) IsActionable(buf editor.Buffer) bool {
	return r.Lookup(buf).Actionable()
}

// MarkPendingSync arms the next save to update the remote element
func (r *Registry) MarkPendingSync(buf editor.Buffer) {
	buf.Settings().Set(KeyPendingSync, true)
}

// FindBound returns every buffer of every window bound to class and id
func (r *Registry) FindBound(class element.Class, id element.ID) []editor.Buffer {
	var found []editor.Buffer
	for _, win := range r.editor.Windows() {
		for _, buf := range win.Buffers() {
			b := r.Lookup(buf)
			if b.Class == class && b.ID == id && id != "" {
				found = append(found, buf)
			}
		}
	}
	return found
}

// UnbindAll unbinds every buffer bound to class and id
func (r *Registry) UnbindAll(class element.Class, id element.ID) int {
	bufs := r.FindBound(class, id)
	for _, buf := range bufs {
		r.Unbind(buf)
	}
	r.metrics.AddBuffersUnbound(len(bufs))
	return len(bufs)
}

// Entries lists every actionable buffer
func (r *Registry) Entries() []Entry {
	var out []Entry
	for _, win := range r.editor.Windows() {
		for _, buf := range win.Buffers() {
			if b := r.Lookup(buf); b.Actionable() {
				out = append(out, Entry{Buffer: buf, Binding: b})
			}
		}
	}
	return out
}

// text renders a settings value that may have been decoded as a number
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		ok, _ := strconv.ParseBool(t)
		return ok
	default:
		return false
	}
}
