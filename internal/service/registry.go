package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/GriffinCanCode/modxel/internal/domain/element"
	"github.com/GriffinCanCode/modxel/internal/domain/workflow"
	"github.com/GriffinCanCode/modxel/internal/editor"
)

var (
	// ErrUnknownCommand is returned for a name no command is registered under
	ErrUnknownCommand = errors.New("unknown command")
	// ErrNoBuffer is returned when a buffer command runs without one
	ErrNoBuffer = errors.New("command needs a buffer")
)

// Definition describes an editor-facing command
type Definition struct {
	Name    string
	Summary string
	Usage   string
	// NeedsBuffer commands act on Request.Buffer
	NeedsBuffer bool
	// ClassAware commands accept Request.Class and can follow select-class
	ClassAware bool
}

// Request carries the arguments of one command invocation
type Request struct {
	Buffer editor.Buffer
	Class  element.Class
	// Name preselects an element by name when opening
	Name string
	// Offset is the cursor position for reference lookups
	Offset int
	// Target is the command select-class continues with
	Target string
}

// Command builds the workflow for an invocation
type Command interface {
	Definition() Definition
	Build(req Request) (workflow.Workflow, error)
}

// Executor drives a workflow and reports its failure
type Executor interface {
	Execute(ctx context.Context, wf workflow.Workflow) error
	Report(name string, err error)
}

// Registry holds the commands by name
type Registry struct {
	commands sync.Map
	runner   Executor
}

// NewRegistry creates an empty registry executing with runner
func NewRegistry(runner Executor) *Registry {
	return &Registry{runner: runner}
}

// Register adds a command
func (r *Registry) Register(cmd Command) error {
	def := cmd.Definition()
	if def.Name == "" {
		return fmt.Errorf("command name cannot be empty")
	}

	r.commands.Store(def.Name, cmd)
	return nil
}

// Unregister removes a command
func (r *Registry) Unregister(name string) {
	r.commands.Delete(name)
}

// Get retrieves a command by name
func (r *Registry) Get(name string) (Command, bool) {
	val, ok := r.commands.Load(name)
	if !ok {
		return nil, false
	}
	return val.(Command), true
}

// List returns every definition sorted by name
func (r *Registry) List() []Definition {
	var defs []Definition
	r.commands.Range(func(_, value any) bool {
		defs = append(defs, value.(Command).Definition())
		return true
	})
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].Name < defs[j].Name
	})
	return defs
}

// Build validates req against the command and builds its workflow
func (r *Registry) Build(name string, req Request) (workflow.Workflow, error) {
	cmd, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	if cmd.Definition().NeedsBuffer && req.Buffer == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrNoBuffer)
	}
	return cmd.Build(req)
}

// Enabled reports whether the command can run for req, the way an editor
// greys out a menu entry
func (r *Registry) Enabled(name string, req Request) bool {
	_, err := r.Build(name, req)
	return err == nil
}

// Execute builds and runs the named command. Failures other than an
// unknown command or a missing buffer are reported to the editor.
func (r *Registry) Execute(ctx context.Context, name string, req Request) error {
	wf, err := r.Build(name, req)
	if errors.Is(err, ErrUnknownCommand) || errors.Is(err, ErrNoBuffer) {
		return err
	}
	if err != nil {
		r.runner.Report(name, err)
		return err
	}
	return r.runner.Execute(ctx, wf)
}

// Discover ranks the commands matching query, best first
func (r *Registry) Discover(query string, limit int) []Definition {
	type scored struct {
		def   Definition
		score float64
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var results []scored
	r.commands.Range(func(_, value any) bool {
		def := value.(Command).Definition()
		if score := relevance(query, def); score > 0 {
			results = append(results, scored{def: def, score: score})
		}
		return true
	})

	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].def.Name < results[j].def.Name
	})

	output := make([]Definition, 0, limit)
	for i := 0; i < len(results) && i < limit; i++ {
		output = append(output, results[i].def)
	}
	return output
}

func relevance(query string, def Definition) float64 {
	score := 0.0

	name := strings.ToLower(def.Name)
	switch {
	case name == query:
		score += 20.0
	case strings.HasPrefix(name, query), strings.HasPrefix(query, name):
		score += 10.0
	case strings.Contains(name, query):
		score += 6.0
	}

	for _, word := range strings.Fields(strings.ToLower(def.Summary)) {
		word = strings.Trim(word, ",.()")
		if len(word) > 2 && strings.Contains(query, word) {
			score += 3.0
		}
	}
	return score
}
