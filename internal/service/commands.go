package service

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/modxel/internal/domain/element"
	"github.com/GriffinCanCode/modxel/internal/domain/workflow"
)

// Command names
const (
	CommandLogin       = "login"
	CommandOpen        = "open"
	CommandOpenRef     = "open-ref"
	CommandCreate      = "create"
	CommandUpdate      = "update"
	CommandRemove      = "remove"
	CommandSelectClass = "select-class"
)

type command struct {
	def   Definition
	build func(req Request) (workflow.Workflow, error)
}

func (c command) Definition() Definition { return c.def }

func (c command) Build(req Request) (workflow.Workflow, error) { return c.build(req) }

// RegisterBuiltins registers the element commands backed by deps
func RegisterBuiltins(r *Registry, deps workflow.Deps) error {
	commands := []command{
		{
			def: Definition{
				Name:    CommandLogin,
				Summary: "Configure the server address and log in",
				Usage:   "login",
			},
			build: func(Request) (workflow.Workflow, error) {
				return workflow.NewLogin(deps), nil
			},
		},
		{
			def: Definition{
				Name:       CommandOpen,
				Summary:    "Open an element of a class in a new buffer",
				Usage:      "open [--class CLASS] [--name NAME]",
				ClassAware: true,
			},
			build: func(req Request) (workflow.Workflow, error) {
				return workflow.NewOpen(deps, req.Class, req.Name), nil
			},
		},
		{
			def: Definition{
				Name:        CommandOpenRef,
				Summary:     "Open the chunk or snippet referenced under the cursor",
				Usage:       "open-ref FILE --offset N",
				NeedsBuffer: true,
			},
			build: func(req Request) (workflow.Workflow, error) {
				return workflow.NewOpenReference(deps, req.Buffer, req.Offset)
			},
		},
		{
			def: Definition{
				Name:        CommandCreate,
				Summary:     "Create an element from the buffer or its selections",
				Usage:       "create FILE [--class CLASS] [--region START:END]...",
				NeedsBuffer: true,
				ClassAware:  true,
			},
			build: func(req Request) (workflow.Workflow, error) {
				return workflow.NewCreate(deps, req.Buffer, req.Class), nil
			},
		},
		{
			def: Definition{
				Name:        CommandUpdate,
				Summary:     "Update the bound element's name, description and category",
				Usage:       "update FILE",
				NeedsBuffer: true,
			},
			build: func(req Request) (workflow.Workflow, error) {
				return workflow.NewUpdate(deps, req.Buffer)
			},
		},
		{
			def: Definition{
				Name:        CommandRemove,
				Summary:     "Delete the bound element from the server",
				Usage:       "remove FILE",
				NeedsBuffer: true,
			},
			build: func(req Request) (workflow.Workflow, error) {
				return workflow.NewRemove(deps, req.Buffer)
			},
		},
		{
			def: Definition{
				Name:    CommandSelectClass,
				Summary: "Choose an element class, then run a class command",
				Usage:   "select-class COMMAND [FILE]",
			},
			build: func(req Request) (workflow.Workflow, error) {
				return selectClass(r, req)
			},
		},
	}

	for _, cmd := range commands {
		if err := r.Register(cmd); err != nil {
			return err
		}
	}
	return nil
}

func selectClass(r *Registry, req Request) (workflow.Workflow, error) {
	target, ok := r.Get(req.Target)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, req.Target)
	}
	def := target.Definition()
	if !def.ClassAware {
		return nil, fmt.Errorf("%s does not take an element class", def.Name)
	}
	if def.NeedsBuffer && req.Buffer == nil {
		return nil, fmt.Errorf("%s: %w", def.Name, ErrNoBuffer)
	}

	return workflow.NewClassSelect(func(class element.Class) workflow.Workflow {
		next := req
		next.Class = class
		wf, err := target.Build(next)
		if err != nil {
			return failed{name: def.Name, err: err}
		}
		return wf
	}), nil
}

// failed is a workflow that fails as soon as it starts
type failed struct {
	name string
	err  error
}

func (f failed) Name() string { return f.name }

func (f failed) Start(context.Context) (*workflow.Step, error) { return nil, f.err }

func (f failed) Resume(context.Context, workflow.Answer) (*workflow.Step, error) { return nil, f.err }
