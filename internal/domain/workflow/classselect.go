package workflow

import (
	"context"

	"github.com/GriffinCanCode/modxel/internal/domain/element"
)

// ClassSelect asks for an element class, then continues with the workflow
// built for it
type ClassSelect struct {
	then func(element.Class) Workflow
	next Workflow
}

// NewClassSelect creates a class selection continuing with then
func NewClassSelect(then func(element.Class) Workflow) *ClassSelect {
	return &ClassSelect{then: then}
}

func (c *ClassSelect) Name() string {
	if c.next != nil {
		return c.next.Name()
	}
	return "select-class"
}

func (c *ClassSelect) Start(ctx context.Context) (*Step, error) {
	return choice("Modx Element Class", element.Labels(), 0), nil
}

func (c *ClassSelect) Resume(ctx context.Context, answer Answer) (*Step, error) {
	if c.next != nil {
		return c.next.Resume(ctx, answer)
	}

	classes := element.Classes()
	if err := pick(answer.Index, len(classes)); err != nil {
		return nil, err
	}
	c.next = c.then(classes[answer.Index])
	return c.next.Start(ctx)
}
