package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/modxel/internal/domain/element"
	"github.com/GriffinCanCode/modxel/internal/editor"
)

type editState int

const (
	editName editState = iota
	editDescription
	editCategory
)

// Create sends the buffer, or its selected regions, to the server as a
// new element
type Create struct {
	delegating
	deps  Deps
	buf   editor.Buffer
	class element.Class

	state       editState
	regions     []editor.Region
	content     string
	categories  []element.Category
	name        string
	description string
}

// NewCreate creates the create workflow for buf. A zero class asks for one
// first.
func NewCreate(deps Deps, buf editor.Buffer, class element.Class) *Create {
	return &Create{deps: deps, buf: buf, class: class}
}

func (c *Create) Name() string { return "create" }

func (c *Create) Start(ctx context.Context) (*Step, error) {
	if !c.class.Valid() {
		return c.selectClass(ctx, func(class element.Class) Workflow {
			return NewCreate(c.deps, c.buf, class)
		})
	}

	c.regions = nil
	for _, r := range c.buf.Selections() {
		if !r.Empty() {
			c.regions = append(c.regions, r)
		}
	}
	if len(c.regions) == 0 {
		c.content = c.buf.Content()
	} else {
		parts := make([]string, len(c.regions))
		for i, r := range c.regions {
			parts[i] = c.buf.Substr(r)
		}
		c.content = strings.Join(parts, "")
	}

	categories, err := fetchCategories(ctx, c.deps.API)
	if err != nil {
		return nil, err
	}
	c.categories = categories

	c.state = editName
	return prompt("Modx Element Name:", c.deps.Registry.Lookup(c.buf).Name), nil
}

func (c *Create) Resume(ctx context.Context, answer Answer) (*Step, error) {
	if c.next != nil {
		return c.next.Resume(ctx, answer)
	}

	switch c.state {
	case editName:
		if answer.Text == "" {
			return nil, nil
		}
		c.name = answer.Text
		c.state = editDescription
		return prompt("Modx Element Description (optional):", ""), nil

	case editDescription:
		c.description = answer.Text
		c.state = editCategory
		return choice("Modx Element Category", element.CategoryLabels(c.categories), 0), nil

	case editCategory:
		if err := pick(answer.Index, len(c.categories)); err != nil {
			return nil, err
		}
		return nil, c.submit(ctx, c.categories[answer.Index])
	}
	return nil, fmt.Errorf("create: invalid state %d", c.state)
}

func (c *Create) submit(ctx context.Context, category element.Category) error {
	params, local := draft(c.class, "", c.name, c.description, category.ID, &c.content)

	env, err := c.deps.API.Call(ctx, c.class.Action("create"), params)
	if err != nil {
		return err
	}
	created, err := env.Element()
	if err != nil {
		return err
	}
	merged := local.Merge(created)

	switch {
	case c.class == element.Chunk && len(c.regions) == 1:
		tag := fmt.Sprintf("[[$%s]]", merged.DisplayName())
		if err := c.buf.Replace(c.regions[0], tag); err != nil {
			return err
		}
		if c.buf.Path() != "" {
			if err := c.buf.Save(); err != nil {
				return fmt.Errorf("failed to save %s: %w", c.buf.Path(), err)
			}
		}
	case len(c.regions) == 0:
		if err := c.deps.Registry.Bind(c.buf, c.class, merged); err != nil {
			return err
		}
	}

	c.deps.Editor.StatusMessage("Modx Element created")
	return nil
}
