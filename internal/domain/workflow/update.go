package workflow

import (
	"context"
	"fmt"
	"net/url"

	"github.com/GriffinCanCode/modxel/internal/domain/binding"
	"github.com/GriffinCanCode/modxel/internal/domain/element"
	"github.com/GriffinCanCode/modxel/internal/editor"
)

// Update edits the name, description and category of the bound element
// and uploads the buffer content
type Update struct {
	deps  Deps
	buf   editor.Buffer
	bound binding.Binding

	state       editState
	categories  []element.Category
	name        string
	description string
}

// NewUpdate creates the update workflow. buf must be bound.
func NewUpdate(deps Deps, buf editor.Buffer) (*Update, error) {
	bound := deps.Registry.Lookup(buf)
	if !bound.Actionable() {
		return nil, ErrNotBound
	}
	return &Update{deps: deps, buf: buf, bound: bound}, nil
}

func (u *Update) Name() string { return "update" }

func (u *Update) Start(ctx context.Context) (*Step, error) {
	categories, err := fetchCategories(ctx, u.deps.API)
	if err != nil {
		return nil, err
	}
	u.categories = categories
	u.state = editName
	return prompt("Modx Element Name:", u.bound.Name), nil
}

func (u *Update) Resume(ctx context.Context, answer Answer) (*Step, error) {
	switch u.state {
	case editName:
		if answer.Text == "" {
			return nil, nil
		}
		u.name = answer.Text
		u.state = editDescription
		return prompt("Modx Element Description (optional):", u.bound.Description), nil

	case editDescription:
		u.description = answer.Text
		u.state = editCategory
		return choice("Modx Element Category", element.CategoryLabels(u.categories), 0), nil

	case editCategory:
		if err := pick(answer.Index, len(u.categories)); err != nil {
			return nil, err
		}
		return nil, u.submit(ctx, u.categories[answer.Index])
	}
	return nil, fmt.Errorf("update: invalid state %d", u.state)
}

func (u *Update) submit(ctx context.Context, category element.Category) error {
	content := u.buf.Content()
	params, local := draft(u.bound.Class, u.bound.ID, u.name, u.description, category.ID, &content)

	env, err := u.deps.API.Call(ctx, u.bound.Class.Action("update"), params)
	if err != nil {
		return err
	}
	updated, err := env.Element()
	if err != nil {
		return err
	}

	if err := u.deps.Registry.Bind(u.buf, u.bound.Class, local.Merge(updated)); err != nil {
		return err
	}
	u.deps.Editor.StatusMessage("Modx Element updated")
	return nil
}

// Remove deletes the bound element and unbinds every buffer showing it
type Remove struct {
	deps  Deps
	bound binding.Binding
}

// NewRemove creates the remove workflow. buf must be bound.
func NewRemove(deps Deps, buf editor.Buffer) (*Remove, error) {
	bound := deps.Registry.Lookup(buf)
	if !bound.Actionable() {
		return nil, ErrNotBound
	}
	return &Remove{deps: deps, bound: bound}, nil
}

func (r *Remove) Name() string { return "remove" }

func (r *Remove) Start(ctx context.Context) (*Step, error) {
	env, err := r.deps.API.Call(ctx, r.bound.Class.Action("remove"), url.Values{
		"id": {r.bound.ID.String()},
	})
	if err != nil {
		return nil, err
	}

	removed, err := env.Element()
	if err != nil {
		return nil, err
	}
	id := removed.ID
	if id == "" {
		id = r.bound.ID
	}

	r.deps.Registry.UnbindAll(r.bound.Class, id)
	r.deps.Editor.StatusMessage("Modx element deleted")
	return nil, nil
}

func (r *Remove) Resume(ctx context.Context, answer Answer) (*Step, error) {
	return nil, fmt.Errorf("remove: unexpected answer")
}
