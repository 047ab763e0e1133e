package workflow

import (
	"context"
	"net/url"
	"strings"

	"github.com/GriffinCanCode/modxel/internal/domain/element"
)

// Open lists the elements of a class and opens the chosen one in a new
// buffer of the active window
type Open struct {
	delegating
	deps     Deps
	class    element.Class
	hint     string
	elements []element.Element
}

// NewOpen creates the open workflow. A zero class asks for one first; hint
// preselects the element with that name.
func NewOpen(deps Deps, class element.Class, hint string) *Open {
	return &Open{deps: deps, class: class, hint: hint}
}

func (o *Open) Name() string { return "open" }

func (o *Open) Start(ctx context.Context) (*Step, error) {
	if !o.class.Valid() {
		return o.selectClass(ctx, func(class element.Class) Workflow {
			return NewOpen(o.deps, class, o.hint)
		})
	}

	env, err := o.deps.API.Call(ctx, "element/getlistbyclass", url.Values{
		"element_class": {o.class.String()},
		"limit":         {"0"},
	})
	if err != nil {
		return nil, err
	}
	o.elements, err = env.Elements()
	if err != nil {
		return nil, err
	}
	if len(o.elements) == 0 {
		o.deps.Editor.StatusMessage("No elements found")
		return nil, nil
	}

	names := make([]string, len(o.elements))
	selected := 0
	matched := false
	for i, el := range o.elements {
		names[i] = el.DisplayName()
		if !matched && o.hint != "" && strings.EqualFold(names[i], o.hint) {
			selected = i
			matched = true
		}
	}
	return choice("Modx "+o.class.Label(), names, selected), nil
}

func (o *Open) Resume(ctx context.Context, answer Answer) (*Step, error) {
	if o.next != nil {
		return o.next.Resume(ctx, answer)
	}
	if err := pick(answer.Index, len(o.elements)); err != nil {
		return nil, err
	}
	el := o.elements[answer.Index]

	buf, err := o.deps.Editor.ActiveWindow().NewBuffer()
	if err != nil {
		return nil, err
	}
	if o.class.NeedsPHPHeader() {
		buf.Append(element.PHPOpenTag)
	}
	buf.Append(el.Body())

	return nil, o.deps.Registry.Bind(buf, o.class, el)
}
