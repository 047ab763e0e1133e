package workflow

import (
	"context"
	"fmt"
	"net/url"

	"github.com/GriffinCanCode/modxel/internal/connector"
	"github.com/GriffinCanCode/modxel/internal/domain/binding"
	"github.com/GriffinCanCode/modxel/internal/domain/element"
	"github.com/GriffinCanCode/modxel/internal/editor"
	"github.com/GriffinCanCode/modxel/internal/infrastructure/logging"
	"github.com/GriffinCanCode/modxel/internal/infrastructure/monitoring"
)

// Step is the input a workflow waits for. Exactly one field is set.
type Step struct {
	Prompt *editor.Prompt
	Choice *editor.Choice
}

// Answer is the user's reply to a Step
type Answer struct {
	Text  string
	Index int
}

// Workflow is a command driven one answer at a time. A nil step with a nil
// error means the workflow finished.
type Workflow interface {
	Name() string
	Start(ctx context.Context) (*Step, error)
	Resume(ctx context.Context, answer Answer) (*Step, error)
}

// API is the connector surface workflows call
type API interface {
	Call(ctx context.Context, action string, params url.Values) (*connector.Envelope, error)
	Login(ctx context.Context, address string, params url.Values) (*connector.Envelope, error)
}

// SessionStore is the settings surface the login workflow writes
type SessionStore interface {
	String(key string) string
	Set(key string, value any)
	Persist() error
}

// Deps are the collaborators shared by every workflow
type Deps struct {
	API      API
	Store    SessionStore
	Registry *binding.Registry
	Editor   editor.Editor
	Logger   *logging.Logger
	Metrics  *monitoring.Metrics
}

func (d Deps) logger() *logging.Logger {
	if d.Logger == nil {
		return logging.NewNop()
	}
	return d.Logger
}

func prompt(caption, initial string) *Step {
	return &Step{Prompt: &editor.Prompt{Caption: caption, Initial: initial}}
}

func secret(caption string) *Step {
	return &Step{Prompt: &editor.Prompt{Caption: caption, Secret: true}}
}

func choice(caption string, options []string, selected int) *Step {
	return &Step{Choice: &editor.Choice{Caption: caption, Options: options, Selected: selected}}
}

func pick(index, n int) error {
	if index < 0 || index >= n {
		return fmt.Errorf("selection %d out of range", index)
	}
	return nil
}

// fetchCategories lists server categories behind the synthetic "No category"
func fetchCategories(ctx context.Context, api API) ([]element.Category, error) {
	env, err := api.Call(ctx, "element/category/getlist", url.Values{"limit": {"0"}})
	if err != nil {
		return nil, err
	}
	categories, err := env.Categories()
	if err != nil {
		return nil, err
	}
	return element.WithNoCategory(categories), nil
}

// draft is the element a create or update sends, in the class's field names
func draft(class element.Class, id element.ID, name, description string, category element.ID, content *string) (url.Values, element.Element) {
	params := url.Values{}
	el := element.Element{ID: id, Description: description, Category: category}

	if id != "" {
		params.Set("id", id.String())
	}
	params.Set(class.NameField(), name)
	if class == element.Template {
		el.TemplateName = name
	} else {
		el.Name = name
	}
	params.Set("description", description)
	params.Set("category", category.String())

	if content != nil {
		params.Set(class.ContentField(), *content)
		switch class.ContentField() {
		case "content":
			el.Content = *content
		case "plugincode":
			el.PluginCode = *content
		default:
			el.Snippet = *content
		}
	}
	return params, el
}

// delegating forwards to the workflow chosen by a class selection
type delegating struct {
	next Workflow
}

func (d *delegating) selectClass(ctx context.Context, then func(element.Class) Workflow) (*Step, error) {
	d.next = NewClassSelect(then)
	return d.next.Start(ctx)
}
