package element

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// ID is an opaque server identifier. Numeric and string JSON forms decode
// to the same textual value.
type ID string

// UnmarshalJSON accepts numbers, strings and null
func (id *ID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "" || raw == "null":
		*id = ""
	case raw[0] == '"':
		var s string
		if err := sonic.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid id %s: %w", raw, err)
		}
		*id = ID(s)
	default:
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return fmt.Errorf("invalid id %s", raw)
		}
		*id = ID(raw)
	}
	return nil
}

// String returns the textual id
func (id ID) String() string {
	return string(id)
}

// Element is a cached copy of a remote element
type Element struct {
	ID           ID     `json:"id"`
	Name         string `json:"name,omitempty"`
	TemplateName string `json:"templatename,omitempty"`
	Description  string `json:"description,omitempty"`
	Category     ID     `json:"category,omitempty"`
	Content      string `json:"content,omitempty"`
	Snippet      string `json:"snippet,omitempty"`
	PluginCode   string `json:"plugincode,omitempty"`
}

// DisplayName returns the element name; templates report it as templatename
func (e Element) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.TemplateName
}

// Body returns the element source, whichever content field carried it
func (e Element) Body() string {
	switch {
	case e.Content != "":
		return e.Content
	case e.Snippet != "":
		return e.Snippet
	default:
		return e.PluginCode
	}
}

// Merge overlays the non-empty fields of other onto e
func (e Element) Merge(other Element) Element {
	if other.ID != "" {
		e.ID = other.ID
	}
	if other.Name != "" {
		e.Name = other.Name
	}
	if other.TemplateName != "" {
		e.TemplateName = other.TemplateName
	}
	if other.Description != "" {
		e.Description = other.Description
	}
	if other.Category != "" {
		e.Category = other.Category
	}
	if other.Content != "" {
		e.Content = other.Content
	}
	if other.Snippet != "" {
		e.Snippet = other.Snippet
	}
	if other.PluginCode != "" {
		e.PluginCode = other.PluginCode
	}
	return e
}

// Category groups elements on the server
type Category struct {
	ID       ID     `json:"id"`
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`
}

// Label returns the category name
func (c Category) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Category
}

// NoCategory is the synthetic entry that leaves an element uncategorised
var NoCategory = Category{ID: "", Name: "No category"}

// WithNoCategory prefixes categories with NoCategory
func WithNoCategory(categories []Category) []Category {
	return append([]Category{NoCategory}, categories...)
}

// CategoryLabels returns the chooser labels for categories
func CategoryLabels(categories []Category) []string {
	labels := make([]string, len(categories))
	for i, c := range categories {
		labels[i] = c.Label()
	}
	return labels
}
