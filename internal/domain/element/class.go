package element

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownClass is returned when a class name does not match any element class
var ErrUnknownClass = errors.New("unknown element class")

// Class identifies the kind of a remote element
type Class int

const (
	Template Class = iota + 1
	Chunk
	Snippet
	Plugin
)

// Spec describes how a class is addressed on the wire
type Spec struct {
	// Server is the server-side class name, also stored in buffer settings
	Server string
	// Label is the human readable name shown in choosers
	Label string
	// Segment is the action prefix for the class processors
	Segment string
	// NameField is the form field carrying the element name
	NameField string
	// ContentField is the form field carrying the element body
	ContentField string
	// PHPHeader marks classes whose buffers open with a PHP opening tag
	PHPHeader bool
}

var specs = map[Class]Spec{
	Template: {Server: "modTemplate", Label: "Template", Segment: "element/template", NameField: "templatename", ContentField: "content"},
	Chunk:    {Server: "modChunk", Label: "Chunk", Segment: "element/chunk", NameField: "name", ContentField: "snippet"},
	Snippet:  {Server: "modSnippet", Label: "Snippet", Segment: "element/snippet", NameField: "name", ContentField: "snippet", PHPHeader: true},
	Plugin:   {Server: "modPlugin", Label: "Plugin", Segment: "element/plugin", NameField: "name", ContentField: "plugincode", PHPHeader: true},
}

// PHPOpenTag primes buffers of PHP-bodied classes
const PHPOpenTag = "<?php\n"

// Classes returns all classes in chooser order
func Classes() []Class {
	return []Class{Template, Chunk, Snippet, Plugin}
}

// Labels returns the chooser labels for Classes
func Labels() []string {
	classes := Classes()
	labels := make([]string, len(classes))
	for i, c := range classes {
		labels[i] = c.Label()
	}
	return labels
}

// Parse resolves a server class name ("modChunk") or a label ("chunk")
func Parse(name string) (Class, error) {
	trimmed := strings.TrimSpace(name)
	for _, c := range Classes() {
		spec := specs[c]
		if trimmed == spec.Server || strings.EqualFold(trimmed, spec.Label) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownClass, name)
}

// Valid reports whether c is one of the known classes
func (c Class) Valid() bool {
	_, ok := specs[c]
	return ok
}

// Spec returns the wire description of the class
func (c Class) Spec() Spec {
	return specs[c]
}

// String returns the server-side class name
func (c Class) String() string {
	if spec, ok := specs[c]; ok {
		return spec.Server
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Label returns the human readable class name
func (c Class) Label() string {
	return specs[c].Label
}

// Action builds the processor action for a verb, e.g. element/chunk/update
func (c Class) Action(verb string) string {
	return specs[c].Segment + "/" + verb
}

// NameField returns the form field that carries the element name
func (c Class) NameField() string {
	return specs[c].NameField
}

// ContentField returns the form field that carries the element body
func (c Class) ContentField() string {
	return specs[c].ContentField
}

// NeedsPHPHeader reports whether opened buffers start with a PHP open tag
func (c Class) NeedsPHPHeader() bool {
	return specs[c].PHPHeader
}
