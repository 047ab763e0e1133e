package workflow

import (
	"regexp"
	"strings"

	"github.com/GriffinCanCode/modxel/internal/domain/element"
	"github.com/GriffinCanCode/modxel/internal/editor"
)

var tagPattern = regexp.MustCompile(`\[\[[^\[\]]*\]\]`)

// Reference is an element named by a MODX tag
type Reference struct {
	Class element.Class
	Name  string
}

// ParseReference finds the tag enclosing offset. Chunk tags ([[$name]])
// and snippet calls ([[name]], [[!name]]) are references; placeholders,
// settings, links, lexicon entries and comments are not.
func ParseReference(content string, offset int) (Reference, bool) {
	for _, loc := range tagPattern.FindAllStringIndex(content, -1) {
		if offset < loc[0] || offset > loc[1] {
			continue
		}
		return parseTag(content[loc[0]+2 : loc[1]-2])
	}
	return Reference{}, false
}

func parseTag(inner string) (Reference, bool) {
	token := strings.TrimPrefix(strings.TrimSpace(inner), "!")

	class := element.Snippet
	switch {
	case strings.HasPrefix(token, "$"):
		class = element.Chunk
		token = token[1:]
	case token == "", strings.ContainsRune("%*~+#-", rune(token[0])):
		return Reference{}, false
	}

	if end := strings.IndexAny(token, " \t\r\n?:@&`"); end >= 0 {
		token = token[:end]
	}
	if token == "" {
		return Reference{}, false
	}
	return Reference{Class: class, Name: token}, true
}

// NewOpenReference opens the element named by the tag at offset in buf
func NewOpenReference(deps Deps, buf editor.Buffer, offset int) (*Open, error) {
	ref, ok := ParseReference(buf.Content(), offset)
	if !ok {
		return nil, ErrNoReference
	}
	return NewOpen(deps, ref.Class, ref.Name), nil
}
