// Package element models the remote content elements managed through the
// connector API.
//
// Element classes form a closed set with a lookup table describing how each
// class is addressed on the wire:
//
//	Class     Server       Action segment     Name field     Content field
//	Template  modTemplate  element/template   templatename   content
//	Chunk     modChunk     element/chunk      name           snippet
//	Snippet   modSnippet   element/snippet    name           snippet
//	Plugin    modPlugin    element/plugin     name           plugincode
//
// Snippet and Plugin buffers open with a PHP opening tag.
//
// Example Usage:
//
//	class, err := element.Parse("modChunk")
//	action := class.Action("update") // element/chunk/update
package element
