// Package editor defines the host editor as seen by modxel.
//
// Workflows never draw UI themselves. They read and mutate buffers through
// Buffer, Window and Editor, and ask the user questions through the two
// Interactor primitives, Prompt and Choose. The workspace subpackage backs
// these with files on disk; the terminal subpackage renders the primitives.
package editor
