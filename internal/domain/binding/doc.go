// Package binding maps open buffers to remote elements.
//
// A binding lives in the buffer's own settings, so it travels with the
// buffer wherever the editor persists it. A buffer is actionable when its
// class, id and name are all set; only actionable buffers can be updated,
// removed or auto-synced. The pending-sync flag starts false on every bind
// and is armed by the first save after it.
package binding
