/*
Package workspace implements the editor interfaces on top of the filesystem.

Each buffer is a file. Metadata the editor would normally keep in memory
(buffer settings, status entries, syntax, window membership) is written to
a YAML state file so a later process sees the same bindings:

	windows:
	  - id: win_01J...
	    buffers:
	      - id: buf_01J...
	        path: /tmp/modxel/header
	        syntax: text.html.modx
	        status:
	          Modx: 'Modx Element (modChunk): header'
	        settings:
	          modx_element_class: modChunk
	          modx_element_id: "42"

Buffers that were never saved keep their content in the state file instead.
Call Flush after mutating buffers.
*/
package workspace
