// Package paths provides standardized filesystem paths.
//
// # Directory Structure
//
//	<user config>/modxel/
//	  ├── Modx.settings   (server address, session cookie, token, syntax map)
//	  └── config.toml     (optional tool configuration)
//	<user cache>/modxel/
//	  └── buffers.yaml    (open buffers and their element bindings)
//	<tmp>/modxel/         (element scratch files, one directory per class)
//
// # Usage
//
//	scratch := paths.Scratch(paths.ScratchDir(), "chunk", "header")
//	state := paths.StateFile(paths.StateDir())
package paths
