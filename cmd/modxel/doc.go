// Command modxel edits MODX elements (templates, chunks, snippets and
// plugins) from the terminal.
//
// Element sources live in files. Opening an element writes it to a scratch
// file bound to the element; saving that file through modxel uploads it.
// The first save after binding only arms the upload, like an editor that
// skips the save made right after opening.
//
// Usage:
//
//	modxel [--config FILE] [--log-level LEVEL] [--dev] [--no-tui] COMMAND [ARGS]
//
//	modxel login
//	modxel open --class chunk --name header
//	modxel open-ref page.html --offset 120
//	modxel create footer.html --class chunk --region 10:80
//	modxel update /tmp/modxel/chunk/header
//	modxel remove /tmp/modxel/chunk/header
//	modxel select-class create footer.html
//	modxel save "/tmp/modxel/**"
//	modxel status
//
// Configuration:
//   - TOML file (--config, default in the user config directory)
//   - Environment variables (MODXEL_*, LOG_LEVEL, LOG_DEV)
//   - Flags override both
//
// Prompts use a terminal UI when stdin and stdout are terminals and plain
// numbered lines otherwise.
package main
