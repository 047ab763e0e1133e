// Package store persists server connection state across processes.
//
// The store is a plain key/value map. It performs no validation; an absent
// key is a normal state that callers query. The backing file is JSON with
// comments, so hand-edited settings may be annotated:
//
//	{
//		// MODX manager root
//		"server_address": "https://cms.example.com/manager/",
//		"server_session": "PHPSESSID=...",
//		"server_token": "...",
//		"syntax": {"modChunk": "text.html.modx"}
//	}
//
// Persist writes synchronously through a temp file and rename, so a crash
// never leaves a truncated settings file behind.
package store
