/*
Package terminal implements editor.Interactor and the message sink on a
terminal.

When stdin and stdout are terminals, prompts and choices are bubbletea
widgets: a text input (masked for secrets) and a scrolling list. Otherwise
the terminal falls back to line mode, which reads one line per answer and
suits pipes and scripts:

	Modx Element Class
	*  1) Chunk
	   2) Snippet
	Number (q to cancel):

A prompt with a default shows it in brackets; "." keeps it and an empty line
answers empty. End of input dismisses a prompt.

Status and error messages are stripped of HTML tags before printing, since
MODX error texts often carry markup. The remaining text, entities decoded,
is printed as the server sent it.
*/
package terminal
