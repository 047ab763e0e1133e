/*
Package workflow implements the editor-facing element commands.

Each command is a small state machine. Start performs any initial requests
and returns the first Step, a Prompt or a Choice. Every answer is fed back
through Resume until the workflow returns a nil step. Runner drives a
workflow with an editor.Interactor and treats a dismissed prompt as a quiet
end of the command.

	runner := workflow.NewRunner(ed, interactor, logger, metrics)
	err := runner.Execute(ctx, workflow.NewOpen(deps, element.Chunk, "header"))

Commands:

	Login          address, username, password, then security/login
	Open           list a class, choose, open and bind a new buffer
	Create         name, description, category, then <class>/create
	Update         name, description, category, then <class>/update
	Remove         <class>/remove, then unbind every copy
	ClassSelect    choose a class, continue with another workflow
	OpenReference  Open for the chunk or snippet tag under the cursor

AutoSync is not a workflow: it is the pre-save hook. The first save of a
bound buffer arms it; later saves upload the content.

Execute reports failures through Editor.ErrorMessage using Describe.
*/
package workflow
