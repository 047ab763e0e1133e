// Package app wires the element client together.
//
// New builds, in order: the logger and metrics, the settings store, the
// connector client, the file-backed workspace, the binding registry, and
// finally the command service whose workflows run against the given
// frontend. Close persists the workspace state and, when configured, the
// metrics textfile.
//
// Example Usage:
//
//	a, err := app.New(cfg, terminal.NewStdio())
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//	err = a.Service().Execute(ctx, service.CommandLogin, service.Request{})
package app
