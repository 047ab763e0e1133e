// Package service exposes the element commands to editor front ends.
//
// Registry maps command names to builders that turn a Request into a
// workflow; Execute builds the workflow and hands it to a runner, which
// drives the prompts and reports failures. Service adds the two commands
// that are not workflows: Save (the pre-save hook followed by the write)
// and Status (the bound buffers).
//
// Example Usage:
//
//	svc, err := service.New(deps, runner)
//	err = svc.Execute(ctx, service.CommandOpen, service.Request{Class: element.Chunk})
//	err = svc.Execute(ctx, service.CommandSelectClass, service.Request{Target: service.CommandCreate, Buffer: buf})
//
// Discover ranks commands against free text for "did you mean" hints.
package service
