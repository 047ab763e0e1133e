package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/modxel/internal/domain/binding"
	"github.com/GriffinCanCode/modxel/internal/domain/workflow"
	"github.com/GriffinCanCode/modxel/internal/editor"
	"github.com/GriffinCanCode/modxel/internal/infrastructure/logging"
)

// ErrWriteFailed wraps a failure to write a buffer to disk
var ErrWriteFailed = errors.New("write failed")

// Service is the command surface an editor front end talks to
type Service struct {
	commands *Registry
	runner   Executor
	sync     *workflow.AutoSync
	bindings *binding.Registry
	logger   *logging.Logger
}

// New creates a service with the builtin commands registered
func New(deps workflow.Deps, runner Executor) (*Service, error) {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	commands := NewRegistry(runner)
	if err := RegisterBuiltins(commands, deps); err != nil {
		return nil, err
	}

	return &Service{
		commands: commands,
		runner:   runner,
		sync:     workflow.NewAutoSync(deps),
		bindings: deps.Registry,
		logger:   logger.Named("service"),
	}, nil
}

// Commands returns the command registry
func (s *Service) Commands() *Registry {
	return s.commands
}

// Execute runs the named command
func (s *Service) Execute(ctx context.Context, name string, req Request) error {
	return s.commands.Execute(ctx, name, req)
}

// Save runs the pre-save hook, then writes buf. The write happens even
// when the upload fails so local edits are never lost.
func (s *Service) Save(ctx context.Context, buf editor.Buffer) error {
	result, syncErr := s.sync.PreSave(ctx, buf)
	if syncErr != nil {
		s.runner.Report("save", syncErr)
	} else {
		s.logger.Debug("pre-save hook", zap.String("buffer", buf.ID()), zap.String("result", result))
	}

	if err := buf.Save(); err != nil {
		return errors.Join(syncErr, fmt.Errorf("%w: %s: %w", ErrWriteFailed, buf.Path(), err))
	}
	return syncErr
}

// Status lists the bound buffers
func (s *Service) Status() []binding.Entry {
	return s.bindings.Entries()
}
