// Package lifecycle runs devcontainer lifecycle commands: the
// host-side initialize hook and the in-container creation and
// attach hooks.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cabindev/cabin/internal/devcontainer"
)

// Phase identifies a lifecycle hook.
type Phase string

// Lifecycle phases in execution order.
const (
	PhaseInitialize    Phase = "initializeCommand"
	PhaseOnCreate      Phase = "onCreateCommand"
	PhaseUpdateContent Phase = "updateContentCommand"
	PhasePostCreate    Phase = "postCreateCommand"
	PhasePostStart     Phase = "postStartCommand"
	PhasePostAttach    Phase = "postAttachCommand"
)

// CreationPhases are the in-container hooks that run, in order, when
// a container is first created.
var CreationPhases = []Phase{PhaseOnCreate, PhaseUpdateContent, PhasePostCreate}

// ErrCommandFailed wraps a non-zero exit from a lifecycle command.
var ErrCommandFailed = errors.New("lifecycle command failed")

// Execer runs a single command in some environment: the local host
// for initializeCommand, the container for everything else.
type Execer interface {
	Exec(ctx context.Context, argv []string, env []string) error
}

// Runner executes lifecycle commands for one config.
type Runner struct {
	// Host runs initializeCommand on the local machine.
	Host Execer

	// Container runs the in-container hooks.
	Container Execer

	// Env is appended to every command's environment.
	Env []string

	// Progress, when set, is called before each command starts.
	Progress func(phase Phase, name string)
}

// Run executes one lifecycle command. String and array forms run as a
// single command. The object form runs each named command in
// parallel; the first failure cancels the rest.
func (r *Runner) Run(ctx context.Context, phase Phase, cmd *devcontainer.Command) error {
	if cmd == nil || cmd.IsZero() {
		return nil
	}

	execer := r.execerFor(phase)

	if len(cmd.Named) == 0 {
		r.report(phase, "")
		if err := execer.Exec(ctx, cmd.Argv(), r.Env); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrCommandFailed, phase, err)
		}
		return nil
	}

	group, ctx := errgroup.WithContext(ctx)
	for _, name := range cmd.NamedOrder() {
		named := cmd.Named[name]
		r.report(phase, name)
		group.Go(func() error {
			if err := execer.Exec(ctx, named.Argv(), r.Env); err != nil {
				return fmt.Errorf("%w: %s (%s): %w", ErrCommandFailed, phase, name, err)
			}
			return nil
		})
	}
	return group.Wait()
}

// RunPhases executes hooks in phase order, stopping at the first
// failure.
func (r *Runner) RunPhases(ctx context.Context, cfg *devcontainer.Config, phases []Phase) error {
	for _, phase := range phases {
		if err := r.Run(ctx, phase, commandFor(cfg, phase)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) execerFor(phase Phase) Execer {
	if phase == PhaseInitialize {
		return r.Host
	}
	return r.Container
}

func (r *Runner) report(phase Phase, name string) {
	if r.Progress != nil {
		r.Progress(phase, name)
	}
}

func commandFor(cfg *devcontainer.Config, phase Phase) *devcontainer.Command {
	switch phase {
	case PhaseInitialize:
		return cfg.InitializeCommand
	case PhaseOnCreate:
		return cfg.OnCreateCommand
	case PhaseUpdateContent:
		return cfg.UpdateContentCommand
	case PhasePostCreate:
		return cfg.PostCreateCommand
	case PhasePostStart:
		return cfg.PostStartCommand
	case PhasePostAttach:
		return cfg.PostAttachCommand
	default:
		return nil
	}
}
