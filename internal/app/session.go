package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"mockingbird/internal/domain"
	"mockingbird/internal/service"
	"mockingbird/internal/storage"
)

// session is one open design: the storage backend and the service loaded
// from it.
type session struct {
	svc     *service.DesignService
	backend *storage.Backend
}

func (s *session) Close() error {
	return s.backend.Close()
}

// openSession opens the configured backend and loads the design. The
// emitter may be nil.
func (o *RootOptions) openSession(ctx context.Context, emitter service.EventEmitter) (*session, error) {
	backend, err := storage.Open(ctx, o.cfg.StorageOptions())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open storage", err)
	}

	emitters := service.MultiEmitter{service.LogEmitter{Log: o.log}}
	if emitter != nil {
		emitters = append(emitters, emitter)
	}
	svc := service.NewDesignService(backend.State, backend.History, emitters, o.log, service.Options{
		Workspace: o.cfg.WorkspaceOptions(),
		EdgeStyle: o.cfg.EdgeStyle(),
	})
	if err := svc.Load(ctx); err != nil {
		backend.Close()
		return nil, fmt.Errorf("load design: %w", err)
	}
	return &session{svc: svc, backend: backend}, nil
}

// withSession opens a session, runs fn and closes it.
func (o *RootOptions) withSession(ctx context.Context, fn func(*service.DesignService) error) error {
	sess, err := o.openSession(ctx, nil)
	if err != nil {
		return err
	}
	defer sess.Close()
	return fn(sess.svc)
}

// finish reports the outcome of a design command: rejections are printed
// and exit with ExitFailure, anything else is returned as is.
func finish(p printer, err error, text string, data any) error {
	if domain.IsRejected(err) {
		return p.rejected(err)
	}
	if errors.Is(err, domain.ErrNoHistory) {
		return p.result("Nothing to restore", nil)
	}
	if err != nil {
		return err
	}
	return p.result(text, data)
}

// intArg parses a positional integer argument.
func intArg(args []string, i int, name string) (int, error) {
	v, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, WrapExitError(ExitCommandError, fmt.Sprintf("invalid %s %q", name, args[i]), err)
	}
	return v, nil
}

// floatArg parses a positional number argument.
func floatArg(args []string, i int, name string) (float64, error) {
	v, err := strconv.ParseFloat(args[i], 64)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, fmt.Sprintf("invalid %s %q", name, args[i]), err)
	}
	return v, nil
}

// cellArgs parses <row> <col> starting at args[i].
func cellArgs(args []string, i int) (int, int, error) {
	row, err := intArg(args, i, "row")
	if err != nil {
		return 0, 0, err
	}
	col, err := intArg(args, i+1, "col")
	if err != nil {
		return 0, 0, err
	}
	return row, col, nil
}
