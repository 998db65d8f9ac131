package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/kbukum/localdiscovery/logger"
)

// Hook is a lifecycle callback. Hooks of one phase run in registration order.
type Hook func(ctx context.Context) error

// phase names a hook list in logs and errors.
type phase string

const (
	phaseStart phase = "start"
	phaseReady phase = "ready"
	phaseStop  phase = "stop"
)

// OnStart registers hooks that run after every component has started and
// before configure callbacks. By then the discovery component has registered
// the service, or the local descriptor has resolved its instance.
func (a *App[C]) OnStart(hooks ...Hook) {
	a.onStart = append(a.onStart, hooks...)
}

// OnReady registers hooks that run once the application is fully
// initialized: components started, configure callbacks done, ready check run.
// This is where the local fallback announces its instance. Ready hooks fire at
// most once per App.
func (a *App[C]) OnReady(hooks ...Hook) {
	a.onReady = append(a.onReady, hooks...)
}

// OnStop registers hooks that run during graceful shutdown before components
// stop, while the service is still registered.
func (a *App[C]) OnStop(hooks ...Hook) {
	a.onStop = append(a.onStop, hooks...)
}

// runHooks runs hooks in order. Start and ready phases stop at the first
// error; the stop phase runs every hook and joins the errors.
func (a *App[C]) runHooks(ctx context.Context, p phase, hooks []Hook) error {
	var errs []error
	for i, h := range hooks {
		err := h(ctx)
		if err == nil {
			continue
		}
		err = fmt.Errorf("%s hook %d: %w", p, i, err)
		a.Logger.Error("Lifecycle hook failed", logger.Fields("phase", string(p), "hook", i, logger.FieldError, err.Error()))
		if p != phaseStop {
			return err
		}
		errs = append(errs, err)
	}
	if len(hooks) > 0 {
		a.Logger.Debug("Lifecycle hooks done", logger.Fields("phase", string(p), "count", len(hooks)))
	}
	return errors.Join(errs...)
}
