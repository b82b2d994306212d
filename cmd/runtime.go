package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spiffcs/contribs/internal/constants"
	"github.com/spiffcs/contribs/internal/log"
	"github.com/spiffcs/contribs/internal/tui"
)

// runtime tracks the optional progress TUI for a single command run.
//
// ctx is cancelled with tui.ErrCancelled as soon as the user quits the TUI,
// so work started under it stops and side effects can be skipped.
type runtime struct {
	useTUI  bool
	tasks   []tui.Task
	events  chan tui.Event
	tuiDone chan error

	ctx    context.Context
	cancel context.CancelCauseFunc
}

// setupRuntime decides on TUI mode and initializes logging to match.
// Logs are discarded while the TUI owns the terminal.
func setupRuntime(ctx context.Context, opts *Options, tasks []tui.Task) *runtime {
	rt := &runtime{
		useTUI: shouldUseTUI(opts),
		tasks:  tasks,
	}
	rt.ctx, rt.cancel = context.WithCancelCause(ctx)
	if rt.useTUI {
		log.Initialize(opts.Verbosity, io.Discard)
	} else {
		log.Initialize(opts.Verbosity, os.Stderr)
	}
	return rt
}

func (rt *runtime) startTUI() {
	if !rt.useTUI {
		return
	}
	rt.events = make(chan tui.Event, constants.TUIEventBuffer)
	rt.tuiDone = make(chan error, 1)
	go func() {
		err := tui.Run(rt.events, tui.WithTasks(rt.tasks))
		if errors.Is(err, tui.ErrCancelled) {
			rt.cancel(tui.ErrCancelled)
		}
		rt.tuiDone <- err
	}()
}

// cancelled returns tui.ErrCancelled once the user has quit the TUI.
func (rt *runtime) cancelled() error {
	if errors.Is(context.Cause(rt.ctx), tui.ErrCancelled) {
		return tui.ErrCancelled
	}
	return nil
}

// close stops the TUI and waits for it to exit. It is safe to call more than once.
// The returned error is tui.ErrCancelled when the user quit early.
func (rt *runtime) close() error {
	if rt.events == nil {
		return rt.cancelled()
	}
	err := closeTUI(rt.events, rt.tuiDone)
	rt.events = nil
	return err
}

func (rt *runtime) sendEvent(e tui.Event) {
	if rt.events == nil {
		return
	}
	tui.SendEvent(rt.events, e)
}

func (rt *runtime) sendTaskEvent(task tui.TaskID, status tui.TaskStatus, opts ...tui.TaskEventOption) {
	if rt.events == nil {
		return
	}
	tui.SendTaskEvent(rt.events, task, status, opts...)
}

// closeTUI signals completion and waits for the TUI goroutine to return.
func closeTUI(events chan tui.Event, tuiDone chan error) error {
	tui.SendEvent(events, tui.DoneEvent{})
	close(events)
	return <-tuiDone
}
