package rooms

import "context"

type task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func spawn(parent context.Context, fn func(ctx context.Context)) (*task, context.Context) {
	ctx, cancel := context.WithCancel(parent)
	t := &task{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		defer cancel()
		fn(ctx)
	}()
	return t, ctx
}

func (t *task) stop() {
	if t != nil {
		t.cancel()
	}
}

// taskSet holds a room's background activities: the game loop and the
// current round's timer and image relay. Round tasks run under the loop's
// context, so stopping the loop stops them too. Callers hold the room lock.
type taskSet struct {
	loop    *task
	loopCtx context.Context
	timer   *task
	relay   *task
}

func (ts *taskSet) startLoop(fn func(ctx context.Context)) {
	ts.stopAll()
	ts.loop, ts.loopCtx = spawn(context.Background(), fn)
}

// replaceRound cancels the previous round's timer and relay before spawning
// their replacements.
func (ts *taskSet) replaceRound(timer, relay func(ctx context.Context)) {
	ts.stopRound()
	parent := ts.loopCtx
	if parent == nil {
		parent = context.Background()
	}
	ts.timer, _ = spawn(parent, timer)
	ts.relay, _ = spawn(parent, relay)
}

func (ts *taskSet) stopRound() {
	ts.timer.stop()
	ts.relay.stop()
	ts.timer, ts.relay = nil, nil
}

func (ts *taskSet) stopAll() {
	ts.stopRound()
	ts.loop.stop()
	ts.loop, ts.loopCtx = nil, nil
}

// pending returns the done channels of every task that was started,
// for waiting outside the lock.
func (ts *taskSet) pending() []<-chan struct{} {
	var out []<-chan struct{}
	for _, t := range []*task{ts.loop, ts.timer, ts.relay} {
		if t != nil {
			out = append(out, t.done)
		}
	}
	return out
}
