package scene

import (
	"context"
	"sync"
	"time"

	"apex-sim/internal/camera"
	"apex-sim/internal/log"
)

// FrameFunc is called on the loop goroutine after every update while the
// renderer has geometry.
type FrameFunc func(r *Renderer)

// Loop drives a Renderer from a ticker. All access to the renderer happens
// on the goroutine running Run; other goroutines use Post.
type Loop struct {
	r        *Renderer
	interval time.Duration
	frame    FrameFunc
	log      *log.Logger

	cmds chan func(*Renderer)
	done chan struct{}
	once sync.Once
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

func WithFrameFunc(fn FrameFunc) LoopOption {
	return func(l *Loop) { l.frame = fn }
}

func WithLoopLogger(logger *log.Logger) LoopOption {
	return func(l *Loop) { l.log = logger }
}

// NewLoop creates a loop ticking fps times per second.
func NewLoop(r *Renderer, fps int, opts ...LoopOption) *Loop {
	if fps <= 0 {
		fps = camera.DefaultTickRate
	}
	l := &Loop{
		r:        r,
		interval: time.Second / time.Duration(fps),
		log:      log.Default().Named("scene.loop"),
		cmds:     make(chan func(*Renderer), 16),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Post queues fn to run on the loop goroutine before the next frame. It
// returns false once the loop has stopped.
func (l *Loop) Post(fn func(*Renderer)) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.cmds <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Run ticks until ctx is canceled, then disposes the renderer. Pending
// commands and frames are dropped.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })
	defer l.r.Dispose()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	last := time.Now()

	l.log.Debug("loop started", log.Duration("interval", l.interval))
	for {
		select {
		case <-ctx.Done():
			l.log.Debug("loop stopped", log.ErrorField(ctx.Err()))
			return ctx.Err()
		case fn := <-l.cmds:
			fn(l.r)
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			if !l.r.Ready() {
				continue
			}
			l.r.Update(elapsed)
			if l.frame != nil {
				l.frame(l.r)
			}
		}
	}
}
