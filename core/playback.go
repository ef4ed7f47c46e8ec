package core

import (
	"context"
	"time"

	"github.com/huangsam/globeplay/schema"
)

// Scheduler is the playback state machine of one step unit.
//
// Toggle while Idle acquires the cursor and starts the advance loop; Toggle while
// Running only flips the cooperative active flag. The loop checks the flag before
// every iteration, so a pause lets at most the in-flight frame commit before the
// scheduler returns to Idle. All fields are guarded by the pipeline lock.
type Scheduler struct {
	unit   schema.StepUnit
	frames *framePipeline
	ctx    context.Context

	active bool
	state  schema.PlaybackState
	done   chan struct{}
}

func newScheduler(ctx context.Context, unit schema.StepUnit, frames *framePipeline) *Scheduler {
	return &Scheduler{unit: unit, frames: frames, ctx: ctx, state: schema.IdleState}
}

// Unit returns the step unit of the scheduler.
func (s *Scheduler) Unit() schema.StepUnit { return s.unit }

// State returns Running while the loop is alive (including a draining iteration after
// a pause) and Idle otherwise.
func (s *Scheduler) State() schema.PlaybackState {
	s.frames.mu.Lock()
	defer s.frames.mu.Unlock()
	return s.state
}

// Active reports whether the loop will start another iteration.
func (s *Scheduler) Active() bool {
	s.frames.mu.Lock()
	defer s.frames.mu.Unlock()
	return s.active
}

// Toggle starts or pauses playback. Starting fails with ErrCursorOwned while the other
// unit is running, and with ErrClosed after the session has been torn down.
func (s *Scheduler) Toggle() error {
	p := s.frames
	p.mu.Lock()
	defer p.mu.Unlock()

	if s.ctx.Err() != nil {
		return ErrClosed
	}
	if s.state == schema.IdleState {
		if err := p.cursor.Acquire(s.unit); err != nil {
			return err
		}
		s.active = true
		s.state = schema.RunningState
		s.done = make(chan struct{})
		go s.run(s.done)
	} else {
		// A toggle during the draining iteration resumes the same loop.
		s.active = !s.active
	}
	p.controls.SetPlaybackLabel(s.unit, schema.PlayLabel(s.unit, s.labelStateLocked()))
	return nil
}

// Pause stops a running loop after its in-flight frame. Unlike Toggle it never starts
// playback, so it is safe to call when the loop may have just finished.
func (s *Scheduler) Pause() {
	p := s.frames
	p.mu.Lock()
	defer p.mu.Unlock()

	if s.state != schema.RunningState || !s.active {
		return
	}
	s.active = false
	p.controls.SetPlaybackLabel(s.unit, schema.PlayLabel(s.unit, schema.IdleState))
}

// Wait blocks until the current loop, if any, has exited.
func (s *Scheduler) Wait() {
	s.frames.mu.Lock()
	done := s.done
	s.frames.mu.Unlock()
	if done != nil {
		<-done
	}
}

// run is the advance loop. Frame N+1 is never preloaded before frame N is committed.
func (s *Scheduler) run(done chan struct{}) {
	defer close(done)
	for {
		base, next, url, ok := s.nextFrame()
		if !ok {
			return
		}
		// A failed preload still commits so the cursor keeps progressing.
		loaded := s.frames.gate.Preload(s.ctx, url)
		if !s.commitFrame(base, next, url, loaded) {
			return
		}
	}
}

// nextFrame checks the active flag first, then computes the next cursor value.
// base is the cursor value the step was computed from.
func (s *Scheduler) nextFrame() (base, next time.Time, url string, ok bool) {
	p := s.frames
	p.mu.Lock()
	defer p.mu.Unlock()

	if !s.active || s.ctx.Err() != nil {
		s.stopLocked()
		return time.Time{}, time.Time{}, "", false
	}
	base = p.cursor.Current()
	next, err := p.cursor.Peek(s.unit)
	if err != nil {
		s.stopLocked()
		return time.Time{}, time.Time{}, "", false
	}
	return base, next, p.urlForLocked(next), true
}

// commitFrame publishes an in-flight frame. Session teardown discards it, and so does
// a date set by the user while it was loading: the loop then steps from that date.
func (s *Scheduler) commitFrame(base, date time.Time, url string, loaded bool) bool {
	p := s.frames
	p.mu.Lock()
	defer p.mu.Unlock()

	if s.ctx.Err() != nil {
		s.stopLocked()
		return false
	}
	if !p.cursor.Current().Equal(base) {
		return true
	}
	if err := p.commitLocked(s.unit, date, url, loaded); err != nil {
		s.stopLocked()
		return false
	}
	return true
}

func (s *Scheduler) stopLocked() {
	s.active = false
	s.state = schema.IdleState
	s.frames.cursor.Release(s.unit)
	s.frames.controls.SetPlaybackLabel(s.unit, schema.PlayLabel(s.unit, schema.IdleState))
}

func (s *Scheduler) labelStateLocked() schema.PlaybackState {
	if s.active {
		return schema.RunningState
	}
	return schema.IdleState
}
