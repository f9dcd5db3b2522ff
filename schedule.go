package retint

import (
	"sync"
	"time"
)

// DefaultFrameInterval is the period of the default frame scheduler.
const DefaultFrameInterval = time.Second / 60

// Scheduler runs work at frame boundaries.
//
// Schedule queues fn for the next frame and never runs it synchronously.
// The returned cancel function removes fn from the queue; it reports false
// when fn already started or was canceled before.
type Scheduler interface {
	Schedule(fn func()) (cancel func() bool)
}

// frameJob is one queued unit of work.
type frameJob struct {
	fn func()
}

// frameQueue is the job list shared by the schedulers.
type frameQueue struct {
	mu   sync.Mutex
	jobs []*frameJob
}

func (q *frameQueue) push(fn func()) func() bool {
	j := &frameJob{fn: fn}
	q.mu.Lock()
	q.jobs = append(q.jobs, j)
	q.mu.Unlock()
	return func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		for i, queued := range q.jobs {
			if queued == j {
				q.jobs = append(q.jobs[:i], q.jobs[i+1:]...)
				return true
			}
		}
		return false
	}
}

// take removes and returns every queued job.
func (q *frameQueue) take() []*frameJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	jobs := q.jobs
	q.jobs = nil
	return jobs
}

func (q *frameQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// FrameScheduler runs queued work on its own goroutine once per tick.
// Jobs run one at a time in the order they were scheduled.
type FrameScheduler struct {
	queue    frameQueue
	interval time.Duration

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewFrameScheduler starts a scheduler ticking every interval. A
// non-positive interval means DefaultFrameInterval. Call Close to stop it.
func NewFrameScheduler(interval time.Duration) *FrameScheduler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	s := &FrameScheduler{
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.loop()
	return s
}

// Schedule queues fn for the next tick.
func (s *FrameScheduler) Schedule(fn func()) func() bool {
	return s.queue.push(fn)
}

// Interval returns the tick period.
func (s *FrameScheduler) Interval() time.Duration { return s.interval }

func (s *FrameScheduler) loop() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			for _, j := range s.queue.take() {
				select {
				case <-s.stop:
					return
				default:
				}
				j.fn()
			}
		}
	}
}

// Stop asks the scheduler to stop and returns without waiting. The job
// running at the time finishes; later jobs are dropped. Unlike Close, Stop
// may be called from a scheduled job.
func (s *FrameScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Close stops the scheduler and waits for the running frame to finish.
// Jobs still queued are dropped. Calling Close from a scheduled job
// deadlocks; use Stop there.
func (s *FrameScheduler) Close() {
	s.Stop()
	<-s.done
}

// ManualScheduler runs queued work only when Step is called. It suits
// tests and hosts that drive frames from their own event loop.
type ManualScheduler struct {
	queue frameQueue
}

// NewManualScheduler returns an empty scheduler.
func NewManualScheduler() *ManualScheduler { return &ManualScheduler{} }

// Schedule queues fn for the next Step.
func (s *ManualScheduler) Schedule(fn func()) func() bool {
	return s.queue.push(fn)
}

// Step runs every job queued before the call, in order, on the calling
// goroutine, and returns how many ran. Jobs scheduled by those jobs wait
// for the next Step.
func (s *ManualScheduler) Step() int {
	jobs := s.queue.take()
	for _, j := range jobs {
		j.fn()
	}
	return len(jobs)
}

// Len returns the number of queued jobs.
func (s *ManualScheduler) Len() int { return s.queue.len() }
