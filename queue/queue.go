package queue

import (
	"errors"
	"sync"

	"MandelbrotExplorer/task"
)

var (
	ErrClosed = errors.New("queue closed")
	ErrFull   = errors.New("queue full")
)

// Queue is a bounded LIFO of pending jobs shared by the render orchestrator and its workers.
//
// outstanding counts jobs that were enqueued but not yet reported done. It reaches zero exactly when every job of
// the current frame has been completed or discarded.
type Queue struct {
	capacity    int
	closed      bool
	drained     *sync.Cond
	generation  uint64
	mutex       sync.Mutex
	outstanding int
	pending     []task.Job
	work        *sync.Cond
}

func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 4096
	}
	q := &Queue{
		capacity: capacity,
		pending:  make([]task.Job, 0, capacity),
	}
	q.work = sync.NewCond(&q.mutex)
	q.drained = sync.NewCond(&q.mutex)
	return q
}

// Enqueue adds a job and wakes one waiting worker. It never blocks.
func (q *Queue) Enqueue(job task.Job) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.closed {
		return ErrClosed
	}
	if len(q.pending) >= q.capacity {
		return ErrFull
	}
	q.pending = append(q.pending, job)
	q.outstanding++
	q.work.Signal()
	return nil
}

// Pop blocks until a job is available or the queue is closed. The second result is false once the queue is closed.
// The caller must call Done for every job it receives.
func (q *Queue) Pop() (task.Job, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	for len(q.pending) == 0 && !q.closed {
		q.work.Wait()
	}
	if q.closed {
		return task.Job{}, false
	}
	last := len(q.pending) - 1
	job := q.pending[last]
	q.pending[last] = task.Job{}
	q.pending = q.pending[:last]
	return job, true
}

// Done marks one popped job as finished.
func (q *Queue) Done() {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.outstanding > 0 {
		q.outstanding--
	}
	if q.outstanding == 0 {
		q.drained.Broadcast()
	}
}

// AwaitDrain blocks until every enqueued job is done.
func (q *Queue) AwaitDrain() {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	for q.outstanding > 0 {
		q.drained.Wait()
	}
}

func (q *Queue) Outstanding() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.outstanding
}

func (q *Queue) Pending() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.pending)
}

func (q *Queue) Capacity() int {
	return q.capacity
}

// Generation is the frame generation jobs must carry to be computed.
func (q *Queue) Generation() uint64 {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.generation
}

// Advance supersedes every job of the current generation. Pending stale jobs are dropped immediately, in flight
// ones are left to finish. It returns the new generation.
func (q *Queue) Advance() uint64 {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	q.generation++
	q.outstanding -= len(q.pending)
	clear(q.pending)
	q.pending = q.pending[:0]
	if q.outstanding <= 0 {
		q.outstanding = 0
		q.drained.Broadcast()
	}
	return q.generation
}

// Stale reports whether job belongs to a superseded generation.
func (q *Queue) Stale(job task.Job) bool {
	return job.FrameGeneration != q.Generation()
}

// Close drops pending jobs and releases every blocked worker and waiter. It is safe to call more than once.
func (q *Queue) Close() {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.outstanding -= len(q.pending)
	if q.outstanding < 0 {
		q.outstanding = 0
	}
	clear(q.pending)
	q.pending = nil
	q.work.Broadcast()
	q.drained.Broadcast()
}

func (q *Queue) Closed() bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.closed
}
