package worker

import (
	"fmt"
	"sync/atomic"
	"time"

	"MandelbrotExplorer/queue"
	"MandelbrotExplorer/task"
	"github.com/BrugadaSyndrome/bslogger"
)

type Worker struct {
	id            int
	jobsCompleted atomic.Uint64
	jobsDiscarded atomic.Uint64
	logger        bslogger.Logger
	queue         *queue.Queue
}

func NewWorker(id int, q *queue.Queue) *Worker {
	return &Worker{
		id:     id,
		logger: bslogger.NewLogger(fmt.Sprintf("Worker %d", id), bslogger.Normal, nil),
		queue:  q,
	}
}

// Run processes jobs until the queue is closed.
func (w *Worker) Run() error {
	w.logger.Debug("Processing jobs")
	startTime := time.Now()

	for {
		job, ok := w.queue.Pop()
		if !ok {
			break
		}
		w.process(job)
	}

	w.logger.Debugf("Processed %d jobs (%d discarded) in %s", w.jobsCompleted.Load(), w.jobsDiscarded.Load(), time.Since(startTime))
	return nil
}

func (w *Worker) process(job task.Job) {
	defer w.queue.Done()

	if w.queue.Stale(job) {
		w.jobsDiscarded.Add(1)
		return
	}
	job.Run()
	w.jobsCompleted.Add(1)
}

func (w *Worker) JobsCompleted() uint64 {
	return w.jobsCompleted.Load()
}

func (w *Worker) JobsDiscarded() uint64 {
	return w.jobsDiscarded.Load()
}
