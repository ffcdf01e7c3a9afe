package worker

import (
	"context"
	"time"

	"MandelbrotExplorer/queue"
	"github.com/BrugadaSyndrome/bslogger"
	"golang.org/x/sync/errgroup"
)

// Pool is a fixed set of persistent workers draining one queue.
type Pool struct {
	cancel   context.CancelFunc
	group    *errgroup.Group
	logger   bslogger.Logger
	queue    *queue.Queue
	settings Settings
	workers  []*Worker
}

func NewPool(ctx context.Context, q *queue.Queue, settings Settings) *Pool {
	settings.Verify()

	ctx, cancel := context.WithCancel(ctx)
	group, ctx := errgroup.WithContext(ctx)
	p := &Pool{
		cancel:   cancel,
		group:    group,
		logger:   bslogger.NewLogger("Pool", bslogger.Normal, nil),
		queue:    q,
		settings: settings,
	}

	for i := 0; i < settings.Workers; i++ {
		w := NewWorker(i, q)
		p.workers = append(p.workers, w)
		group.Go(w.Run)
	}
	group.Go(func() error {
		p.tickers(ctx)
		return nil
	})

	p.logger.Infof("Started %d workers", settings.Workers)
	return p
}

func (p *Pool) tickers(ctx context.Context) {
	heartBeat := time.NewTicker(p.settings.HeartBeat)
	defer heartBeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartBeat.C:
			p.logger.Debugf("Jobs [Completed: %d] [Discarded: %d] [Outstanding: %d]", p.JobsCompleted(), p.JobsDiscarded(), p.queue.Outstanding())
		}
	}
}

// Close closes the queue and waits for every worker to return.
func (p *Pool) Close() error {
	p.queue.Close()
	p.cancel()
	err := p.group.Wait()
	p.logger.Infof("Stopped %d workers after %d jobs", len(p.workers), p.JobsCompleted())
	return err
}

func (p *Pool) Size() int {
	return len(p.workers)
}

func (p *Pool) Queue() *queue.Queue {
	return p.queue
}

func (p *Pool) JobsCompleted() uint64 {
	var total uint64
	for _, w := range p.workers {
		total += w.JobsCompleted()
	}
	return total
}

func (p *Pool) JobsDiscarded() uint64 {
	var total uint64
	for _, w := range p.workers {
		total += w.JobsDiscarded()
	}
	return total
}
