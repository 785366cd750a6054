package worker

import (
	"context"
	"sync"
	"time"
)

type Task func(ctx context.Context) error

// Job is a keyed task; its Result carries the same key.
type Job struct {
	Key string
	Run Task
}

type Result struct {
	Key string
	Err error
}

// Pool runs jobs on a fixed number of goroutines, optionally paced by a
// shared ticker.
type Pool struct {
	workers int
	jobs    chan Job
	wg      sync.WaitGroup
	mu      sync.RWMutex
	rate    <-chan time.Time
	ticker  *time.Ticker
}

func NewPool(workers, buffer int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &Pool{
		workers: workers,
		jobs:    make(chan Job, buffer),
	}
}

// SetRateLimit caps job starts per second across all workers. rps <= 0
// removes the cap.
func (p *Pool) SetRateLimit(rps int) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ticker != nil {
		p.ticker.Stop()
		p.ticker = nil
		p.rate = nil
	}
	if rps <= 0 {
		return
	}
	p.ticker = time.NewTicker(time.Second / time.Duration(rps))
	p.rate = p.ticker.C
}

func (p *Pool) Submit(j Job) {
	if p == nil || j.Run == nil {
		return
	}
	p.jobs <- j
}

func (p *Pool) Close() {
	if p == nil {
		return
	}
	close(p.jobs)
}

func (p *Pool) stopTicker() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ticker != nil {
		p.ticker.Stop()
		p.ticker = nil
		p.rate = nil
	}
}

// Run starts the workers. The returned channel is closed once every worker
// has exited, either because Close was called and the queue drained or
// because ctx was cancelled.
func (p *Pool) Run(ctx context.Context) <-chan Result {
	if p == nil {
		out := make(chan Result)
		close(out)
		return out
	}
	out := make(chan Result, p.workers+cap(p.jobs))

	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case j, ok := <-p.jobs:
					if !ok {
						return
					}
					p.mu.RLock()
					rate := p.rate
					p.mu.RUnlock()
					if rate != nil {
						select {
						case <-ctx.Done():
							out <- Result{Key: j.Key, Err: ctx.Err()}
							return
						case <-rate:
						}
					}
					err := j.Run(ctx)
					select {
					case <-ctx.Done():
						return
					case out <- Result{Key: j.Key, Err: err}:
					}
				}
			}
		}()
	}

	go func() {
		p.wg.Wait()
		p.stopTicker()
		close(out)
	}()

	return out
}

// RunAll executes jobs with the given concurrency and returns one result per
// job that ran, in completion order.
func RunAll(ctx context.Context, workers, rps int, jobs []Job) []Result {
	if len(jobs) == 0 {
		return nil
	}
	p := NewPool(workers, len(jobs))
	p.SetRateLimit(rps)
	results := p.Run(ctx)
	for _, j := range jobs {
		p.Submit(j)
	}
	p.Close()

	out := make([]Result, 0, len(jobs))
	for r := range results {
		out = append(out, r)
	}
	return out
}
