package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrQueueFull is returned when every worker is busy and the queue is full
	ErrQueueFull = errors.New("chat queue is full")
	// ErrPoolClosed is returned after Close
	ErrPoolClosed = errors.New("chat pool is closed")
)

// ResultFunc receives the generated reply or the error
type ResultFunc func(reply string, err error)

type job struct {
	ctx    context.Context
	prompt Prompt
	done   ResultFunc
}

// Pool runs generation calls on a fixed set of workers fed by a bounded queue
type Pool struct {
	generator Generator
	timeout   time.Duration
	jobs      chan job
	onDepth   func(depth int)

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool starts workers goroutines. onDepth may be nil.
func NewPool(generator Generator, workers, queueSize int, timeout time.Duration, onDepth func(depth int)) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	if onDepth == nil {
		onDepth = func(int) {}
	}

	p := &Pool{
		generator: generator,
		timeout:   timeout,
		jobs:      make(chan job, queueSize),
		onDepth:   onDepth,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}

	log.WithFields(log.Fields{
		"workers":   workers,
		"queueSize": queueSize,
		"timeout":   timeout,
	}).Info("Chat pool started")
	return p
}

// Submit queues a prompt without blocking. done runs on a worker goroutine.
func (p *Pool) Submit(ctx context.Context, prompt Prompt, done ResultFunc) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.jobs <- job{ctx: ctx, prompt: prompt, done: done}:
		p.onDepth(len(p.jobs))
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting jobs and waits for queued ones to finish
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	log.Info("Chat pool stopped")
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for j := range p.jobs {
		p.onDepth(len(p.jobs))
		reply, err := p.run(j)
		if err != nil {
			log.WithFields(log.Fields{
				"worker": id,
				"user":   j.prompt.UserName,
				"error":  err,
			}).Warn("Chat generation failed")
		}
		j.done(reply, err)
	}
}

func (p *Pool) run(j job) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panicked: %v", r)
		}
	}()

	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	return p.generator.Generate(ctx, j.prompt)
}
