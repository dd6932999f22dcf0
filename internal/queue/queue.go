package queue

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"imobiliaria/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// LeadQueue buffers captured leads and hands them to subscribers in
// batches. A batch is flushed when it reaches maxBatch leads or when
// maxWait elapses with leads pending, whichever comes first.
type LeadQueue struct {
	incoming chan *models.Lead
	batches  chan []*models.Lead
	done     chan struct{}
	closed   bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func([]*models.Lead) error
	maxBatch int
	maxWait  time.Duration
}

func NewLeadQueue(bufferSize, maxBatch int, maxWait time.Duration, logger *logrus.Logger) *LeadQueue {
	if logger == nil {
		logger = logrus.New()
	}
	if maxBatch < 1 {
		maxBatch = 1
	}
	return &LeadQueue{
		incoming: make(chan *models.Lead, bufferSize),
		batches:  make(chan []*models.Lead, bufferSize),
		done:     make(chan struct{}),
		logger:   logger,
		handlers: make([]func([]*models.Lead) error, 0),
		maxBatch: maxBatch,
		maxWait:  maxWait,
	}
}

// Push adds a lead to the queue without blocking.
func (q *LeadQueue) Push(lead *models.Lead) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	select {
	case q.incoming <- lead:
		q.logger.WithField("type", lead.Type).Debug("Pushed lead to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler that will be called for each flushed batch.
func (q *LeadQueue) Subscribe(handler func([]*models.Lead) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins collecting and dispatching batches.
func (q *LeadQueue) Start() {
	go q.collect()
	go q.dispatch()
}

// collect accumulates incoming leads into batches.
func (q *LeadQueue) collect() {
	ticker := time.NewTicker(q.maxWait)
	defer ticker.Stop()

	var pending []*models.Lead
	flush := func() {
		if len(pending) == 0 {
			return
		}
		q.batches <- pending
		pending = nil
	}

	for {
		select {
		case <-q.done:
			flush()
			return
		case lead := <-q.incoming:
			pending = append(pending, lead)
			if len(pending) >= q.maxBatch {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// dispatch sends each batch to all subscribed handlers.
func (q *LeadQueue) dispatch() {
	for {
		select {
		case <-q.done:
			return
		case batch := <-q.batches:
			q.mu.RLock()
			handlers := q.handlers
			q.mu.RUnlock()

			for _, handler := range handlers {
				if err := handler(batch); err != nil {
					q.logger.WithError(err).Error("Handler failed to process lead batch")
				}
			}
		}
	}
}

// Close stops the queue and prevents new leads from being added.
func (q *LeadQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.done)
	return nil
}

// Len returns the number of leads waiting to be batched.
func (q *LeadQueue) Len() int {
	return len(q.incoming)
}

func (q *LeadQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
