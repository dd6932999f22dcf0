package processor

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"imobiliaria/server/config"
	"imobiliaria/server/internal/database"
	"imobiliaria/server/internal/models"
	"imobiliaria/server/internal/queue"
)

// TxRunner is the slice of *gorm.DB the processor needs; it exists so
// tests can substitute the transaction boundary.
type TxRunner interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// LeadProcessor persists batches of captured leads coming off the queue,
// retrying failed batches before giving up.
type LeadProcessor struct {
	db        TxRunner
	logger    *logrus.Logger
	config    *config.Config
	queue     *queue.LeadQueue
	waitGroup sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewLeadProcessor(db TxRunner, queue *queue.LeadQueue, config *config.Config, logger *logrus.Logger) *LeadProcessor {
	ctx, cancel := context.WithCancel(context.Background())
	return &LeadProcessor{
		db:     db,
		queue:  queue,
		config: config,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start subscribes the processor to the lead queue.
func (p *LeadProcessor) Start() {
	p.queue.Subscribe(func(batch []*models.Lead) error {
		return p.processBatch(batch)
	})
}

// Stop cancels any retry waits in progress.
func (p *LeadProcessor) Stop() {
	p.cancel()
	p.waitGroup.Wait()
}

// processBatch writes one batch inside a transaction with retry.
func (p *LeadProcessor) processBatch(batch []*models.Lead) error {
	var err error
	for attempt := 0; attempt <= p.config.LeadQueue.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying lead batch, attempt %d of %d", attempt, p.config.LeadQueue.MaxRetries)
			select {
			case <-p.ctx.Done():
				return p.ctx.Err()
			case <-time.After(time.Duration(p.config.LeadQueue.RetryDelay) * time.Second):
			}
		}

		err = p.db.Transaction(func(tx *gorm.DB) error {
			if err := database.InsertLeads(tx, batch); err != nil {
				return fmt.Errorf("failed to insert lead batch: %w", err)
			}
			return nil
		})

		if err == nil {
			p.logger.Infof("Persisted batch of %d leads", len(batch))
			return nil
		}

		p.logger.Errorf("Lead batch failed: %v", err)
	}

	return fmt.Errorf("failed to process lead batch after %d attempts: %w", p.config.LeadQueue.MaxRetries, err)
}
