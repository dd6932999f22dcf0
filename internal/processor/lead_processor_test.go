package processor

import (
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"imobiliaria/server/config"
	"imobiliaria/server/internal/models"
	"imobiliaria/server/internal/queue"
)

// stubRunner fails a configurable number of times before succeeding,
// without opening a real transaction.
type stubRunner struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (s *stubRunner) Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failures {
		return errors.New("transaction failed")
	}
	return nil
}

func (s *stubRunner) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testConfig(maxRetries int) *config.Config {
	cfg := &config.Config{}
	cfg.LeadQueue.MaxRetries = maxRetries
	cfg.LeadQueue.RetryDelay = 0
	return cfg
}

func newProcessor(t *testing.T, db TxRunner, maxRetries int) (*LeadProcessor, *queue.LeadQueue) {
	t.Helper()
	q := queue.NewLeadQueue(10, 100, time.Hour, quietLogger())
	p := NewLeadProcessor(db, q, testConfig(maxRetries), quietLogger())
	t.Cleanup(func() {
		q.Close()
		p.Stop()
	})
	return p, q
}

func TestProcessBatch_SucceedsFirstTry(t *testing.T) {
	runner := &stubRunner{}
	p, _ := newProcessor(t, runner, 3)

	err := p.processBatch([]*models.Lead{{Name: "A", Phone: "1", Type: "gate"}})
	require.NoError(t, err)
	assert.Equal(t, 1, runner.callCount())
}

func TestProcessBatch_RetriesUntilSuccess(t *testing.T) {
	runner := &stubRunner{failures: 2}
	p, _ := newProcessor(t, runner, 3)

	err := p.processBatch([]*models.Lead{{Name: "A", Phone: "1", Type: "gate"}})
	require.NoError(t, err)
	assert.Equal(t, 3, runner.callCount(), "two failures then one success")
}

func TestProcessBatch_GivesUpAfterMaxRetries(t *testing.T) {
	runner := &stubRunner{failures: 100}
	p, _ := newProcessor(t, runner, 2)

	err := p.processBatch([]*models.Lead{{Name: "A", Phone: "1", Type: "gate"}})
	require.Error(t, err)
	assert.Equal(t, 3, runner.callCount(), "initial attempt plus two retries")
}

func TestProcessBatch_StopCancelsRetryWait(t *testing.T) {
	runner := &stubRunner{failures: 100}
	cfg := testConfig(5)
	cfg.LeadQueue.RetryDelay = 60

	q := queue.NewLeadQueue(10, 100, time.Hour, quietLogger())
	defer q.Close()
	p := NewLeadProcessor(runner, q, cfg, quietLogger())

	done := make(chan error, 1)
	go func() {
		done <- p.processBatch([]*models.Lead{{Name: "A", Phone: "1", Type: "gate"}})
	}()

	time.Sleep(20 * time.Millisecond)
	p.Stop()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("processBatch did not return after Stop")
	}
}

func TestLeadProcessor_PersistsQueueBatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.db")
	gormDB, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gormDB.Exec(`
		CREATE TABLE leads (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			phone TEXT NOT NULL,
			property_id INTEGER,
			property_title TEXT,
			type TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`).Error)

	q := queue.NewLeadQueue(10, 2, time.Hour, quietLogger())
	p := NewLeadProcessor(gormDB, q, testConfig(1), quietLogger())
	p.Start()
	q.Start()
	defer q.Close()
	defer p.Stop()

	require.NoError(t, q.Push(&models.Lead{Name: "Maria", Phone: "1", Type: "gate"}))
	require.NoError(t, q.Push(&models.Lead{Name: "João", Phone: "2", Type: "whatsapp"}))

	assert.Eventually(t, func() bool {
		var count int64
		gormDB.Raw("SELECT COUNT(*) FROM leads").Scan(&count)
		return count == 2
	}, 2*time.Second, 20*time.Millisecond)
}
