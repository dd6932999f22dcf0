package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imobiliaria/server/internal/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

type batchRecorder struct {
	mu      sync.Mutex
	batches [][]*models.Lead
}

func (r *batchRecorder) handle(batch []*models.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, batch)
	return nil
}

func (r *batchRecorder) snapshot() [][]*models.Lead {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]*models.Lead, len(r.batches))
	copy(out, r.batches)
	return out
}

func lead(name string) *models.Lead {
	return &models.Lead{Name: name, Phone: "1", Type: "gate"}
}

func TestLeadQueue_FlushesWhenBatchFills(t *testing.T) {
	q := NewLeadQueue(10, 2, time.Hour, quietLogger())
	recorder := &batchRecorder{}
	q.Subscribe(recorder.handle)
	q.Start()
	defer q.Close()

	require.NoError(t, q.Push(lead("a")))
	require.NoError(t, q.Push(lead("b")))

	assert.Eventually(t, func() bool {
		batches := recorder.snapshot()
		return len(batches) == 1 && len(batches[0]) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestLeadQueue_FlushesOnTimer(t *testing.T) {
	q := NewLeadQueue(10, 100, 30*time.Millisecond, quietLogger())
	recorder := &batchRecorder{}
	q.Subscribe(recorder.handle)
	q.Start()
	defer q.Close()

	require.NoError(t, q.Push(lead("solo")))

	assert.Eventually(t, func() bool {
		batches := recorder.snapshot()
		return len(batches) == 1 && len(batches[0]) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestLeadQueue_PushAfterClose(t *testing.T) {
	q := NewLeadQueue(10, 2, time.Hour, quietLogger())
	q.Start()

	require.NoError(t, q.Close())
	assert.True(t, q.IsClosed())
	assert.ErrorIs(t, q.Push(lead("late")), ErrQueueClosed)

	// Closing twice is a no-op.
	assert.NoError(t, q.Close())
}

func TestLeadQueue_PushWhenFull(t *testing.T) {
	// Never started, so nothing drains the buffer.
	q := NewLeadQueue(1, 10, time.Hour, quietLogger())

	require.NoError(t, q.Push(lead("fits")))
	assert.ErrorIs(t, q.Push(lead("overflow")), ErrQueueFull)
	assert.Equal(t, 1, q.Len())
}
