package scheduler

import (
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"imobiliaria/server/internal/database"
	"imobiliaria/server/internal/geometry"
)

// Scheduler runs the background maintenance jobs: geocoding freshly
// created or edited listings every hour and rebuilding the bairro
// outlines nightly.
type Scheduler struct {
	db       *database.Database
	geocoder database.AddressGeocoder
	bairros  *geometry.BairroManager
	logger   *logrus.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	jobMutex sync.Mutex // Ensures sequential job execution
}

func NewScheduler(db *database.Database, geocoder database.AddressGeocoder, bairros *geometry.BairroManager, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Scheduler{
		db:       db,
		geocoder: geocoder,
		bairros:  bairros,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduled tasks. A startup pass runs immediately.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	go func() {
		s.jobMutex.Lock()
		defer s.jobMutex.Unlock()
		s.logger.Info("Running startup maintenance jobs")
		s.geocodePending()
		s.refreshHulls()
		s.logger.Info("Startup maintenance jobs completed")
	}()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case t := <-ticker.C:
			s.executeScheduledJobs(t)
		}
	}
}

func (s *Scheduler) executeScheduledJobs(t time.Time) {
	if t.Minute() != 0 {
		return
	}

	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	s.logger.WithFields(logrus.Fields{
		"hour": t.Hour(),
	}).Debug("Running hourly maintenance")

	s.geocodePending()

	// Hull rebuild at 3am, after the day's edits have settled
	if t.Hour() == 3 {
		s.refreshHulls()
	}
}

func (s *Scheduler) geocodePending() {
	updated, err := s.db.UpdateMissingCoordinates(s.geocoder)
	if err != nil {
		s.logger.WithError(err).Error("Geocoding job failed")
		return
	}
	if updated > 0 {
		s.logger.WithField("updated", updated).Info("Geocoded pending properties")
	}
}

func (s *Scheduler) refreshHulls() {
	if err := s.bairros.Refresh(); err != nil {
		s.logger.WithError(err).Error("Bairro hull refresh failed")
	}
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
