// Package analytics derives visit telemetry from redirect requests and
// persists it without ever blocking or failing the redirect itself.
package analytics

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"linkgate/internal/entities"
	"linkgate/internal/repository"
)

// DefaultQueueSize bounds the pending-visit queue. When the queue is
// full new visits are dropped, not queued: losing telemetry is cheaper
// than backpressure on the redirect path.
const DefaultQueueSize = 1024

type visitJob struct {
	linkID int64
	meta   RequestMetadata
}

// VisitLogger persists visit events through a bounded queue of
// background workers. LogVisit never blocks and never returns an error;
// write failures are logged and swallowed.
type VisitLogger struct {
	repo    repository.LinkRepository
	geo     GeoResolver
	jobs    chan visitJob
	wg      sync.WaitGroup
	once    sync.Once
	timeout time.Duration

	// mu orders LogVisit sends against the channel close in Close;
	// a send on the closed channel would panic
	mu     sync.RWMutex
	closed bool
}

// NewVisitLogger starts a visit logger with the given number of workers.
func NewVisitLogger(repo repository.LinkRepository, geo GeoResolver, workers, queueSize int) *VisitLogger {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if geo == nil {
		geo = NoopGeoResolver{}
	}

	vl := &VisitLogger{
		repo:    repo,
		geo:     geo,
		jobs:    make(chan visitJob, queueSize),
		timeout: 10 * time.Second,
	}

	vl.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go vl.worker()
	}

	return vl
}

// LogVisit schedules a visit event for persistence. The call returns
// immediately; a full queue drops the event with a warning.
func (vl *VisitLogger) LogVisit(linkID int64, meta RequestMetadata) {
	vl.mu.RLock()
	defer vl.mu.RUnlock()
	if vl.closed {
		log.Printf("Warning: visit logger closed, dropping visit for link %d", linkID)
		return
	}

	select {
	case vl.jobs <- visitJob{linkID: linkID, meta: meta}:
	default:
		log.Printf("Warning: visit queue full, dropping visit for link %d", linkID)
	}
}

// Close stops accepting visits and waits for queued ones to be written.
// Visits logged after Close are dropped.
func (vl *VisitLogger) Close() {
	vl.once.Do(func() {
		vl.mu.Lock()
		vl.closed = true
		close(vl.jobs)
		vl.mu.Unlock()
	})
	vl.wg.Wait()
}

func (vl *VisitLogger) worker() {
	defer vl.wg.Done()
	for job := range vl.jobs {
		vl.persist(job)
	}
}

func (vl *VisitLogger) persist(job visitJob) {
	visit := vl.buildVisit(job)

	// Detached from any request: a client disconnect must not skip
	// visit accounting
	ctx, cancel := context.WithTimeout(context.Background(), vl.timeout)
	defer cancel()

	if err := vl.repo.CreateVisit(ctx, visit); err != nil {
		log.Printf("Warning: failed to log visit for link %d: %v", job.linkID, err)
	}
}

func (vl *VisitLogger) buildVisit(job visitJob) *entities.Visit {
	meta := job.meta

	visit := &entities.Visit{
		ID:        uuid.New().String(),
		LinkID:    job.linkID,
		VisitedAt: time.Now().UTC(),
	}

	if meta.IP != "" {
		visit.IP = &meta.IP
	}
	if meta.UserAgent != "" {
		visit.UserAgent = &meta.UserAgent
	}
	if meta.Referer != "" {
		// Absent referer stays nil and reads as direct traffic downstream
		visit.Referer = &meta.Referer
	}

	parsedUA := ParseUserAgent(meta.UserAgent)
	visit.OS = parsedUA.OS
	visit.DeviceType = parsedUA.DeviceType
	visit.Browser = parsedUA.Browser
	visit.BrowserVersion = parsedUA.BrowserVersion

	loc := vl.geo.Lookup(meta.IP)
	visit.Country = loc.Country
	visit.City = loc.City
	visit.Region = loc.Region

	visit.Language = ExtractLanguage(meta.AcceptLanguage)

	return visit
}
