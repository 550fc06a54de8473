// Package jobs runs the reconciliation engine on a fixed period.
package jobs

import (
	"context"
	"log"
	"time"

	"go-catalog-mirror/internal/service"
)

const DefaultInterval = 15 * time.Minute

// SyncJob drives the sync service from a single goroutine: one run at
// startup, then one per tick. Runs are strictly sequential, so two cycles
// can never overlap; a slow cycle simply delays the next tick's work.
type SyncJob struct {
	service  service.SyncService
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewSyncJob(s service.SyncService, interval time.Duration) *SyncJob {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &SyncJob{
		service:  s,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the worker goroutine. Call Stop to shut it down.
func (j *SyncJob) Start() {
	go j.loop()
}

// Stop signals the worker and waits for the in-flight cycle, if any, to
// finish. A started transaction always runs to commit or rollback.
func (j *SyncJob) Stop() {
	close(j.stop)
	<-j.done
}

func (j *SyncJob) loop() {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.runOnce()
	for {
		select {
		case <-j.stop:
			return
		case <-ticker.C:
			j.runOnce()
		}
	}
}

// runOnce isolates one cycle: errors and panics are logged and swallowed so
// a bad cycle never takes the scheduler down with it.
func (j *SyncJob) runOnce() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("sync job: recovered from panic: %v", r)
		}
	}()

	if err := j.service.RunCycle(context.Background()); err != nil {
		log.Printf("sync job: cycle failed: %v", err)
	}
}
