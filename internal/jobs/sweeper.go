package jobs

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AnandRamasubramanian/youtube-downloader/internal/config"
)

// abandonMultiple stretches the retention window for jobs that never
// reached a terminal state before they are considered stuck and evicted.
const abandonMultiple = 3

// Sweeper periodically evicts expired jobs and deletes their artifacts.
// Delivery is served-once-then-expires: a completed job's file lives for
// the retention window, or a short grace period after it is first served.
// A polled job that was evicted answers "unknown".
type Sweeper struct {
	store     *Store
	dir       string
	interval  time.Duration
	retention time.Duration
	grace     time.Duration
	stop      chan struct{}
	done      chan struct{}
}

func NewSweeper(store *Store, cfg *config.Config) *Sweeper {
	return &Sweeper{
		store:     store,
		dir:       cfg.DownloadDir,
		interval:  cfg.SweepInterval,
		retention: cfg.Retention,
		grace:     cfg.ServeGrace,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the sweep loop. Stop it once, at shutdown.
func (s *Sweeper) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep(time.Now())
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}

// ScheduleRemoval deletes an artifact a grace period after it was served,
// best effort. The job record stays until the sweep evicts it; a later
// file request simply finds nothing and 404s.
func (s *Sweeper) ScheduleRemoval(path string) {
	time.AfterFunc(s.grace, func() {
		if err := os.Remove(path); err == nil {
			log.Printf("sweeper: removed served artifact %s", filepath.Base(path))
		}
	})
}

func (s *Sweeper) sweep(now time.Time) {
	type expired struct {
		id   string
		path string
	}
	var evict []expired

	s.store.Range(func(j Job) bool {
		var age time.Duration
		var limit time.Duration
		if j.Status.Terminal() {
			age = now.Sub(j.CompletedAt)
			limit = s.retention
		} else {
			age = now.Sub(j.CreatedAt)
			limit = s.retention * abandonMultiple
		}
		if age > limit {
			evict = append(evict, expired{id: j.ID, path: j.FilePath})
		}
		return true
	})

	for _, e := range evict {
		if e.path != "" {
			os.Remove(e.path)
		}
		s.store.Delete(e.id)
		log.Printf("sweeper: evicted job %s", e.id)
	}

	s.sweepOrphans(now)
}

// sweepOrphans removes files past retention that no live job claims,
// covering temp leftovers and artifacts of already-evicted jobs.
func (s *Sweeper) sweepOrphans(now time.Time) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return
	}

	live := make(map[string]struct{})
	s.store.Range(func(j Job) bool {
		live[j.ID] = struct{}{}
		return true
	})

	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == ".gitkeep" {
			continue
		}
		id, _, _ := strings.Cut(entry.Name(), "_")
		if _, owned := live[id]; owned {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) > s.retention {
			os.Remove(filepath.Join(s.dir, entry.Name()))
			log.Printf("sweeper: removed orphan %s", entry.Name())
		}
	}
}
