package jobs

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AnandRamasubramanian/youtube-downloader/internal/config"
	"github.com/AnandRamasubramanian/youtube-downloader/internal/engine"
	"github.com/AnandRamasubramanian/youtube-downloader/internal/format"
	"github.com/AnandRamasubramanian/youtube-downloader/internal/media"
)

// enqueueWait bounds how long a queued job waits for a worker slot before
// failing as busy.
const enqueueWait = 10 * time.Second

// Orchestrator runs each download on its own worker, consuming the engine's
// progress events and writing throttled updates into the job store. It is
// the only writer for a job's lifecycle; there is no cancellation — a
// started download runs to completion or failure.
type Orchestrator struct {
	store       *Store
	fetcher     engine.Fetcher
	downloadDir string
	interval    time.Duration
	queue       chan struct{}
}

func NewOrchestrator(store *Store, fetcher engine.Fetcher, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		store:       store,
		fetcher:     fetcher,
		downloadDir: cfg.DownloadDir,
		interval:    cfg.ProgressInterval,
		queue:       make(chan struct{}, cfg.MaxConcurrentJobs),
	}
}

// Start enqueues a download and returns the new job's queued snapshot.
func (o *Orchestrator) Start(url string, info *media.VideoInfo, spec format.FetchSpec) Job {
	id := uuid.New().String()[:8]
	job := &Job{
		ID:        id,
		Title:     info.Title,
		Status:    StatusQueued,
		CreatedAt: time.Now(),
	}
	queued := snapshot(job)
	o.store.Put(job)

	go o.run(id, url, info.Title, spec)

	return queued
}

func (o *Orchestrator) run(id, url, title string, spec format.FetchSpec) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("job %s: panic: %v", id, r)
			o.fail(id, "An unexpected error occurred.")
		}
	}()

	select {
	case o.queue <- struct{}{}:
		defer func() { <-o.queue }()
	case <-time.After(enqueueWait):
		o.fail(id, "Server busy. Try again later.")
		return
	}

	o.store.Update(id, func(j *Job) {
		if !j.Status.Terminal() {
			j.Status = StatusFetching
		}
	})

	events := make(chan engine.ProgressEvent, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		o.consume(id, events)
	}()

	baseName := id + "_" + SanitizeFilename(title)
	path, err := o.fetcher.Fetch(context.Background(), url, spec, o.downloadDir, baseName, events)
	<-done

	if err != nil {
		log.Printf("job %s failed: %v", id, err)
		o.fail(id, engine.PublicMessage(err))
		return
	}
	o.complete(id, path)
}

// consume drains progress events, keeping only the latest snapshot and
// writing it to the store at most once per interval. A finished event moves
// the job to processing at 100% for the postprocessing gap.
func (o *Orchestrator) consume(id string, events <-chan engine.ProgressEvent) {
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	var latest engine.ProgressEvent
	var dirty bool
	var lastBytes int64
	lastAt := time.Now()

	flush := func() {
		pct := percent(latest.Downloaded, latest.Total)
		var speed float64
		if elapsed := time.Since(lastAt).Seconds(); elapsed > 0 {
			speed = float64(latest.Downloaded-lastBytes) / elapsed
		}
		var eta int
		if speed > 0 && latest.Total > latest.Downloaded {
			eta = int(float64(latest.Total-latest.Downloaded) / speed)
		}
		lastBytes, lastAt = latest.Downloaded, time.Now()

		o.store.Update(id, func(j *Job) {
			if j.Status != StatusFetching {
				return
			}
			if pct > j.ProgressPercent {
				j.ProgressPercent = pct
			}
			j.SpeedBPS = speed
			j.ETASeconds = eta
		})
	}

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				if dirty {
					flush()
				}
				return
			}
			if ev.Finished {
				dirty = false
				o.store.Update(id, func(j *Job) {
					if j.Status.Terminal() {
						return
					}
					j.Status = StatusProcessing
					j.ProgressPercent = 100
					j.SpeedBPS = 0
					j.ETASeconds = 0
				})
				continue
			}
			latest, dirty = ev, true
		case <-ticker.C:
			if dirty {
				flush()
				dirty = false
			}
		}
	}
}

// complete verifies the artifact on disk before declaring success. An
// engine that reports success without a usable file is treated as failed.
func (o *Orchestrator) complete(id, path string) {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		if found, ok := locateArtifact(o.downloadDir, id); ok {
			path = found
			info, err = os.Stat(path)
		}
	}
	if err != nil || info == nil || info.Size() == 0 {
		o.fail(id, "Download produced no file. Please try again.")
		return
	}

	filename := strings.TrimPrefix(filepath.Base(path), id+"_")
	size := info.Size()
	o.store.Update(id, func(j *Job) {
		if j.Status.Terminal() {
			return
		}
		j.Status = StatusCompleted
		j.ProgressPercent = 100
		j.SpeedBPS = 0
		j.ETASeconds = 0
		j.FilePath = path
		j.CompletedAt = time.Now()
		j.Result = &Result{
			Filename:    filename,
			SizeBytes:   size,
			SizeStr:     media.FormatFilesize(size),
			DownloadURL: "/api/file/" + id,
		}
	})
}

func (o *Orchestrator) fail(id, msg string) {
	o.store.Update(id, func(j *Job) {
		if j.Status.Terminal() {
			return
		}
		j.Status = StatusFailed
		j.Error = msg
		j.SpeedBPS = 0
		j.ETASeconds = 0
		j.CompletedAt = time.Now()
	})
}

func percent(downloaded, total int64) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(downloaded) / float64(total) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// locateArtifact finds a job's output file by its ID-prefixed name,
// preferring playable containers when several files match.
func locateArtifact(dir, id string) (string, bool) {
	matches, err := filepath.Glob(filepath.Join(dir, id+"_*"))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return extPriority(matches[i]) < extPriority(matches[j])
	})
	return matches[0], true
}

func extPriority(path string) int {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4":
		return 0
	case ".webm":
		return 1
	case ".m4a":
		return 2
	case ".mp3":
		return 3
	default:
		return 10
	}
}

// SanitizeFilename strips path separators and shell-hostile characters so a
// video title is safe as an artifact name.
func SanitizeFilename(name string) string {
	safe := strings.ReplaceAll(name, " ", "_")
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(`\/:*?"<>|`, r) {
			return -1
		}
		return r
	}, safe)
}
