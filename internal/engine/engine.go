package engine

import (
	"context"

	"github.com/AnandRamasubramanian/youtube-downloader/internal/format"
	"github.com/AnandRamasubramanian/youtube-downloader/internal/media"
)

// ProgressEvent is one byte-count snapshot emitted by a fetch in flight.
// Finished marks the raw transfer as complete; postprocessing (mux or
// transcode) may still follow.
type ProgressEvent struct {
	Downloaded int64
	Total      int64 // 0 when unknown
	Finished   bool
}

// Extractor queries a source URL for its metadata and stream variants.
type Extractor interface {
	Extract(ctx context.Context, url string) (*media.VideoInfo, error)
}

// Fetcher executes a resolved FetchSpec. The artifact is written under
// destDir with baseName plus a container extension, and the final path is
// returned. Progress events stream over events, which the fetcher closes
// before returning.
type Fetcher interface {
	Fetch(ctx context.Context, url string, spec format.FetchSpec, destDir, baseName string, events chan<- ProgressEvent) (string, error)
}
