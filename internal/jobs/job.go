package jobs

import "time"

// Status is the lifecycle state of a download job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusFetching   Status = "fetching"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Result describes the artifact of a completed job.
type Result struct {
	Filename    string `json:"filename"`
	SizeBytes   int64  `json:"filesize"`
	SizeStr     string `json:"filesize_str,omitempty"`
	DownloadURL string `json:"download_url"`
}

// Job is one download attempt. It is created queued, mutated only by the
// worker owning it (via the store), and removed by the sweeper after its
// retention window.
type Job struct {
	ID              string  `json:"job_id"`
	Title           string  `json:"title,omitempty"`
	Status          Status  `json:"status"`
	ProgressPercent float64 `json:"progress"`
	SpeedBPS        float64 `json:"speed,omitempty"`
	ETASeconds      int     `json:"eta,omitempty"`
	Result          *Result `json:"result,omitempty"`
	Error           string  `json:"error,omitempty"`

	FilePath    string    `json:"-"`
	CreatedAt   time.Time `json:"-"`
	CompletedAt time.Time `json:"-"`
}
