package api

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/AnandRamasubramanian/youtube-downloader/internal/config"
	"github.com/AnandRamasubramanian/youtube-downloader/internal/engine"
	"github.com/AnandRamasubramanian/youtube-downloader/internal/ffmpeg"
	"github.com/AnandRamasubramanian/youtube-downloader/internal/format"
	"github.com/AnandRamasubramanian/youtube-downloader/internal/jobs"
	"github.com/AnandRamasubramanian/youtube-downloader/internal/media"
)

type Handler struct {
	cfg           *config.Config
	extractor     engine.Extractor
	orchestrator  *jobs.Orchestrator
	store         *jobs.Store
	sweeper       *jobs.Sweeper
	transcoder    *ffmpeg.Transcoder
	cache         *format.Cache
	engineVersion string
}

func NewHandler(cfg *config.Config, extractor engine.Extractor, orchestrator *jobs.Orchestrator, store *jobs.Store, sweeper *jobs.Sweeper, transcoder *ffmpeg.Transcoder, engineVersion string) *Handler {
	return &Handler{
		cfg:           cfg,
		extractor:     extractor,
		orchestrator:  orchestrator,
		store:         store,
		sweeper:       sweeper,
		transcoder:    transcoder,
		cache:         format.NewCache(cfg.InfoCacheTTL),
		engineVersion: engineVersion,
	}
}

type infoRequest struct {
	URL string `json:"url"`
}

type downloadRequest struct {
	URL        string `json:"url"`
	FormatType string `json:"format_type"`
	Quality    string `json:"quality"`
	ConvertTo  string `json:"convert_to,omitempty"`
}

type videoMeta struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Thumbnail   string `json:"thumbnail"`
	Duration    int    `json:"duration"`
	DurationStr string `json:"duration_str"`
	Channel     string `json:"channel"`
	ViewCount   int64  `json:"view_count"`
}

type videoFormat struct {
	FormatID    string  `json:"format_id"`
	Height      int     `json:"height"`
	Resolution  string  `json:"resolution"`
	Ext         string  `json:"ext"`
	Filesize    int64   `json:"filesize"`
	FilesizeStr string  `json:"filesize_str,omitempty"`
	HasAudio    bool    `json:"has_audio"`
	Vcodec      string  `json:"vcodec"`
	Acodec      string  `json:"acodec,omitempty"`
	FPS         int     `json:"fps"`
	TBR         float64 `json:"tbr"`
}

type audioFormat struct {
	FormatID    string  `json:"format_id"`
	Ext         string  `json:"ext"`
	ABR         float64 `json:"abr"`
	ABRRounded  int     `json:"abr_rounded"`
	ABRStr      string  `json:"abr_str"`
	Filesize    int64   `json:"filesize"`
	FilesizeStr string  `json:"filesize_str,omitempty"`
	Acodec      string  `json:"acodec"`
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]any{"success": false, "error": msg})
}

// Info extracts a source video's metadata and normalized format lists.
func (h *Handler) Info(c echo.Context) error {
	var req infoRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid JSON")
	}
	url := strings.TrimSpace(req.URL)
	if err := ValidateURL(url); err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	info, set, ok := h.cache.Get(url)
	if !ok {
		extracted, err := h.extractor.Extract(c.Request().Context(), url)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, engine.PublicMessage(err))
		}
		info = *extracted
		set = format.Normalize(info.Variants)
		h.cache.Put(url, info, set)
	}

	videoList := make([]videoFormat, 0, len(set.Video))
	for _, v := range set.Video {
		videoList = append(videoList, videoFormat{
			FormatID:    v.ID,
			Height:      v.Height,
			Resolution:  strconv.Itoa(v.Height) + "p",
			Ext:         v.Container,
			Filesize:    v.FileSizeBytes,
			FilesizeStr: media.FormatFilesize(v.FileSizeBytes),
			HasAudio:    v.AudioCapable(),
			Vcodec:      v.VideoCodec,
			Acodec:      v.AudioCodec,
			FPS:         v.FPS,
			TBR:         v.TotalBitrateKbps,
		})
	}
	audioList := make([]audioFormat, 0, len(set.Audio))
	for _, a := range set.Audio {
		rounded := format.RoundBitrate(a.AudioBitrateKbps)
		audioList = append(audioList, audioFormat{
			FormatID:    a.ID,
			Ext:         a.Container,
			ABR:         a.AudioBitrateKbps,
			ABRRounded:  rounded,
			ABRStr:      strconv.Itoa(rounded) + " kbps",
			Filesize:    a.FileSizeBytes,
			FilesizeStr: media.FormatFilesize(a.FileSizeBytes),
			Acodec:      a.AudioCodec,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"info": videoMeta{
			ID:          info.ID,
			Title:       info.Title,
			Thumbnail:   info.Thumbnail,
			Duration:    info.DurationSec,
			DurationStr: media.FormatDuration(info.DurationSec),
			Channel:     info.Channel,
			ViewCount:   info.ViewCount,
		},
		"formats": map[string]any{
			"video": videoList,
			"audio": audioList,
		},
	})
}

// Download resolves the quality request into a FetchSpec and enqueues an
// asynchronous job. The filename and filesize in the response are predicted
// from the selected variants; the progress endpoint carries final values.
func (h *Handler) Download(c echo.Context) error {
	var req downloadRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid JSON")
	}
	url := strings.TrimSpace(req.URL)
	if err := ValidateURL(url); err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	formatType := format.TypeVideo
	if req.FormatType == string(format.TypeAudio) {
		formatType = format.TypeAudio
	}
	convertTo := ""
	if formatType == format.TypeAudio && req.ConvertTo == "mp3" {
		convertTo = "mp3"
	}

	info, err := h.extractor.Extract(c.Request().Context(), url)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, engine.PublicMessage(err))
	}

	spec := format.Select(info.Variants, formatType, req.Quality, convertTo, h.transcoder.Available())
	log.Printf("download request: type=%s quality=%q primary=%q merge=%q fallback=%q",
		formatType, req.Quality, spec.PrimaryID, spec.MergeWithID, spec.Fallback)

	job := h.orchestrator.Start(url, info, spec)

	filename, filesize := predictArtifact(info, spec, formatType)
	return c.JSON(http.StatusAccepted, map[string]any{
		"success":      true,
		"job_id":       job.ID,
		"filename":     filename,
		"filesize":     media.FormatFilesize(filesize),
		"download_url": "/api/file/" + job.ID,
	})
}

// predictArtifact estimates the output name and size from the resolved spec.
func predictArtifact(info *media.VideoInfo, spec format.FetchSpec, formatType format.FormatType) (string, int64) {
	var primary, merge media.StreamVariant
	for _, v := range info.Variants {
		if v.ID == spec.PrimaryID {
			primary = v
		}
		if spec.MergeWithID != "" && v.ID == spec.MergeWithID {
			merge = v
		}
	}

	ext := primary.Container
	switch {
	case formatType == format.TypeAudio && spec.Transcode != nil:
		ext = spec.Transcode.Container
	case formatType == format.TypeAudio && ext == "":
		ext = "m4a"
	case formatType == format.TypeVideo && (spec.MergeWithID != "" || spec.PrimaryID == ""):
		ext = spec.OutputContainer
	}

	return jobs.SanitizeFilename(info.Title) + "." + ext, primary.FileSizeBytes + merge.FileSizeBytes
}

// Progress returns a job snapshot. An evicted or never-known job answers
// with status "unknown".
func (h *Handler) Progress(c echo.Context) error {
	job, ok := h.store.Get(c.Param("job_id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]any{"status": "unknown"})
	}
	return c.JSON(http.StatusOK, job)
}

// File streams a completed job's artifact and schedules its removal after
// the serve grace period. Expired artifacts 404; they are not regenerated.
func (h *Handler) File(c echo.Context) error {
	job, ok := h.store.Get(c.Param("job_id"))
	if !ok {
		return errorJSON(c, http.StatusNotFound, "Not found")
	}
	if job.Status != jobs.StatusCompleted || job.Result == nil {
		return errorJSON(c, http.StatusBadRequest, "Download not ready")
	}
	if _, err := os.Stat(job.FilePath); err != nil {
		return errorJSON(c, http.StatusNotFound, "File expired")
	}

	h.sweeper.ScheduleRemoval(job.FilePath)
	return c.Attachment(job.FilePath, job.Result.Filename)
}

// Health reports service liveness and collaborator availability.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":               "healthy",
		"transcoder_available": h.transcoder.Available(),
		"engine_version":       h.engineVersion,
	})
}
