package engine

import (
	"context"
	"io"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/kkdai/youtube/v2"

	"github.com/AnandRamasubramanian/youtube-downloader/internal/ffmpeg"
	"github.com/AnandRamasubramanian/youtube-downloader/internal/format"
	"github.com/AnandRamasubramanian/youtube-downloader/internal/media"
)

// YouTube adapts github.com/kkdai/youtube/v2 to the Extractor and Fetcher
// contracts. The library handles protocol parsing and network transfer;
// this adapter translates its format records into StreamVariants and runs
// the mux/transcode postprocessing steps.
type YouTube struct {
	client     youtube.Client
	tempDir    string
	transcoder *ffmpeg.Transcoder
}

func NewYouTube(tempDir string, transcoder *ffmpeg.Transcoder) *YouTube {
	return &YouTube{
		tempDir:    tempDir,
		transcoder: transcoder,
	}
}

// Version identifies the extraction engine for the health endpoint.
func (y *YouTube) Version() string {
	return "github.com/kkdai/youtube/v2"
}

func (y *YouTube) Extract(ctx context.Context, url string) (*media.VideoInfo, error) {
	video, err := y.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, Classify(err)
	}

	info := &media.VideoInfo{
		ID:          video.ID,
		Title:       video.Title,
		Channel:     video.Author,
		DurationSec: int(video.Duration.Seconds()),
		ViewCount:   int64(video.Views),
	}
	if n := len(video.Thumbnails); n > 0 {
		info.Thumbnail = video.Thumbnails[n-1].URL
	}
	info.Variants = make([]media.StreamVariant, 0, len(video.Formats))
	for _, f := range video.Formats {
		info.Variants = append(info.Variants, variantFromFormat(f))
	}
	return info, nil
}

// variantFromFormat converts one engine format record into the fixed-shape
// StreamVariant the normalizer and selector rank on.
func variantFromFormat(f youtube.Format) media.StreamVariant {
	mediaType, codecs := parseMimeType(f.MimeType)

	v := media.StreamVariant{
		ID:            strconv.Itoa(f.ItagNo),
		Container:     containerFor(mediaType),
		Height:        f.Height,
		FPS:           f.FPS,
		FileSizeBytes: f.ContentLength,
	}

	kbps := float64(f.Bitrate) / 1000
	if f.AverageBitrate > 0 {
		kbps = float64(f.AverageBitrate) / 1000
	}
	v.TotalBitrateKbps = kbps

	if strings.HasPrefix(mediaType, "audio/") {
		if len(codecs) > 0 {
			v.AudioCodec = shortCodec(codecs[0])
		}
		v.AudioBitrateKbps = kbps
	} else {
		if len(codecs) > 0 {
			v.VideoCodec = shortCodec(codecs[0])
		}
		// Muxed formats list the audio codec second.
		if len(codecs) > 1 {
			v.AudioCodec = shortCodec(codecs[1])
		}
	}
	return v
}

// parseMimeType splits `video/mp4; codecs="avc1.640028, mp4a.40.2"` into
// its media type and codec list.
func parseMimeType(mimeType string) (string, []string) {
	mediaType, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return mimeType, nil
	}
	var codecs []string
	for _, c := range strings.Split(params["codecs"], ",") {
		if c = strings.TrimSpace(c); c != "" {
			codecs = append(codecs, c)
		}
	}
	return mediaType, codecs
}

// containerFor maps a media type to the conventional file extension.
// Audio in an mp4 container ships as m4a.
func containerFor(mediaType string) string {
	switch mediaType {
	case "audio/mp4":
		return "m4a"
	case "audio/webm":
		return "webm"
	}
	if _, sub, ok := strings.Cut(mediaType, "/"); ok {
		return sub
	}
	return mediaType
}

// shortCodec trims codec profile suffixes: "avc1.640028" -> "avc1".
func shortCodec(codec string) string {
	if base, _, ok := strings.Cut(codec, "."); ok {
		return base
	}
	return codec
}

// Fetch executes a FetchSpec against a fresh extraction of the source.
// Audio specs carry no target height; everything else is a video download.
func (y *YouTube) Fetch(ctx context.Context, url string, spec format.FetchSpec, destDir, baseName string, events chan<- ProgressEvent) (string, error) {
	defer close(events)

	video, err := y.client.GetVideoContext(ctx, url)
	if err != nil {
		return "", Classify(err)
	}

	if spec.TargetHeight == 0 {
		return y.fetchAudio(ctx, video, spec, destDir, baseName, events)
	}
	return y.fetchVideo(ctx, video, spec, destDir, baseName, events)
}

func (y *YouTube) fetchAudio(ctx context.Context, video *youtube.Video, spec format.FetchSpec, destDir, baseName string, events chan<- ProgressEvent) (string, error) {
	f := findByID(video.Formats, spec.PrimaryID)
	if f == nil {
		f = bestAudioFormat(video.Formats)
	}
	if f == nil {
		return "", &Error{Kind: FailNotFound, Message: "No audio track available for this video."}
	}

	ext := variantFromFormat(*f).Container
	rawPath := filepath.Join(destDir, baseName+"."+ext)
	tr := &tracker{total: f.ContentLength, events: events}

	if err := y.downloadFormat(ctx, video, f, rawPath, tr); err != nil {
		return "", Classify(err)
	}
	tr.finish()

	if spec.Transcode != nil && spec.Transcode.Container != ext {
		outPath := filepath.Join(destDir, baseName+"."+spec.Transcode.Container)
		if err := y.transcoder.ExtractAudio(ctx, rawPath, outPath, spec.Transcode.BitrateKbps); err != nil {
			return "", Classify(err)
		}
		os.Remove(rawPath)
		return verifyArtifact(outPath)
	}
	return verifyArtifact(rawPath)
}

func (y *YouTube) fetchVideo(ctx context.Context, video *youtube.Video, spec format.FetchSpec, destDir, baseName string, events chan<- ProgressEvent) (string, error) {
	vf := findByID(video.Formats, spec.PrimaryID)
	if vf == nil {
		// Fallback policy: best available at or below the target height.
		vf = bestAtOrBelow(video.Formats, spec.TargetHeight)
	}
	if vf == nil {
		return "", &Error{Kind: FailNotFound, Message: "No playable video stream found."}
	}

	var af *youtube.Format
	if !variantFromFormat(*vf).AudioCapable() {
		af = findByID(video.Formats, spec.MergeWithID)
		if af == nil {
			af = bestAudioFormat(video.Formats)
		}
		if af != nil && !y.transcoder.Available() {
			log.Printf("engine: no transcoder for mux of %s, delivering video-only", video.ID)
			af = nil
		}
	}

	if af == nil {
		outPath := filepath.Join(destDir, baseName+"."+variantFromFormat(*vf).Container)
		tr := &tracker{total: vf.ContentLength, events: events}
		if err := y.downloadFormat(ctx, video, vf, outPath, tr); err != nil {
			return "", Classify(err)
		}
		tr.finish()
		return verifyArtifact(outPath)
	}

	videoTemp := filepath.Join(y.tempDir, "v_"+baseName+".tmp")
	audioTemp := filepath.Join(y.tempDir, "a_"+baseName+".tmp")
	defer os.Remove(videoTemp)
	defer os.Remove(audioTemp)

	tr := &tracker{total: vf.ContentLength + af.ContentLength, events: events}

	var wg sync.WaitGroup
	var errV, errA error
	wg.Add(2)
	go func() {
		defer wg.Done()
		errV = y.downloadFormat(ctx, video, vf, videoTemp, tr)
	}()
	go func() {
		defer wg.Done()
		errA = y.downloadFormat(ctx, video, af, audioTemp, tr)
	}()
	wg.Wait()

	if errV != nil {
		return "", Classify(errV)
	}
	if errA != nil {
		return "", Classify(errA)
	}
	tr.finish()

	container := spec.OutputContainer
	if container == "" {
		container = format.PreferredContainer
	}
	outPath := filepath.Join(destDir, baseName+"."+container)
	if err := y.transcoder.Mux(ctx, videoTemp, audioTemp, outPath); err != nil {
		return "", Classify(err)
	}
	return verifyArtifact(outPath)
}

// downloadFormat streams one format to disk, reporting byte counts.
func (y *YouTube) downloadFormat(ctx context.Context, video *youtube.Video, f *youtube.Format, path string, tr *tracker) error {
	stream, _, err := y.client.GetStreamContext(ctx, video, f)
	if err != nil {
		return err
	}
	defer stream.Close()

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	buf := make([]byte, 32*1024)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			if _, werr := file.Write(buf[:n]); werr != nil {
				return werr
			}
			tr.add(n)
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

// verifyArtifact guards against the engine reporting success while leaving
// nothing usable on disk.
func verifyArtifact(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return "", &Error{Kind: FailArtifactMissing, Message: "Download produced no file. Please try again.", cause: err}
	}
	return path, nil
}

func findByID(formats youtube.FormatList, id string) *youtube.Format {
	if id == "" {
		return nil
	}
	for i, f := range formats {
		if strconv.Itoa(f.ItagNo) == id {
			return &formats[i]
		}
	}
	return nil
}

// bestAtOrBelow picks the highest-resolution video format not exceeding
// target, preferring audio-capable then higher-bitrate formats at equal
// height. When nothing fits below target it falls back to the best overall.
func bestAtOrBelow(formats youtube.FormatList, target int) *youtube.Format {
	pick := func(limit int) *youtube.Format {
		var best *youtube.Format
		var bestVariant media.StreamVariant
		for i, f := range formats {
			v := variantFromFormat(f)
			if !v.VideoCapable() || (limit > 0 && v.Height > limit) {
				continue
			}
			if best == nil || betterFallback(v, bestVariant) {
				best = &formats[i]
				bestVariant = v
			}
		}
		return best
	}
	if f := pick(target); f != nil {
		return f
	}
	return pick(0)
}

func betterFallback(a, b media.StreamVariant) bool {
	if a.Height != b.Height {
		return a.Height > b.Height
	}
	if a.AudioCapable() != b.AudioCapable() {
		return a.AudioCapable()
	}
	return a.TotalBitrateKbps > b.TotalBitrateKbps
}

// bestAudioFormat picks the audio-only format with the highest bitrate,
// preferring m4a on ties so mp4 muxes stay copy-compatible.
func bestAudioFormat(formats youtube.FormatList) *youtube.Format {
	var best *youtube.Format
	var bestVariant media.StreamVariant
	for i, f := range formats {
		v := variantFromFormat(f)
		if !v.AudioOnly() {
			continue
		}
		switch {
		case best == nil,
			v.AudioBitrateKbps > bestVariant.AudioBitrateKbps,
			v.AudioBitrateKbps == bestVariant.AudioBitrateKbps && v.Container == "m4a" && bestVariant.Container != "m4a":
			best = &formats[i]
			bestVariant = v
		}
	}
	return best
}

// tracker accumulates byte counts across parallel streams and forwards
// snapshots. Byte events are sent best-effort since the consumer throttles
// and only keeps the latest; the finish marker is always delivered.
type tracker struct {
	mu         sync.Mutex
	downloaded int64
	total      int64
	events     chan<- ProgressEvent
}

func (t *tracker) add(n int) {
	t.mu.Lock()
	t.downloaded += int64(n)
	ev := ProgressEvent{Downloaded: t.downloaded, Total: t.total}
	t.mu.Unlock()

	select {
	case t.events <- ev:
	default:
	}
}

func (t *tracker) finish() {
	t.mu.Lock()
	ev := ProgressEvent{Downloaded: t.downloaded, Total: t.total, Finished: true}
	t.mu.Unlock()
	t.events <- ev
}
