package ffmpeg

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Transcoder locates and drives the ffmpeg binary. A bundled folder takes
// precedence over the system PATH; when neither holds a binary the server
// still runs, with merge and conversion features disabled.
type Transcoder struct {
	runner Runner
	path   string
}

// New resolves the ffmpeg binary, preferring bundledDir when it holds an
// executable ffmpeg, then falling back to PATH lookup.
func New(bundledDir string, runner Runner) *Transcoder {
	t := &Transcoder{runner: runner}

	if bundledDir != "" {
		candidate := filepath.Join(bundledDir, "ffmpeg")
		if info, err := os.Stat(candidate); err == nil && info.Mode()&0o111 != 0 {
			t.path = candidate
		}
	}
	if t.path == "" {
		if p, err := exec.LookPath("ffmpeg"); err == nil {
			t.path = p
		}
	}

	if t.path == "" {
		log.Println("ffmpeg not available, merge and audio conversion disabled")
	} else {
		log.Printf("ffmpeg ready at %s", t.path)
	}
	return t
}

// Available reports whether an ffmpeg binary was found.
func (t *Transcoder) Available() bool {
	return t.path != ""
}

// Version returns the first line of `ffmpeg -version`, or "" when
// unavailable or unresponsive.
func (t *Transcoder) Version(ctx context.Context) string {
	if !t.Available() {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	out, err := t.runner.Run(ctx, t.path, "-version")
	if err != nil {
		return ""
	}
	if line, _, ok := strings.Cut(string(out), "\n"); ok {
		return strings.TrimSpace(line)
	}
	return strings.TrimSpace(string(out))
}

// Mux copies a video-only and an audio-only stream into one container
// without re-encoding.
func (t *Transcoder) Mux(ctx context.Context, videoPath, audioPath, outPath string) error {
	if !t.Available() {
		return fmt.Errorf("mux %s: ffmpeg not available", filepath.Base(outPath))
	}
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", videoPath,
		"-i", audioPath,
		"-c", "copy",
		outPath,
	}
	if out, err := t.runner.Run(ctx, t.path, args...); err != nil {
		return fmt.Errorf("mux %s: %s", filepath.Base(outPath), strings.TrimSpace(string(out)))
	}
	return nil
}

// ExtractAudio re-encodes the audio track of inPath into outPath at the
// given bitrate, dropping any video stream.
func (t *Transcoder) ExtractAudio(ctx context.Context, inPath, outPath string, bitrateKbps int) error {
	if !t.Available() {
		return fmt.Errorf("transcode %s: ffmpeg not available", filepath.Base(outPath))
	}
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", inPath,
		"-vn",
		"-b:a", fmt.Sprintf("%dk", bitrateKbps),
		outPath,
	}
	if out, err := t.runner.Run(ctx, t.path, args...); err != nil {
		return fmt.Errorf("transcode %s: %s", filepath.Base(outPath), strings.TrimSpace(string(out)))
	}
	return nil
}
