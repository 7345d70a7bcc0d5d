package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	name string
	args []string
	out  []byte
	err  error
}

func (r *recordingRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.name = name
	r.args = args
	return r.out, r.err
}

func bundledTranscoder(t *testing.T, runner Runner) *Transcoder {
	t.Helper()
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffmpeg")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755))
	tr := New(dir, runner)
	require.True(t, tr.Available())
	return tr
}

func TestNewPrefersBundledBinary(t *testing.T) {
	tr := bundledTranscoder(t, &recordingRunner{})
	assert.Contains(t, tr.path, "ffmpeg")
}

func TestMuxArguments(t *testing.T) {
	runner := &recordingRunner{}
	tr := bundledTranscoder(t, runner)

	require.NoError(t, tr.Mux(context.Background(), "v.tmp", "a.tmp", "out.mp4"))

	assert.Equal(t, tr.path, runner.name)
	assert.Subset(t, runner.args, []string{"-i", "v.tmp", "a.tmp", "-c", "copy", "out.mp4"})
}

func TestExtractAudioArguments(t *testing.T) {
	runner := &recordingRunner{}
	tr := bundledTranscoder(t, runner)

	require.NoError(t, tr.ExtractAudio(context.Background(), "in.m4a", "out.mp3", 129))

	assert.Subset(t, runner.args, []string{"-vn", "-b:a", "129k", "out.mp3"})
}

func TestMuxReportsFfmpegOutput(t *testing.T) {
	runner := &recordingRunner{out: []byte("muxing failed hard"), err: errors.New("exit status 1")}
	tr := bundledTranscoder(t, runner)

	err := tr.Mux(context.Background(), "v", "a", "out.mp4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "muxing failed hard")
}

func TestUnavailableTranscoder(t *testing.T) {
	t.Setenv("PATH", t.TempDir()) // hide any system ffmpeg
	tr := New("", &recordingRunner{})

	assert.False(t, tr.Available())
	assert.Empty(t, tr.Version(context.Background()))
	assert.Error(t, tr.Mux(context.Background(), "v", "a", "o"))
	assert.Error(t, tr.ExtractAudio(context.Background(), "i", "o", 128))
}

func TestVersionFirstLine(t *testing.T) {
	runner := &recordingRunner{out: []byte("ffmpeg version 6.1\nbuilt with gcc\n")}
	tr := bundledTranscoder(t, runner)

	assert.Equal(t, "ffmpeg version 6.1", tr.Version(context.Background()))
}
