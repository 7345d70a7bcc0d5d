package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnandRamasubramanian/youtube-downloader/internal/media"
)

func testVariants() []media.StreamVariant {
	return []media.StreamVariant{
		{ID: "137", Container: "mp4", VideoCodec: "avc1", Height: 1080, TotalBitrateKbps: 4000, FileSizeBytes: 400},
		{ID: "248", Container: "webm", VideoCodec: "vp9", Height: 1080, TotalBitrateKbps: 3200, FileSizeBytes: 350},
		{ID: "22", Container: "mp4", VideoCodec: "avc1", AudioCodec: "mp4a", Height: 720, TotalBitrateKbps: 1500, FileSizeBytes: 250},
		{ID: "136", Container: "mp4", VideoCodec: "avc1", Height: 720, TotalBitrateKbps: 2000, FileSizeBytes: 220},
		{ID: "140", Container: "m4a", AudioCodec: "mp4a", AudioBitrateKbps: 129, FileSizeBytes: 50},
		{ID: "251", Container: "webm", AudioCodec: "opus", AudioBitrateKbps: 160, FileSizeBytes: 60},
	}
}

func TestSelectVideoMergesWhenWinnerLacksAudio(t *testing.T) {
	spec := Select(testVariants(), TypeVideo, "1080", "", true)

	assert.Equal(t, "137", spec.PrimaryID)
	assert.Equal(t, "251", spec.MergeWithID) // highest-bitrate audio-only
	assert.Empty(t, spec.Fallback)
	assert.Equal(t, "mp4", spec.OutputContainer)
}

func TestSelectVideoNoMergeWhenWinnerHasAudio(t *testing.T) {
	spec := Select(testVariants(), TypeVideo, "720", "", true)

	// Muxed 720p outranks the higher-bitrate video-only variant.
	assert.Equal(t, "22", spec.PrimaryID)
	assert.Empty(t, spec.MergeWithID)
}

func TestSelectVideoFallbackOnMissingHeight(t *testing.T) {
	spec := Select(testVariants(), TypeVideo, "2160", "", true)

	assert.Empty(t, spec.PrimaryID)
	assert.Equal(t, "best[height<=2160]", spec.Fallback)
	assert.Equal(t, 2160, spec.TargetHeight)
}

func TestSelectVideoMalformedQualityDefaults(t *testing.T) {
	for _, quality := range []string{"", "abc", "-5", "4k"} {
		spec := Select(testVariants(), TypeVideo, quality, "", true)
		assert.Equal(t, 720, spec.TargetHeight, "quality %q", quality)
	}
}

func TestSelectVideoPrefersContainerOnTie(t *testing.T) {
	variants := []media.StreamVariant{
		{ID: "webm", Container: "webm", VideoCodec: "vp9", Height: 480, TotalBitrateKbps: 900},
		{ID: "mp4", Container: "mp4", VideoCodec: "avc1", Height: 480, TotalBitrateKbps: 900},
	}
	spec := Select(variants, TypeVideo, "480", "", true)
	assert.Equal(t, "mp4", spec.PrimaryID)
}

func TestSelectVideoNoAudioAnywhere(t *testing.T) {
	variants := []media.StreamVariant{
		{ID: "v", Container: "mp4", VideoCodec: "avc1", Height: 360, TotalBitrateKbps: 600},
	}
	spec := Select(variants, TypeVideo, "360", "", true)

	// Proceed video-only; the missing audio track is a limitation, not an error.
	assert.Equal(t, "v", spec.PrimaryID)
	assert.Empty(t, spec.MergeWithID)
}

func TestSelectAudioByVariantID(t *testing.T) {
	spec := Select(testVariants(), TypeAudio, "140", "", true)

	assert.Equal(t, "140", spec.PrimaryID)
	assert.Zero(t, spec.TargetHeight)
	assert.Nil(t, spec.Transcode)
}

func TestSelectAudioUnknownIDFallsBack(t *testing.T) {
	spec := Select(testVariants(), TypeAudio, "999", "", true)

	// First audio-only variant in raw order.
	assert.Equal(t, "140", spec.PrimaryID)
}

func TestSelectAudioNoAudioAtAllUsesEngineDefault(t *testing.T) {
	variants := []media.StreamVariant{
		{ID: "v", Container: "mp4", VideoCodec: "avc1", Height: 720},
	}
	spec := Select(variants, TypeAudio, "999", "", true)

	assert.Empty(t, spec.PrimaryID)
	assert.Equal(t, FallbackBestAudio, spec.Fallback)
}

func TestSelectAudioTranscodeUsesVariantBitrate(t *testing.T) {
	spec := Select(testVariants(), TypeAudio, "140", "mp3", true)

	require.NotNil(t, spec.Transcode)
	assert.Equal(t, "mp3", spec.Transcode.Container)
	assert.Equal(t, 129, spec.Transcode.BitrateKbps)
}

func TestSelectAudioTranscodeDefaultBitrate(t *testing.T) {
	variants := []media.StreamVariant{
		{ID: "a", Container: "m4a", AudioCodec: "mp4a"},
	}
	spec := Select(variants, TypeAudio, "a", "mp3", true)

	require.NotNil(t, spec.Transcode)
	assert.Equal(t, DefaultTranscodeBitrateKbps, spec.Transcode.BitrateKbps)
}

func TestSelectAudioNoTranscodeWhenContainerMatches(t *testing.T) {
	variants := []media.StreamVariant{
		{ID: "a", Container: "mp3", AudioCodec: "mp3", AudioBitrateKbps: 128},
	}
	spec := Select(variants, TypeAudio, "a", "mp3", true)
	assert.Nil(t, spec.Transcode)
}

func TestSelectAudioNoTranscodeWithoutTranscoder(t *testing.T) {
	spec := Select(testVariants(), TypeAudio, "140", "mp3", false)
	assert.Nil(t, spec.Transcode)
}
