package engine

import (
	"testing"

	"github.com/kkdai/youtube/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariantFromMuxedFormat(t *testing.T) {
	v := variantFromFormat(youtube.Format{
		ItagNo:        22,
		MimeType:      `video/mp4; codecs="avc1.64001F, mp4a.40.2"`,
		Height:        720,
		FPS:           30,
		Bitrate:       1500000,
		ContentLength: 250_000_000,
	})

	assert.Equal(t, "22", v.ID)
	assert.Equal(t, "mp4", v.Container)
	assert.Equal(t, "avc1", v.VideoCodec)
	assert.Equal(t, "mp4a", v.AudioCodec)
	assert.Equal(t, 720, v.Height)
	assert.True(t, v.VideoCapable())
	assert.True(t, v.AudioCapable())
	assert.InDelta(t, 1500, v.TotalBitrateKbps, 0.01)
	assert.Equal(t, int64(250_000_000), v.FileSizeBytes)
}

func TestVariantFromVideoOnlyFormat(t *testing.T) {
	v := variantFromFormat(youtube.Format{
		ItagNo:         248,
		MimeType:       `video/webm; codecs="vp9"`,
		Height:         1080,
		Bitrate:        3200000,
		AverageBitrate: 2900000,
	})

	assert.Equal(t, "webm", v.Container)
	assert.Equal(t, "vp9", v.VideoCodec)
	assert.True(t, v.VideoCapable())
	assert.False(t, v.AudioCapable())
	// AverageBitrate takes precedence when present.
	assert.InDelta(t, 2900, v.TotalBitrateKbps, 0.01)
}

func TestVariantFromAudioOnlyFormat(t *testing.T) {
	v := variantFromFormat(youtube.Format{
		ItagNo:   140,
		MimeType: `audio/mp4; codecs="mp4a.40.2"`,
		Bitrate:  129000,
	})

	assert.Equal(t, "m4a", v.Container)
	assert.Equal(t, "mp4a", v.AudioCodec)
	assert.True(t, v.AudioOnly())
	assert.Zero(t, v.Height)
	assert.InDelta(t, 129, v.AudioBitrateKbps, 0.01)
}

func TestBestAtOrBelow(t *testing.T) {
	formats := youtube.FormatList{
		{ItagNo: 137, MimeType: `video/mp4; codecs="avc1.640028"`, Height: 1080, Bitrate: 4000000},
		{ItagNo: 22, MimeType: `video/mp4; codecs="avc1.64001F, mp4a.40.2"`, Height: 720, Bitrate: 1500000},
		{ItagNo: 136, MimeType: `video/mp4; codecs="avc1.4d401f"`, Height: 720, Bitrate: 2000000},
		{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, Bitrate: 129000},
	}

	got := bestAtOrBelow(formats, 2160)
	require.NotNil(t, got)
	assert.Equal(t, 137, got.ItagNo, "highest resolution under the cap wins")

	got = bestAtOrBelow(formats, 720)
	require.NotNil(t, got)
	assert.Equal(t, 22, got.ItagNo, "audio-capable beats higher bitrate at equal height")

	got = bestAtOrBelow(formats, 480)
	require.NotNil(t, got)
	assert.Equal(t, 22, got.ItagNo, "nothing under the cap falls back to best overall")

	assert.Nil(t, bestAtOrBelow(youtube.FormatList{}, 720))
}

func TestBestAudioFormat(t *testing.T) {
	formats := youtube.FormatList{
		{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`, Bitrate: 160000},
		{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, Bitrate: 129000},
		{ItagNo: 22, MimeType: `video/mp4; codecs="avc1, mp4a"`, Height: 720, Bitrate: 1500000},
	}

	got := bestAudioFormat(formats)
	require.NotNil(t, got)
	assert.Equal(t, 251, got.ItagNo, "highest bitrate audio-only track wins")

	assert.Nil(t, bestAudioFormat(youtube.FormatList{
		{ItagNo: 137, MimeType: `video/mp4; codecs="avc1"`, Height: 1080},
	}))
}

func TestFindByID(t *testing.T) {
	formats := youtube.FormatList{
		{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a"`},
	}
	require.NotNil(t, findByID(formats, "140"))
	assert.Nil(t, findByID(formats, "999"))
	assert.Nil(t, findByID(formats, ""))
}

func TestContainerFor(t *testing.T) {
	assert.Equal(t, "m4a", containerFor("audio/mp4"))
	assert.Equal(t, "webm", containerFor("audio/webm"))
	assert.Equal(t, "mp4", containerFor("video/mp4"))
	assert.Equal(t, "webm", containerFor("video/webm"))
}
