package media

// CodecNone is the sentinel extractors use for an absent codec track.
const CodecNone = "none"

// StreamVariant is one concrete encoding of a source video: a specific
// resolution/bitrate/codec/container combination offered by the extractor.
type StreamVariant struct {
	ID               string  // opaque, unique per source within a query
	Container        string  // "mp4", "webm", "m4a", ...
	VideoCodec       string  // empty or CodecNone when absent
	AudioCodec       string  // empty or CodecNone when absent
	Height           int     // pixels, 0 for audio-only
	FPS              int
	AudioBitrateKbps float64 // 0 when unknown
	TotalBitrateKbps float64 // 0 when unknown
	FileSizeBytes    int64   // approximate, 0 when unknown
}

// VideoCapable reports whether the variant carries a video track.
func (v StreamVariant) VideoCapable() bool {
	return v.VideoCodec != "" && v.VideoCodec != CodecNone
}

// AudioCapable reports whether the variant carries an audio track.
func (v StreamVariant) AudioCapable() bool {
	return v.AudioCodec != "" && v.AudioCodec != CodecNone
}

// AudioOnly reports whether the variant is an audio track without video.
func (v StreamVariant) AudioOnly() bool {
	return v.AudioCapable() && !v.VideoCapable()
}

// VideoInfo is the metadata and variant list for one source video.
type VideoInfo struct {
	ID          string
	Title       string
	Thumbnail   string
	Channel     string
	DurationSec int
	ViewCount   int64
	Variants    []StreamVariant
}
