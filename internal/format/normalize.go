package format

import (
	"sort"

	"github.com/AnandRamasubramanian/youtube-downloader/internal/media"
)

const (
	// MinVideoHeight is the smallest resolution worth offering.
	MinVideoHeight = 144
	// MinAudioBitrateKbps filters out speech-grade audio tracks.
	MinAudioBitrateKbps = 48
)

// bitrateLadder holds the standard audio bitrates variants are bucketed into.
var bitrateLadder = []int{64, 96, 128, 160, 192, 256, 320}

// CandidateSet holds the deduplicated, ranked variants for one source:
// one video entry per height (height descending) and one audio entry per
// (container, rounded bitrate) bucket (raw bitrate descending).
type CandidateSet struct {
	Video []media.StreamVariant
	Audio []media.StreamVariant
}

type audioBucket struct {
	container   string
	bitrateKbps int
}

// Normalize dedupes a raw variant list into ranked video and audio candidates.
//
// Video variants group by height; the survivor per height maximizes
// (audio-capable, total bitrate, file size) lexicographically. Audio-only
// variants group by (container, rounded bitrate); the survivor is the one
// with the larger file size. A list with nothing passing the filters yields
// an empty candidate list, not an error.
func Normalize(variants []media.StreamVariant) CandidateSet {
	videoByHeight := make(map[int]media.StreamVariant)
	audioByBucket := make(map[audioBucket]media.StreamVariant)

	for _, v := range variants {
		switch {
		case v.VideoCapable():
			if v.Height < MinVideoHeight {
				continue
			}
			cur, ok := videoByHeight[v.Height]
			if !ok || betterVideo(v, cur) {
				videoByHeight[v.Height] = v
			}
		case v.AudioCapable():
			if v.AudioBitrateKbps < MinAudioBitrateKbps {
				continue
			}
			key := audioBucket{v.Container, RoundBitrate(v.AudioBitrateKbps)}
			cur, ok := audioByBucket[key]
			if !ok || v.FileSizeBytes > cur.FileSizeBytes {
				audioByBucket[key] = v
			}
		}
	}

	set := CandidateSet{
		Video: make([]media.StreamVariant, 0, len(videoByHeight)),
		Audio: make([]media.StreamVariant, 0, len(audioByBucket)),
	}
	for _, v := range videoByHeight {
		set.Video = append(set.Video, v)
	}
	for _, a := range audioByBucket {
		set.Audio = append(set.Audio, a)
	}
	sort.SliceStable(set.Video, func(i, j int) bool {
		return set.Video[i].Height > set.Video[j].Height
	})
	sort.SliceStable(set.Audio, func(i, j int) bool {
		return set.Audio[i].AudioBitrateKbps > set.Audio[j].AudioBitrateKbps
	})
	return set
}

// betterVideo reports whether a strictly outranks b at the same height.
// The incumbent wins ties, which keeps selection stable across input orders.
func betterVideo(a, b media.StreamVariant) bool {
	if a.AudioCapable() != b.AudioCapable() {
		return a.AudioCapable()
	}
	if a.TotalBitrateKbps != b.TotalBitrateKbps {
		return a.TotalBitrateKbps > b.TotalBitrateKbps
	}
	return a.FileSizeBytes > b.FileSizeBytes
}

// RoundBitrate snaps a raw audio bitrate to the nearest ladder value.
// Equidistant bitrates round down (the ladder is scanned ascending and a
// later value must be strictly closer to win).
func RoundBitrate(abr float64) int {
	best := bitrateLadder[0]
	bestDiff := absDiff(abr, best)
	for _, step := range bitrateLadder[1:] {
		if d := absDiff(abr, step); d < bestDiff {
			best, bestDiff = step, d
		}
	}
	return best
}

func absDiff(abr float64, step int) float64 {
	d := abr - float64(step)
	if d < 0 {
		return -d
	}
	return d
}
