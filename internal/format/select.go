package format

import (
	"fmt"
	"log"
	"sort"
	"strconv"

	"github.com/AnandRamasubramanian/youtube-downloader/internal/media"
)

const (
	// PreferredContainer breaks ties between otherwise equal video variants
	// and is the fixed output container for merged downloads.
	PreferredContainer = "mp4"

	// DefaultHeight is used when the requested video quality is malformed.
	DefaultHeight = 720

	// DefaultTranscodeBitrateKbps is the transcode target when the selected
	// variant's own bitrate is unknown.
	DefaultTranscodeBitrateKbps = 192

	// FallbackBestAudio is the engine's own best-audio selection expression.
	FallbackBestAudio = "bestaudio"
)

// FormatType distinguishes a video download from an audio-only download.
type FormatType string

const (
	TypeVideo FormatType = "video"
	TypeAudio FormatType = "audio"
)

// AudioTranscode directs the engine to re-encode fetched audio.
type AudioTranscode struct {
	Container   string
	BitrateKbps int
}

// FetchSpec is the exact download instruction resolved from a quality request.
// Either PrimaryID names a concrete variant, or Fallback carries an engine
// selection expression for the one path where exact resolution is relaxed.
type FetchSpec struct {
	PrimaryID       string
	MergeWithID     string
	Fallback        string
	TargetHeight    int
	OutputContainer string
	Transcode       *AudioTranscode
}

// Select resolves a user quality request against the raw variant list.
// For video, quality is a target height; for audio it is a variant ID from
// the most recent normalization. Selection never fails on a missing match;
// it degrades to a fallback expression instead.
func Select(variants []media.StreamVariant, formatType FormatType, quality, convertTo string, transcoderAvailable bool) FetchSpec {
	if formatType == TypeAudio {
		return selectAudio(variants, quality, convertTo, transcoderAvailable)
	}
	return selectVideo(variants, quality)
}

func selectVideo(variants []media.StreamVariant, quality string) FetchSpec {
	target, err := strconv.Atoi(quality)
	if err != nil || target <= 0 {
		target = DefaultHeight
	}

	var matches []media.StreamVariant
	for _, v := range variants {
		if v.VideoCapable() && v.Height == target {
			matches = append(matches, v)
		}
	}

	spec := FetchSpec{
		TargetHeight:    target,
		OutputContainer: PreferredContainer,
	}

	if len(matches) == 0 {
		// No exact match at this height: delegate to the engine's own
		// best-at-or-below selection rather than failing.
		spec.Fallback = fmt.Sprintf("best[height<=%d]", target)
		log.Printf("selector: no exact %dp match, degrading to %s", target, spec.Fallback)
		return spec
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return betterExactMatch(matches[i], matches[j])
	})
	winner := matches[0]
	spec.PrimaryID = winner.ID

	if !winner.AudioCapable() {
		if audio, ok := bestAudioOnly(variants); ok {
			spec.MergeWithID = audio.ID
		}
		// No audio-only variant at all: proceed video-only. The output
		// simply has no audio track; this is a documented limitation.
	}
	return spec
}

// betterExactMatch ranks exact-height matches by
// (audio-capable, total bitrate, preferred container, file size) descending.
func betterExactMatch(a, b media.StreamVariant) bool {
	if a.AudioCapable() != b.AudioCapable() {
		return a.AudioCapable()
	}
	if a.TotalBitrateKbps != b.TotalBitrateKbps {
		return a.TotalBitrateKbps > b.TotalBitrateKbps
	}
	aPref, bPref := a.Container == PreferredContainer, b.Container == PreferredContainer
	if aPref != bPref {
		return aPref
	}
	return a.FileSizeBytes > b.FileSizeBytes
}

// bestAudioOnly returns the audio-only variant with the highest bitrate.
func bestAudioOnly(variants []media.StreamVariant) (media.StreamVariant, bool) {
	var best media.StreamVariant
	found := false
	for _, v := range variants {
		if !v.AudioOnly() {
			continue
		}
		if !found || v.AudioBitrateKbps > best.AudioBitrateKbps {
			best = v
			found = true
		}
	}
	return best, found
}

func selectAudio(variants []media.StreamVariant, variantID, convertTo string, transcoderAvailable bool) FetchSpec {
	selected, found := lookupVariant(variants, variantID)
	if !found {
		// Stale cache or tampered input: fall back to the first audio-only
		// variant in raw order.
		for _, v := range variants {
			if v.AudioOnly() {
				selected, found = v, true
				break
			}
		}
	}

	var spec FetchSpec
	if found {
		spec.PrimaryID = selected.ID
	} else {
		spec.Fallback = FallbackBestAudio
	}

	// Only propose a transcode when a transcoder exists and the variant's
	// container does not already match the requested output.
	if convertTo != "" && transcoderAvailable && (!found || selected.Container != convertTo) {
		bitrate := DefaultTranscodeBitrateKbps
		if found && selected.AudioBitrateKbps > 0 {
			bitrate = int(selected.AudioBitrateKbps)
		}
		spec.Transcode = &AudioTranscode{
			Container:   convertTo,
			BitrateKbps: bitrate,
		}
	}
	return spec
}

func lookupVariant(variants []media.StreamVariant, id string) (media.StreamVariant, bool) {
	if id == "" {
		return media.StreamVariant{}, false
	}
	for _, v := range variants {
		if v.ID == id {
			return v, true
		}
	}
	return media.StreamVariant{}, false
}
