package server

import (
	"os"

	"github.com/AnandRamasubramanian/youtube-downloader/internal/config"
)

// PrepareFilesystem creates the artifact, temp, and ffmpeg directories
func PrepareFilesystem(cfg *config.Config) error {
	dirs := []string{cfg.DownloadDir, cfg.TempDir, cfg.FFmpegDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
