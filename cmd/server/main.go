package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/AnandRamasubramanian/youtube-downloader/internal/api"
	"github.com/AnandRamasubramanian/youtube-downloader/internal/config"
	"github.com/AnandRamasubramanian/youtube-downloader/internal/engine"
	"github.com/AnandRamasubramanian/youtube-downloader/internal/ffmpeg"
	"github.com/AnandRamasubramanian/youtube-downloader/internal/jobs"
	"github.com/AnandRamasubramanian/youtube-downloader/internal/server"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	if err := server.PrepareFilesystem(cfg); err != nil {
		log.Fatalf("error preparing filesystem: %v", err)
	}

	transcoder := ffmpeg.New(cfg.FFmpegDir, ffmpeg.NewCommandRunner())
	yt := engine.NewYouTube(cfg.TempDir, transcoder)

	store := jobs.NewStore()
	orchestrator := jobs.NewOrchestrator(store, yt, cfg)
	sweeper := jobs.NewSweeper(store, cfg)
	sweeper.Start()
	defer sweeper.Stop()

	handler := api.NewHandler(cfg, yt, orchestrator, store, sweeper, transcoder, yt.Version())
	router := api.NewRouter(handler, cfg)

	fmt.Println(">>> YouTube Downloader Server")
	fmt.Printf(">>> Engine: %s\n", yt.Version())
	fmt.Printf(">>> FFmpeg: %v\n", transcoder.Available())
	fmt.Printf(">>> Port: %s\n", cfg.Port)

	log.Fatal(router.Start(cfg.Port))
}
