package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/asherp/go-for-launch/internal/engine"
	"github.com/asherp/go-for-launch/internal/playback"
	"github.com/asherp/go-for-launch/internal/server"
	"github.com/asherp/go-for-launch/internal/version"
	"github.com/asherp/go-for-launch/pkg/logger"
)

func init() {
	logger.Init()
}

func main() {
	// 1. Парсинг конфигурации
	var (
		recordingsDir string
		subject       string
		speed         float64
		loop          bool
		noCorrection  bool
		headless      bool
		ticks         int
	)
	flag.StringVar(&recordingsDir, "recordings", "recordings", "Directory with per-subject recording files")
	flag.StringVar(&subject, "subject", "player", "Live player's subject name")
	flag.Float64Var(&speed, "speed", 1.0, "Playback speed multiplier")
	flag.BoolVar(&loop, "loop", false, "Restart playback after it finishes")
	flag.BoolVar(&noCorrection, "no-correction", false, "Disable drift correction")
	flag.BoolVar(&headless, "headless", false, "Run a fixed number of simulation ticks and exit")
	flag.IntVar(&ticks, "ticks", 1200, "Tick count for headless mode")
	flag.Parse()

	logger.Log.Info("Starting replay engine...")
	logger.Log.Info(version.String())

	ctx := playback.SessionContext{
		PlayerSubject:     subject,
		RecordingsDir:     recordingsDir,
		Speed:             speed,
		CorrectionEnabled: !noCorrection,
		Loop:              loop,
	}
	service := engine.NewService(ctx, playback.NewConfig())

	// РЕЖИМ HEADLESS: прогнать симуляцию и напечатать точность
	if headless {
		logger.Log.Info("💿 Mode: Headless Replay")

		count, err := service.Orch.DiscoverAndSpawn()
		if err != nil {
			logger.Log.Fatal("Discovery failed:", err)
		}
		if count == 0 {
			logger.Log.Warn("No playable recordings found.")
			return
		}

		service.RunHeadless(ticks, 0.05)

		for subjectID, sum := range service.Orch.Summaries() {
			logger.ForSubject(subjectID).Infof(
				"Accuracy: avg=%.2fpx max=%.2fpx samples=%d",
				sum.Average, sum.Max, sum.Samples,
			)
		}
		return
	}

	port := os.Getenv("GFL_PORT")
	if port == "" {
		port = "8080"
	}

	// 2. Инициализация ядра
	if err := service.Start(); err != nil {
		logger.Log.Fatal("Service start error:", err)
	}

	// Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// 3. Запуск сервера
	srv := server.New(service, port)

	go func() {
		if err := srv.Run(); err != nil {
			logger.Log.Fatal("Server start error:", err)
		}
	}()

	<-stop
	logger.Log.Info("Shutting down...")

	service.Stop()

	// Открытый захват запечатывается и сохраняется
	if err := service.SaveCapture(); err != nil && !engine.ErrIsEmptyCapture(err) {
		logger.Log.WithError(err).Error("Capture save failed")
	}

	logger.Log.Info("Done.")
}
