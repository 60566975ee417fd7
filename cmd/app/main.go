// Film LUT Studio - interactive film-look grading with 3D LUTs.

package main

import (
	"flag"
	"log/slog"
	"os"

	"fyne.io/fyne/v2/app"
	"github.com/sirupsen/logrus"

	"film-lut-studio/internal/engine"
	"film-lut-studio/internal/gui"
	"film-lut-studio/internal/imgio"
)

const (
	AppName    = "Film LUT Studio"
	AppID      = "com.filmlutstudio.app"
	AppVersion = "1.0.0"
)

func main() {
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	lutDir := flag.String("luts", "luts", "Directory holding .cube LUT files")
	imagePath := flag.String("image", "", "Source image to grade")
	flag.Parse()

	logger := initLogger(*debugMode)
	logger.WithFields(logrus.Fields{
		"version":    AppVersion,
		"debug_mode": *debugMode,
		"lut_dir":    *lutDir,
	}).Info("Starting Film LUT Studio")

	slogger := initSlog(*debugMode)

	myApp := app.NewWithID(AppID)

	eng := engine.New(slogger)
	loader := imgio.NewLoader(slogger)

	mainApp := gui.NewApplication(myApp, slogger, eng, loader, *lutDir, *imagePath)
	mainApp.ShowAndRun()

	logger.Info("Application shutting down gracefully")
	os.Exit(0)
}

// initLogger initializes the process logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}

// initSlog builds the structured logger injected into internal
// components.
func initSlog(debugMode bool) *slog.Logger {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
