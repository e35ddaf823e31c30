package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/saturnino-fabrica-de-software/facecap/internal/camera"
	"github.com/saturnino-fabrica-de-software/facecap/internal/config"
	"github.com/saturnino-fabrica-de-software/facecap/internal/detect"
	"github.com/saturnino-fabrica-de-software/facecap/internal/kiosk"
	"github.com/saturnino-fabrica-de-software/facecap/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting capture kiosk",
		slog.String("environment", cfg.Environment),
		slog.String("detect_url", cfg.DetectURL),
		slog.Int("port", cfg.KioskPort),
	)

	cam := newCamera(cfg)

	detector := detect.NewClient(detect.Config{
		BaseURL:       cfg.DetectURL,
		Timeout:       cfg.DetectTimeout,
		MaxImageBytes: 10 * 1024 * 1024,
	})

	notifications := session.NewNotificationCenter(cfg.NotificationTTL)
	sess := session.New(logger, cam, detector, notifications)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Probe the camera up front so the first snapshot already reflects
	// the permission outcome. A denial is terminal but not fatal; the
	// kiosk still serves its state.
	if err := sess.Acquire(ctx); err != nil {
		logger.Warn("camera not available at startup", slog.Any("error", err))
	}

	router := kiosk.NewRouter(logger, sess)
	router.Setup()

	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.KioskPort)
		logger.Info("kiosk listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down kiosk...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	<-shutdownCtx.Done()
	logger.Info("kiosk stopped")

	return nil
}

// newCamera selects the capture device: a snapshot camera when one is
// configured, a static test frame otherwise.
func newCamera(cfg *config.Config) camera.Camera {
	if cfg.CameraURL == "" {
		return camera.NewStatic(placeholderFrame(cfg.CameraWidth, cfg.CameraHeight))
	}
	snapCfg := camera.DefaultSnapshotConfig()
	snapCfg.BaseURL = cfg.CameraURL
	snapCfg.Constraints = camera.Constraints{
		Width:     cfg.CameraWidth,
		Height:    cfg.CameraHeight,
		FrameRate: cfg.CameraFrameRate,
	}
	return camera.NewSnapshot(snapCfg)
}

// placeholderFrame renders a flat gray JPEG so the kiosk can run end to
// end without a physical camera.
func placeholderFrame(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 64, G: 64, B: 64, A: 255}), image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return nil
	}
	return buf.Bytes()
}
