package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docfides/parsing-service/internal/api"
	"github.com/docfides/parsing-service/internal/config"
	"github.com/docfides/parsing-service/internal/docparse"
	"github.com/docfides/parsing-service/internal/extract"
	"github.com/docfides/parsing-service/internal/ocr"
	"github.com/docfides/parsing-service/internal/pdfpage"
	"github.com/docfides/parsing-service/internal/preprocess"
	"github.com/docfides/parsing-service/internal/sheet"
	"github.com/docfides/parsing-service/internal/tables"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	langs := cfg.Languages()
	pipeline := &docparse.Pipeline{
		PrimaryOCR:   ocr.NewTesseract(langs...),
		FallbackOCR:  ocr.NewLSTM(langs...),
		Preprocessor: preprocess.Chain{},
		ImageTables:  &tables.ImageDetector{Languages: langs},
		PDFTables:    &tables.PDFDetector{},
		Rasterizer: &pdfpage.Renderer{
			DPI:            cfg.RasterDPI,
			MutoolFallback: cfg.RasterFallbackMutool,
			Log:            log,
		},
		Text: &extract.Service{
			FallbackPdftotext: cfg.PDFFallbackPdftotext,
			Log:               log,
		},
		Sheets:     sheet.Reader{},
		DocxTables: extract.TableWalker{},
		Log:        log,
	}

	srv := api.NewServer(pipeline, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting parsing service", "port", cfg.Port, "version", api.Version)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
