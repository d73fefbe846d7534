package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"salon-agent/internal/actions"
	"salon-agent/internal/aftercall"
	"salon-agent/internal/ai"
	"salon-agent/internal/config"
	"salon-agent/internal/csvlog"
	"salon-agent/internal/datetime"
	"salon-agent/internal/logging"
	"salon-agent/internal/metrics"
	"salon-agent/internal/recorder"
	"salon-agent/internal/server"
	"salon-agent/internal/sheets"
	"salon-agent/internal/transcript"
)

func main() {
	err := config.Validate()
	if err != nil {
		logging.Logger.Fatal("invalid configuration", zap.String("error", err.Error()))
	}

	go metrics.Run()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	aiClient := ai.NewClient()

	sheetsClient, err := sheets.NewClient(ctx)
	if err != nil {
		logging.Logger.Fatal("failed to create sheets client", zap.String("error", err.Error()))
	}

	workerPool, err := ants.NewPool(config.Conf.RecorderPoolSize)
	if err != nil {
		logging.Logger.Fatal("failed to create recorder worker pool", zap.String("error", err.Error()))
	}
	defer workerPool.Release()

	rec := recorder.NewRecorder(csvlog.NewAppender(), sheetsClient, workerPool)
	pipeline := aftercall.NewPipeline(transcript.NewSummarizer(aiClient), rec)
	tools := actions.New(datetime.NewResolver(aiClient))

	srv := server.New(tools, pipeline)

	timeout := time.Duration(config.Conf.ServerTimeout) * time.Second
	httpServer := server.NewHTTPServer(":"+config.Conf.ServerPort, srv.Router(), timeout)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logging.Logger.Info("Starting server", zap.String("port", config.Conf.ServerPort))

		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		return httpServer.Shutdown(shutdownCtx)
	})

	err = group.Wait()
	if err != nil {
		logging.Logger.Fatal("server terminated", zap.String("error", err.Error()))
	}

	logging.Logger.Info("Shutdown complete")
}
