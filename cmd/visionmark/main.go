package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/visionmark/visionmark/config"
	"github.com/visionmark/visionmark/internal/adminapi"
	"github.com/visionmark/visionmark/internal/app"
	"github.com/visionmark/visionmark/internal/site"
	"github.com/visionmark/visionmark/internal/webserver"
	"go.uber.org/zap"
)

var (
	conffile   = flag.String("c", "", "config yaml file")
	initdb     = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
	recompress = flag.Bool("recompress", false, "convert stored images to WebP, then exit")
	workers    = flag.Int("workers", runtime.NumCPU(), "worker count for -recompress")
	printConf  = flag.Bool("printconf", false, "print the effective config and exit")
)

func main() {
	flag.Parse()

	cfg := config.LoadConfig(*conffile)
	if *printConf {
		fmt.Printf("%+v\n", *cfg)
		return
	}

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *recompress {
		n, err := application.RecompressMedia(ctx, *workers)
		if err != nil {
			zap.S().Errorf("recompress media: %v", err)
			return
		}
		zap.S().Infof("recompressed %d images", n)
		return
	}

	webserver.Init(application)
	if err := site.Register(application); err != nil {
		zap.S().Fatalf("site templates: %v", err)
	}
	adminapi.Init()

	errCh := make(chan error, 1)
	go func() {
		errCh <- webserver.Listen()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			zap.S().Errorf("web server stopped: %v", err)
		}
	case <-ctx.Done():
		zap.S().Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := webserver.Shutdown(shutdownCtx); err != nil {
			zap.S().Errorf("shutdown: %v", err)
		}
	}
}
