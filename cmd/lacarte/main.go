package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/lacarte-io/lacarte/config"
	"github.com/lacarte-io/lacarte/internal/api"
	"github.com/lacarte-io/lacarte/internal/app"
	"github.com/lacarte-io/lacarte/internal/webserver"
)

var (
	h        = flag.Bool("h", false, "help usage")
	showVer  = flag.Bool("v", false, "show version")
	conffile = flag.String("c", "", "config yaml file")
	initdb   = flag.Bool("initdb", false, "drop and recreate the database schema")
)

var (
	BuildVersion = "latest"
	ReleaseDate  = "unknown"
)

func printVersion() {
	fmt.Printf("lacarte %s (%s)\n", BuildVersion, ReleaseDate)
}

func main() {
	flag.Parse()
	if *h {
		flag.Usage()
		return
	}
	if *showVer {
		printVersion()
		return
	}

	_ = godotenv.Load()

	cfg := config.LoadConfig(*conffile)
	cfg.InitDirs()

	application := app.NewApplication(cfg)
	if err := application.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.L().Info("database initialized")
		return
	}

	webserver.Init(application, cfg)
	api.Register(api.Deps{
		Catalog:   application.Catalog(),
		Analytics: application.Analytics(),
		Auth:      application.Auth(),
		Settings:  application.Settings(),
		Debounce:  application.Debounce(),
	})

	errch := make(chan error, 1)
	go func() {
		errch <- webserver.Listen()
	}()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errch:
		zap.L().Error("web server stopped", zap.Error(err))
	case sig := <-sigch:
		zap.L().Info("shutting down", zap.String("signal", sig.String()))
		webserver.Shutdown()
	}
}
