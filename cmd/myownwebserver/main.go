package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/ShazimR/myownwebserver/internal/config"
	"github.com/ShazimR/myownwebserver/internal/fileserver"
	"github.com/ShazimR/myownwebserver/internal/logfile"
	"github.com/ShazimR/myownwebserver/internal/router"
	"github.com/ShazimR/myownwebserver/internal/server"
)

func run(args []string) int {
	cfg, cfgErr := config.FromArgs(args)

	logPath := cfg.LogFile
	if logPath == "" {
		logPath = logfile.DefaultPath
	}
	maxSize, _ := cfg.LogSizeLimit()

	lg, err := logfile.Open(logPath, logfile.WithConsole(os.Stderr), logfile.WithMaxSize(maxSize))
	if err != nil {
		log.Printf("error opening log: %v", err)
		return 1
	}
	defer lg.Close()

	lg.Startup("pid=%d, log=%s", os.Getpid(), logPath)
	if maxSize > 0 {
		lg.Startup("log rotates at %s", humanize.Bytes(uint64(maxSize)))
	}

	if cfgErr == nil {
		cfgErr = cfg.Validate()
	}
	if cfgErr != nil {
		lg.Error("%v. Usage Example: %s", cfgErr, config.Usage)
		return 1
	}

	files, err := fileserver.New(cfg.Root, lg)
	if err != nil {
		lg.Error("%v", err)
		return 1
	}
	rt := router.NewRouter()
	rt.GET("/", files.Handler)

	s, err := server.Listen(cfg, rt.Serve, lg)
	if err != nil {
		lg.Error("%v", err)
		return 1
	}
	lg.ServerStart("%s", cfg)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		_ = s.Close()
	}()

	if err := s.Serve(); !errors.Is(err, server.ErrServerClosed) {
		return 1
	}
	log.Println("Server gracefully stopped")
	return 0
}

func main() {
	os.Exit(run(os.Args[1:]))
}
