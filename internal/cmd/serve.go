package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Alia5/viashift/internal/bridge"
	"github.com/Alia5/viashift/internal/configpaths"
	"github.com/Alia5/viashift/internal/log"
	"github.com/Alia5/viashift/internal/server/api"
	"github.com/Alia5/viashift/internal/server/api/auth"
	"github.com/Alia5/viashift/internal/server/api/handler"
	"github.com/Alia5/viashift/line"
	"github.com/Alia5/viashift/shifter"
	"github.com/Alia5/viashift/source/evdev"
	"github.com/Alia5/viashift/source/serial"
)

// Version is reported by the ping route. Set with -ldflags at build time.
var Version = "dev"

type Serve struct {
	Shifter shifter.Config   `embed:"" group:"shifter"`
	Lines   line.Config      `embed:"" prefix:"lines." group:"lines"`
	Api     api.ServerConfig `embed:"" prefix:"api." group:"api"`
	Evdev   evdev.Config     `embed:"" prefix:"evdev." group:"evdev"`
	Serial  serial.Config    `embed:"" prefix:"serial." group:"serial"`
}

// Run is called by Kong when the serve command is executed.
func (s *Serve) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Start(ctx, logger, rawLogger)
}

type source interface {
	Run(ctx context.Context) error
}

// Start runs until ctx ends or a component fails. Lines are released before
// it returns.
func (s *Serve) Start(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	external := shifter.Mode(s.Shifter.Mode) == shifter.ModeExternal
	lines, err := openLines(s.Lines, external, logger)
	if err != nil {
		return err
	}
	sh, err := shifter.New(s.Shifter, lines, shifter.Options{Logger: logger, Raw: rawLogger})
	if err != nil {
		return err
	}
	defer func() {
		if err := sh.Shutdown(); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	br := bridge.New(sh, logger)
	var wg sync.WaitGroup
	errCh := make(chan error, 4)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = br.Run(ctx)
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	var sources []source
	if s.Evdev.Enable {
		src, err := evdev.New(s.Evdev, br, logger)
		if err != nil {
			return err
		}
		sources = append(sources, src)
	}
	if s.Serial.Port != "" {
		sources = append(sources, serial.New(s.Serial, br, logger, rawLogger))
	}
	for _, src := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := src.Run(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	if s.Api.Addr != "" {
		if err := s.resolvePassword(logger); err != nil {
			return err
		}
		apiSrv, err := api.New(s.Api, logger)
		if err != nil {
			return err
		}
		r := apiSrv.Router()
		r.Register("ping", handler.Ping(Version))
		r.Register("status", handler.Status(sh))
		r.Register("table", handler.Table(sh.Table()))
		r.Register("type", handler.Type(br))
		r.RegisterStream("keys", handler.KeyStream(br, rawLogger))
		if err := apiSrv.Start(); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}
		defer apiSrv.Close()
	}

	if len(sources) == 0 && s.Api.Addr == "" {
		return errors.New("nothing to serve: enable --evdev.enable, --serial.port or --api.addr")
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		return nil
	case err := <-errCh:
		logger.Error("event source failed", "error", err)
		return err
	}
}

// resolvePassword loads the API password from the key file, creating one
// when authentication is required and none is configured.
func (s *Serve) resolvePassword(logger *slog.Logger) error {
	if s.Api.Password != "" || !s.Api.RequireAuth {
		return nil
	}
	path, err := configpaths.KeyFilePath()
	if err != nil {
		return fmt.Errorf("failed to resolve key file path: %w", err)
	}
	if err := configpaths.EnsureDir(path); err != nil {
		return fmt.Errorf("failed to create config dir for key file: %w", err)
	}
	pwd, created, err := auth.LoadOrCreateKeyFile(path)
	if err != nil {
		return err
	}
	s.Api.Password = pwd
	if created {
		logger.Info("Generated API server password", "path", path)
		logger.Info("-------------------------------------")
		logger.Info("Your viashift API server password is:")
		logger.Info(pwd)
		logger.Info("-------------------------------------")
		logger.Info("You can change this password at any time by editing the file")
	}
	return nil
}
