//go:build linux

// Package evdev reads keyboards through the Linux input subsystem and
// submits their press and release transitions.
package evdev

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	evdev "github.com/holoplot/go-evdev"

	"github.com/Alia5/viashift/internal/bridge"
)

// InputDir is where the kernel creates event device nodes.
const InputDir = "/dev/input"

// Config is the evdev source flag group.
type Config struct {
	Enable  bool     `help:"Read keyboards from the Linux input subsystem" env:"VIASHIFT_EVDEV_ENABLE"`
	Devices []string `help:"Device nodes to open; empty opens every keyboard under /dev/input" env:"VIASHIFT_EVDEV_DEVICES"`
	Grab    bool     `help:"Grab devices exclusively so keystrokes do not reach other consumers" env:"VIASHIFT_EVDEV_GRAB"`
	Bypass  string   `help:"Skip devices whose name matches this regular expression" env:"VIASHIFT_EVDEV_BYPASS"`
	Watch   bool     `help:"Attach keyboards plugged in after startup" env:"VIASHIFT_EVDEV_WATCH"`
}

// reader is the part of an input device the read loop needs.
type reader interface {
	ReadOne() (*evdev.InputEvent, error)
}

// Source submits transitions from every attached keyboard.
type Source struct {
	cfg    Config
	op     bridge.Opener
	logger *slog.Logger
	bypass *regexp.Regexp

	mu      sync.Mutex
	devices map[string]*evdev.InputDevice
	wg      sync.WaitGroup
}

// New validates cfg and returns a source opening one bridge session per
// attached keyboard.
func New(cfg Config, op bridge.Opener, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Source{cfg: cfg, op: op, logger: logger.With("source", "evdev"), devices: make(map[string]*evdev.InputDevice)}
	if cfg.Bypass != "" {
		re, err := regexp.Compile(cfg.Bypass)
		if err != nil {
			return nil, fmt.Errorf("evdev bypass: %w", err)
		}
		s.bypass = re
	}
	return s, nil
}

// Run attaches the configured devices and reads them until ctx ends.
func (s *Source) Run(ctx context.Context) error {
	paths := s.cfg.Devices
	if len(paths) == 0 {
		found, err := evdev.ListDevicePaths()
		if err != nil {
			return fmt.Errorf("list input devices: %w", err)
		}
		for _, p := range found {
			paths = append(paths, p.Path)
		}
	}
	for _, p := range paths {
		if err := s.attach(ctx, p); err != nil {
			s.logger.Debug("device not attached", "path", p, "error", err)
		}
	}

	var watchErr error
	if s.cfg.Watch {
		watchErr = s.watch(ctx)
	} else {
		<-ctx.Done()
	}

	s.mu.Lock()
	for _, d := range s.devices {
		_ = d.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	return watchErr
}

var errSkipped = errors.New("skipped")

func (s *Source) attach(ctx context.Context, path string) error {
	s.mu.Lock()
	_, open := s.devices[path]
	s.mu.Unlock()
	if open {
		return nil
	}

	d, err := evdev.Open(path)
	if err != nil {
		return err
	}
	name, _ := d.Name()
	if s.bypass != nil && s.bypass.MatchString(name) {
		_ = d.Close()
		return fmt.Errorf("%w: bypass matches %q", errSkipped, name)
	}
	if !looksLikeKeyboard(d.CapableEvents(evdev.EV_KEY)) {
		_ = d.Close()
		return fmt.Errorf("%w: %q is not a keyboard", errSkipped, name)
	}
	if s.cfg.Grab {
		if err := d.Grab(); err != nil {
			_ = d.Close()
			return fmt.Errorf("grab %s: %w", path, err)
		}
	}

	s.mu.Lock()
	s.devices[path] = d
	s.mu.Unlock()
	s.logger.Info("keyboard attached", "path", path, "name", name, "grab", s.cfg.Grab)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		sess := s.op.Open("evdev " + path)
		err := readLoop(ctx, d, sess)
		_ = sess.Close()
		s.mu.Lock()
		delete(s.devices, path)
		s.mu.Unlock()
		_ = d.Close()
		if ctx.Err() == nil {
			s.logger.Info("keyboard detached", "path", path, "name", name, "error", err)
		}
	}()
	return nil
}

// readLoop submits transitions read from r until reading or submitting
// fails.
func readLoop(ctx context.Context, r reader, sub bridge.Submitter) error {
	for {
		ev, err := r.ReadOne()
		if err != nil {
			return err
		}
		t, ok := FromEvent(ev)
		if !ok {
			continue
		}
		if err := sub.Submit(ctx, t); err != nil {
			return err
		}
	}
}

func (s *Source) watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", InputDir, err)
	}
	defer w.Close()
	if err := w.Add(InputDir); err != nil {
		return fmt.Errorf("watch %s: %w", InputDir, err)
	}
	s.logger.Debug("watching for keyboards", "dir", InputDir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) || !isEventNode(ev.Name) {
				continue
			}
			if err := s.attach(ctx, ev.Name); err != nil {
				s.logger.Debug("device not attached", "path", ev.Name, "error", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("input watcher", "error", err)
		}
	}
}

func isEventNode(path string) bool {
	return strings.HasPrefix(filepath.Base(path), "event")
}

var _ reader = (*evdev.InputDevice)(nil)
