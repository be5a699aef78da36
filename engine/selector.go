package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Mode restricts which engines the selector may try.
type Mode string

const (
	// ModeAuto tries the native engine first and falls back to memory.
	ModeAuto Mode = "auto"
	// ModeNative only accepts the native engine.
	ModeNative Mode = "native"
	// ModeMemory skips the native engine entirely.
	ModeMemory Mode = "memory"
)

// ParseMode converts a configuration value into a Mode. Empty means ModeAuto.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeNative:
		return ModeNative, nil
	case ModeMemory:
		return ModeMemory, nil
	default:
		return "", fmt.Errorf("engine: unknown mode %q", value)
	}
}

// Opener acquires an engine.
type Opener func(ctx context.Context) (Engine, error)

// Selector picks the engine at first use and owns it afterwards.
type Selector struct {
	path   string
	mode   Mode
	schema string
	logger *log.Logger
	native Opener
	memory Opener

	group  singleflight.Group
	mu     sync.Mutex
	engine Engine
	closed bool
}

// Option configures a Selector.
type Option func(*Selector)

// WithPath sets the native database file location.
func WithPath(path string) Option {
	return func(s *Selector) { s.path = path }
}

// WithMode restricts engine selection.
func WithMode(mode Mode) Option {
	return func(s *Selector) { s.mode = mode }
}

// WithSchema sets the script applied to every freshly opened engine. It must
// be idempotent ("create if not exists").
func WithSchema(script string) Option {
	return func(s *Selector) { s.schema = script }
}

// WithLogger overrides the logger used to report engine selection.
func WithLogger(logger *log.Logger) Option {
	return func(s *Selector) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOpeners replaces the native and memory openers. A nil opener keeps the default.
func WithOpeners(native, memory Opener) Option {
	return func(s *Selector) {
		if native != nil {
			s.native = native
		}
		if memory != nil {
			s.memory = memory
		}
	}
}

// NewSelector creates a selector. No engine is opened until Initialize.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{mode: ModeAuto, logger: log.Default()}
	s.native = func(ctx context.Context) (Engine, error) { return OpenNative(ctx, s.path) }
	s.memory = func(ctx context.Context) (Engine, error) { return OpenMemory(ctx) }
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine returns the live engine without initializing one.
func (s *Selector) Engine() (Engine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine, s.engine != nil
}

// Initialize returns the live engine, selecting one on first call. Concurrent
// first callers share a single attempt. A failed attempt is not cached: after
// both engines fail, a later call tries both again instead of staying unusable.
func (s *Selector) Initialize(ctx context.Context) (Engine, error) {
	if e, ok, err := s.current(); err != nil || ok {
		return e, err
	}
	v, err, _ := s.group.Do("initialize", func() (any, error) {
		if e, ok, err := s.current(); err != nil || ok {
			return e, err
		}
		e, err := s.open(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			_ = e.Close()
			return nil, ErrClosed
		}
		s.engine = e
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Engine), nil
}

// Close tears down the live engine. Later calls to Initialize fail with ErrClosed.
func (s *Selector) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.engine == nil {
		return nil
	}
	err := s.engine.Close()
	s.engine = nil
	return err
}

func (s *Selector) current() (Engine, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	return s.engine, s.engine != nil, nil
}

func (s *Selector) open(ctx context.Context) (Engine, error) {
	var errs []error
	if s.mode != ModeMemory {
		e, err := s.prepare(ctx, s.native)
		if err == nil {
			s.logger.Printf("engine: using native database at %s", s.path)
			return e, nil
		}
		errs = append(errs, fmt.Errorf("native: %w", err))
		if s.mode == ModeNative {
			return nil, errors.Join(append([]error{ErrInitialization}, errs...)...)
		}
		s.logger.Printf("engine: native database unavailable, falling back to in-memory: %v", err)
	}
	e, err := s.prepare(ctx, s.memory)
	if err != nil {
		errs = append(errs, fmt.Errorf("memory: %w", err))
		return nil, errors.Join(append([]error{ErrInitialization}, errs...)...)
	}
	s.logger.Printf("engine: using in-memory database")
	return e, nil
}

func (s *Selector) prepare(ctx context.Context, open Opener) (Engine, error) {
	e, err := open(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(s.schema) == "" {
		return e, nil
	}
	if err := e.Execute(ctx, s.schema); err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return e, nil
}
