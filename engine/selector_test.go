package engine

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const testSchema = `CREATE TABLE IF NOT EXISTS items (id INTEGER PRIMARY KEY, name TEXT NOT NULL UNIQUE);`

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func failingOpener(calls *int32) Opener {
	return func(context.Context) (Engine, error) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		return nil, errors.New("plugin unavailable")
	}
}

func countingMemory(calls *int32, delay time.Duration) Opener {
	return func(ctx context.Context) (Engine, error) {
		atomic.AddInt32(calls, 1)
		time.Sleep(delay)
		return OpenMemory(ctx)
	}
}

// brokenEngine opens fine but cannot run the schema.
type brokenEngine struct{ closed bool }

func (b *brokenEngine) Kind() Kind { return KindNative }
func (b *brokenEngine) Run(context.Context, string, ...any) (sql.Result, error) {
	return nil, errors.New("broken")
}
func (b *brokenEngine) Execute(context.Context, string) error { return errors.New("disk I/O error") }
func (b *brokenEngine) Query(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errors.New("broken")
}
func (b *brokenEngine) Begin(context.Context) (*sql.Tx, error) { return nil, errors.New("broken") }
func (b *brokenEngine) Close() error                           { b.closed = true; return nil }

func TestSelectorFallsBackToMemory(t *testing.T) {
	var logs bytes.Buffer
	var nativeCalls int32
	s := NewSelector(
		WithSchema(testSchema),
		WithLogger(log.New(&logs, "", 0)),
		WithOpeners(failingOpener(&nativeCalls), nil),
	)
	defer s.Close()

	e, err := s.Initialize(context.Background())
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if e.Kind() != KindMemory {
		t.Fatalf("Kind() = %q, want %q", e.Kind(), KindMemory)
	}
	if nativeCalls != 1 {
		t.Fatalf("native opener calls = %d, want 1", nativeCalls)
	}
	if _, err := e.Run(context.Background(), `INSERT INTO items(name) VALUES ('a')`); err != nil {
		t.Fatalf("schema not applied: %v", err)
	}
	if !strings.Contains(logs.String(), "falling back to in-memory") {
		t.Fatalf("expected fallback log line, got %q", logs.String())
	}
}

func TestSelectorSchemaFailureFallsBack(t *testing.T) {
	broken := &brokenEngine{}
	s := NewSelector(
		WithSchema(testSchema),
		WithLogger(quietLogger()),
		WithOpeners(func(context.Context) (Engine, error) { return broken, nil }, nil),
	)
	defer s.Close()

	e, err := s.Initialize(context.Background())
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if e.Kind() != KindMemory {
		t.Fatalf("Kind() = %q, want %q", e.Kind(), KindMemory)
	}
	if !broken.closed {
		t.Fatal("expected the native engine to be closed after schema failure")
	}
}

func TestSelectorInitializeIsIdempotent(t *testing.T) {
	var memoryCalls int32
	s := NewSelector(
		WithMode(ModeMemory),
		WithLogger(quietLogger()),
		WithOpeners(nil, countingMemory(&memoryCalls, 0)),
	)
	defer s.Close()

	if _, ok := s.Engine(); ok {
		t.Fatal("expected no engine before Initialize")
	}
	first, err := s.Initialize(context.Background())
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	second, err := s.Initialize(context.Background())
	if err != nil {
		t.Fatalf("second Initialize failed: %v", err)
	}
	if first != second {
		t.Fatal("Initialize returned a different engine on the second call")
	}
	if memoryCalls != 1 {
		t.Fatalf("memory opener calls = %d, want 1", memoryCalls)
	}
	if live, ok := s.Engine(); !ok || live != first {
		t.Fatal("Engine() does not report the live engine")
	}
}

func TestSelectorConcurrentInitializeSharesOneAttempt(t *testing.T) {
	var memoryCalls int32
	s := NewSelector(
		WithMode(ModeMemory),
		WithLogger(quietLogger()),
		WithOpeners(nil, countingMemory(&memoryCalls, 20*time.Millisecond)),
	)
	defer s.Close()

	const callers = 16
	engines := make([]Engine, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := s.Initialize(context.Background())
			if err != nil {
				t.Errorf("Initialize failed: %v", err)
				return
			}
			engines[i] = e
		}(i)
	}
	wg.Wait()

	if n := atomic.LoadInt32(&memoryCalls); n != 1 {
		t.Fatalf("memory opener calls = %d, want 1", n)
	}
	for i := 1; i < callers; i++ {
		if engines[i] != engines[0] {
			t.Fatalf("caller %d received a different engine", i)
		}
	}
}

func TestSelectorBothEnginesFail(t *testing.T) {
	var nativeCalls, memoryCalls int32
	s := NewSelector(
		WithLogger(quietLogger()),
		WithOpeners(failingOpener(&nativeCalls), failingOpener(&memoryCalls)),
	)
	defer s.Close()

	_, err := s.Initialize(context.Background())
	if !errors.Is(err, ErrInitialization) {
		t.Fatalf("Initialize error = %v, want %v", err, ErrInitialization)
	}
	if !strings.Contains(err.Error(), "native: plugin unavailable") || !strings.Contains(err.Error(), "memory: plugin unavailable") {
		t.Fatalf("expected both causes in %q", err.Error())
	}

	// Failures are not cached: the next call tries again.
	if _, err := s.Initialize(context.Background()); err == nil {
		t.Fatal("expected second Initialize to fail")
	}
	if nativeCalls != 2 || memoryCalls != 2 {
		t.Fatalf("opener calls = native %d, memory %d; want 2 and 2", nativeCalls, memoryCalls)
	}
}

func TestSelectorNativeModeDoesNotFallBack(t *testing.T) {
	var memoryCalls int32
	s := NewSelector(
		WithMode(ModeNative),
		WithLogger(quietLogger()),
		WithOpeners(failingOpener(nil), countingMemory(&memoryCalls, 0)),
	)
	defer s.Close()

	if _, err := s.Initialize(context.Background()); !errors.Is(err, ErrInitialization) {
		t.Fatalf("Initialize error = %v, want %v", err, ErrInitialization)
	}
	if memoryCalls != 0 {
		t.Fatalf("memory opener calls = %d, want 0", memoryCalls)
	}
}

func TestSelectorMemoryModeSkipsNative(t *testing.T) {
	var nativeCalls int32
	s := NewSelector(
		WithMode(ModeMemory),
		WithLogger(quietLogger()),
		WithOpeners(failingOpener(&nativeCalls), nil),
	)
	defer s.Close()

	e, err := s.Initialize(context.Background())
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if e.Kind() != KindMemory {
		t.Fatalf("Kind() = %q, want %q", e.Kind(), KindMemory)
	}
	if nativeCalls != 0 {
		t.Fatalf("native opener calls = %d, want 0", nativeCalls)
	}
}

func TestSelectorClose(t *testing.T) {
	s := NewSelector(WithMode(ModeMemory), WithLogger(quietLogger()))
	if _, err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := s.Initialize(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("Initialize after Close error = %v, want %v", err, ErrClosed)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeAuto},
		{in: "auto", want: ModeAuto},
		{in: " Native ", want: ModeNative},
		{in: "MEMORY", want: ModeMemory},
		{in: "sqljs", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseMode(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMode(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
