package delivery

import (
	"context"
	"path/filepath"
	"testing"
)

func TestMemoryGitSink(t *testing.T) {
	ctx := context.Background()
	sink, err := NewMemoryGitSink()
	if err != nil {
		t.Fatalf("NewMemoryGitSink failed: %v", err)
	}
	if _, err := sink.Latest("a.json"); err == nil {
		t.Fatal("expected error before the first backup")
	}

	first, err := sink.Deliver(ctx, "a.json", []byte("one"))
	if err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	second, err := sink.Deliver(ctx, "a.json", []byte("two"))
	if err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if first == second || len(first) != 40 {
		t.Fatalf("unexpected commit hashes %q %q", first, second)
	}

	data, err := sink.Latest("a.json")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if string(data) != "two" {
		t.Fatalf("unexpected latest payload %q", data)
	}
	history, err := sink.History("a.json")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 || history[0] != second || history[1] != first {
		t.Fatalf("unexpected history %v", history)
	}
}

func TestGitSinkReopen(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "repo")

	sink, err := NewSink(ctx, "git://"+dir, S3Config{})
	if err != nil {
		t.Fatalf("NewSink failed: %v", err)
	}
	if _, err := sink.Deliver(ctx, "b.json", []byte("payload")); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}

	reopened, err := OpenGitSink(dir)
	if err != nil {
		t.Fatalf("OpenGitSink failed: %v", err)
	}
	data, err := reopened.Latest("b.json")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected payload %q", data)
	}
	if _, err := reopened.Latest("missing.json"); err == nil {
		t.Fatal("expected missing file error")
	}
}
