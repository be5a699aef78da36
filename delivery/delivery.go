package delivery

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Sink stores a named payload and reports where it went.
type Sink interface {
	Deliver(ctx context.Context, name string, payload []byte) (string, error)
}

// Source reads a payload back from a location.
type Source interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

type scheme string

const (
	schemeLocal scheme = "local"
	schemeFile  scheme = "file"
	schemeS3    scheme = "s3"
	schemeHTTP  scheme = "http"
	schemeHTTPS scheme = "https"
	schemeGit   scheme = "git"
)

func detectScheme(location string) scheme {
	lower := strings.ToLower(location)
	switch {
	case strings.HasPrefix(lower, "s3://"):
		return schemeS3
	case strings.HasPrefix(lower, "https://"):
		return schemeHTTPS
	case strings.HasPrefix(lower, "http://"):
		return schemeHTTP
	case strings.HasPrefix(lower, "file://"):
		return schemeFile
	case strings.HasPrefix(lower, "git://"):
		return schemeGit
	default:
		return schemeLocal
	}
}

// NewSink picks a sink for target: a directory path or file:// URL, an
// s3://bucket/prefix URL, or git://<dir> for a local repository.
func NewSink(ctx context.Context, target string, cfg S3Config) (Sink, error) {
	switch detectScheme(target) {
	case schemeLocal:
		return FileSink{Dir: target}, nil
	case schemeFile:
		return FileSink{Dir: target[len("file://"):]}, nil
	case schemeS3:
		return NewS3Sink(ctx, target, cfg)
	case schemeGit:
		return OpenGitSink(target[len("git://"):])
	default:
		return nil, fmt.Errorf("delivery: unsupported backup target %q", target)
	}
}

// Fetcher is a Source that reads local paths, file://, http(s):// and s3:// URLs.
type Fetcher struct {
	S3   S3Config
	HTTP *HTTPSource
}

// Fetch reads the whole payload at location.
func (f Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	switch detectScheme(location) {
	case schemeLocal:
		return readFile(location)
	case schemeFile:
		return readFile(location[len("file://"):])
	case schemeHTTP, schemeHTTPS:
		src := f.HTTP
		if src == nil {
			src = NewHTTPSource()
		}
		return src.Fetch(ctx, location)
	case schemeS3:
		return fetchS3(ctx, location, f.S3)
	default:
		return nil, fmt.Errorf("delivery: unsupported backup source %q", location)
	}
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read backup file: %w", err)
	}
	return data, nil
}
