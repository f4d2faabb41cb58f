package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	dashboard "github.com/goliatone/go-dashboard-prefs/components/dashboard"
)

// Drivers accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Driver   string
	Dir      string
	Path     string
	RedisURL string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the backend named by opts.Driver. The closer releases any
// connection the backend holds.
func Open(ctx context.Context, opts Options) (dashboard.Backend, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverMemory:
		return dashboard.NewMemoryBackend(), nopCloser{}, nil
	case DriverFile:
		backend, err := NewFileBackend(opts.Dir)
		if err != nil {
			return nil, nil, err
		}
		return backend, nopCloser{}, nil
	case DriverSQLite:
		backend, err := OpenSQLite(ctx, opts.Path)
		if err != nil {
			return nil, nil, err
		}
		return backend, backend, nil
	case DriverRedis:
		backend, client, err := OpenRedis(ctx, opts.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return backend, client, nil
	default:
		return nil, nil, fmt.Errorf("storage: unknown driver %q", opts.Driver)
	}
}
