package cli

import (
	"fmt"
	"os"
	"runtime/pprof"
	"sync"
)

// StartCPUProfile begins writing a CPU profile to path. The returned stop
// function is safe to call more than once.
func StartCPUProfile(path string) (func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, err
	}
	var once sync.Once
	stop := func() {
		once.Do(func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		})
	}
	return stop, nil
}

// WithCPUProfile runs fn, profiling it into path when path is non-empty. The
// profile is flushed before WithCPUProfile returns, whatever fn returned.
func WithCPUProfile(path string, fn func() error) error {
	if path == "" {
		return fn()
	}
	stop, err := StartCPUProfile(path)
	if err != nil {
		return fmt.Errorf("cpu profile: %w", err)
	}
	defer stop()
	return fn()
}
