// Package debug holds environment driven debug switches and helpers for
// inspecting normalized trees.
package debug

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
)

type debug struct {
	Codec  bool
	Stream bool
	Cache  bool
}

var (
	mu  sync.RWMutex
	d   *debug
	out io.Writer = os.Stderr
)

func init() {
	d = &debug{}
	d.Codec = boolEnv("YT_DEBUG_CODEC")
	d.Stream = boolEnv("YT_DEBUG_STREAM")
	d.Cache = boolEnv("YT_DEBUG_CACHE")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

// Codec reports whether codec node construction is traced.
func Codec() bool {
	mu.RLock()
	defer mu.RUnlock()
	return d.Codec
}

// Stream reports whether binary stream headers and decoded nodes are
// traced.
func Stream() bool {
	mu.RLock()
	defer mu.RUnlock()
	return d.Stream
}

// Cache reports whether caching codec hits and misses are traced.
func Cache() bool {
	mu.RLock()
	defer mu.RUnlock()
	return d.Cache
}

// Override sets every switch and sends trace output to w until the
// returned function is called. Meant for tests.
func Override(codec, stream, cache bool, w io.Writer) (restore func()) {
	mu.Lock()
	prev, prevOut := d, out
	d, out = &debug{Codec: codec, Stream: stream, Cache: cache}, w
	mu.Unlock()
	return func() {
		mu.Lock()
		d, out = prev, prevOut
		mu.Unlock()
	}
}

func output() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return out
}

// Logf writes a debug line to the trace output, stderr by default.
func Logf(format string, args ...any) {
	fmt.Fprintf(output(), "yt: "+format+"\n", args...)
}
