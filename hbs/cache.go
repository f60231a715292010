package hbs

import (
	"bytes"
	"context"
	"encoding/gob"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// globalCache stores compiled programs keyed by source and options hash.
var globalCache sync.Map

// entry compiles its source at most once.
type entry struct {
	once sync.Once
	prog *Program
	err  error
}

// hashOptions encodes the options affecting compiler output using gob and
// hashes the result with xxh3.
func hashOptions(opts options) uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	_ = enc.Encode(opts.root)
	_ = enc.Encode(opts.collapse)

	return xxh3.Hash(buf.Bytes())
}

// CompileReader reads template source from r and compiles it.
//
// Results are cached by source content and options, so identical templates
// compile once even when requested from multiple goroutines. Each call
// returns its own copy of the program.
func CompileReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Program, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	return compileCached(ctx, string(data), opts...)
}

// compileCached compiles source, reusing a previous result for identical
// source and options.
func compileCached(
	ctx context.Context,
	source string,
	opts ...Option,
) (*Program, error) {
	o := makeOptions(opts...)

	sourceHash := xxh3.HashString(source)
	optsHash := hashOptions(o)
	key := strconv.FormatUint(sourceHash^optsHash, 36)

	value, hit := globalCache.LoadOrStore(key, new(entry))

	cached, ok := value.(*entry)
	if !ok {
		return nil, ErrReadInput.
			With(slog.String("issue", "invalid cache entry type"))
	}

	o.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("source_hash", strconv.FormatUint(sourceHash, 16)),
		slog.String("opts_hash", strconv.FormatUint(optsHash, 16)),
		slog.Bool("cache_hit", hit),
	)

	cached.once.Do(func() {
		cached.prog, cached.err = Compile(ctx, source, opts...)
	})

	if cached.err != nil {
		return nil, cached.err
	}

	return cached.prog.Clone(), nil
}

// ClearCache removes all cached programs.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	globalCache.Clear()
}
