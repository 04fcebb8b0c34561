package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/lloyd/blobstore"
	"github.com/hupe1980/lloyd/history"
)

// SnapshotName is the blob name of the session snapshot inside a report.
const SnapshotName = "snapshot.json"

// Source is a clustering session that can be exported.
type Source interface {
	ID() string
	History() *history.History
	MarshalSnapshot() ([]byte, error)
}

// Recorder receives export metrics.
type Recorder interface {
	RecordExport(files int, bytes int64, duration time.Duration, err error)
}

// Options configures an Exporter.
type Options struct {
	// Prefix is the report directory. Empty means the session ID.
	Prefix string

	// Compression applies to CSV tables. The snapshot is always plain JSON.
	Compression Compression

	// Concurrency bounds the number of tables written at once.
	// Default: 4
	Concurrency int

	// Logger receives progress messages. Default: discard.
	Logger *slog.Logger

	// Recorder receives metrics. Default: none.
	Recorder Recorder
}

// Report describes a finished export.
type Report struct {
	Prefix   string
	Files    []string
	Bytes    int64
	Duration time.Duration
}

// Exporter writes reports into a blob store.
type Exporter struct {
	store blobstore.Store
	opts  Options
}

// New creates an Exporter writing to store.
func New(store blobstore.Store, optFns ...func(o *Options)) *Exporter {
	opts := Options{
		Concurrency: 4,
		Logger:      slog.New(slog.DiscardHandler),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	return &Exporter{store: store, opts: opts}
}

// IterationName returns the blob name of an iteration table.
func (e *Exporter) IterationName(iteration int) string {
	return fmt.Sprintf("iteration-%03d.csv%s", iteration, e.opts.Compression.Ext())
}

func (e *Exporter) prefix(src Source) string {
	if e.opts.Prefix != "" {
		return e.opts.Prefix
	}
	return src.ID()
}

// Export writes every recorded iteration and the snapshot. On error some
// blobs may already have been written.
func (e *Exporter) Export(ctx context.Context, src Source) (Report, error) {
	start := time.Now()
	prefix := e.prefix(src)
	hist := src.History()
	n := hist.Len()

	var (
		mu     sync.Mutex
		report = Report{Prefix: prefix}
	)
	add := func(name string, size int64) {
		mu.Lock()
		defer mu.Unlock()
		report.Files = append(report.Files, name)
		report.Bytes += size
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	for i := 1; i <= n; i++ {
		g.Go(func() error {
			name := path.Join(prefix, e.IterationName(i))
			size, err := e.writeTable(gctx, hist, name, i)
			if err != nil {
				return fmt.Errorf("export iteration %d: %w", i, err)
			}
			add(name, size)
			return nil
		})
	}

	g.Go(func() error {
		data, err := src.MarshalSnapshot()
		if err != nil {
			return err
		}
		name := path.Join(prefix, SnapshotName)
		if err := e.store.Put(gctx, name, data); err != nil {
			return fmt.Errorf("export snapshot: %w", err)
		}
		add(name, int64(len(data)))
		return nil
	})

	err := g.Wait()

	sort.Strings(report.Files)
	report.Duration = time.Since(start)

	if e.opts.Recorder != nil {
		e.opts.Recorder.RecordExport(len(report.Files), report.Bytes, report.Duration, err)
	}
	if err != nil {
		e.opts.Logger.ErrorContext(ctx, "export failed", "prefix", prefix, "error", err)
		return report, err
	}

	e.opts.Logger.InfoContext(ctx, "export completed",
		"prefix", prefix,
		"files", len(report.Files),
		"bytes", report.Bytes,
		"compression", e.opts.Compression.String(),
	)
	return report, nil
}

// ExportIteration writes the table of a single iteration and returns its name.
func (e *Exporter) ExportIteration(ctx context.Context, src Source, iteration int) (string, error) {
	name := path.Join(e.prefix(src), e.IterationName(iteration))
	if _, err := e.writeTable(ctx, src.History(), name, iteration); err != nil {
		return "", err
	}
	return name, nil
}

func (e *Exporter) writeTable(ctx context.Context, hist *history.History, name string, iteration int) (int64, error) {
	if e.opts.Compression == CompressionNone {
		data, err := hist.ExportCSV(iteration)
		if err != nil {
			return 0, err
		}
		return int64(len(data)), e.store.Put(ctx, name, data)
	}

	// Validate before opening an upload.
	if _, err := hist.Get(iteration); err != nil {
		return 0, err
	}

	blob, err := e.store.Create(ctx, name)
	if err != nil {
		return 0, err
	}

	cw := &countingWriter{w: blob}
	if err := e.streamTable(cw, hist, iteration); err != nil {
		_ = blob.Abort()
		return 0, err
	}
	if err := blob.Close(); err != nil {
		return 0, err
	}
	return cw.n, nil
}

func (e *Exporter) streamTable(w io.Writer, hist *history.History, iteration int) error {
	zw, err := NewWriter(w, e.opts.Compression)
	if err != nil {
		return err
	}
	if err := hist.WriteCSV(zw, iteration); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
