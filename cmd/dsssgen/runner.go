package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dbehnke/dsssgen/internal/config"
	"github.com/dbehnke/dsssgen/internal/database"
	"github.com/dbehnke/dsssgen/internal/dsss"
	"github.com/dbehnke/dsssgen/internal/filter"
	"github.com/dbehnke/dsssgen/internal/iqfile"
	"github.com/dbehnke/dsssgen/internal/metrics"
	"github.com/dbehnke/dsssgen/internal/spectrum"
	"github.com/dbehnke/dsssgen/internal/stream"
)

// Spectrum analysis segment length and occupied-bandwidth power fraction
const (
	analyzerFFTSize  = 1024
	occupiedFraction = 0.99
)

// burst is one generated frame on its way to the output file
type burst struct {
	seq     int
	frame   []complex64
	header  []byte
	payload []byte
	elapsed time.Duration
}

// Runner generates the configured number of bursts on a pool of workers and
// writes them in sequence order to a single sample file.
type Runner struct {
	cfg     *config.Config
	proto   filter.Prototype
	header  []byte
	payload []byte

	out      *iqfile.Writer
	streamer *stream.Streamer
	analyzer *spectrum.Analyzer
	archive  *database.BurstRepository
	metrics  *metrics.Metrics

	log    *log.Logger
	genLog *log.Logger

	frames sync.Pool
	chunk  []complex64

	written    int
	maxPending int
}

// NewRunner prepares a run. header and payload may be nil for random content.
func NewRunner(cfg *config.Config, header, payload []byte, out *iqfile.Writer, archive *database.BurstRepository, m *metrics.Metrics, logger *log.Logger) (*Runner, error) {
	proto, err := filter.ParsePrototype(cfg.GetPrototype())
	if err != nil {
		return nil, err
	}
	if header != nil && len(header) != dsss.HeaderLen {
		return nil, fmt.Errorf("header must be %d bytes, got %d", dsss.HeaderLen, len(header))
	}
	if payload != nil && len(payload) != dsss.PayloadLen {
		return nil, fmt.Errorf("payload must be %d bytes, got %d", dsss.PayloadLen, len(payload))
	}

	frameLen := dsss.FrameLen(cfg.GetFilterDelay())
	streamer, err := stream.NewStreamer(frameLen, cfg.GetGapSamples(), 1)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:      cfg,
		proto:    proto,
		header:   header,
		payload:  payload,
		out:      out,
		streamer: streamer,
		archive:  archive,
		metrics:  m,
		log:      logger,
		genLog:   log.New(io.Discard, "", 0),
		chunk:    make([]complex64, cfg.GetChunkSamples()),
	}
	if cfg.GetLogDebug() {
		r.genLog = log.New(logger.Writer(), "[GEN] ", logger.Flags())
	}
	r.frames.New = func() any {
		return make([]complex64, frameLen)
	}

	if cfg.GetAnalyzeSpectrum() {
		if r.analyzer, err = spectrum.NewAnalyzer(analyzerFFTSize); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Run generates every burst or stops at the first error
func (r *Runner) Run(ctx context.Context) error {
	workers := r.cfg.GetWorkers()
	g, gctx := errgroup.WithContext(ctx)

	jobs := make(chan int)
	results := make(chan burst, workers)
	// a slot is held from dispatch until the burst is written, which caps
	// the frames waiting for reordering
	slots := make(chan struct{}, 2*workers)

	g.Go(func() error {
		defer close(jobs)
		for seq := 0; seq < r.cfg.GetBursts(); seq++ {
			select {
			case slots <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			select {
			case jobs <- seq:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			return r.work(gctx, jobs, results)
		})
	}
	g.Go(func() error {
		wg.Wait()
		close(results)
		return nil
	})

	g.Go(func() error {
		return r.collect(gctx, results, slots)
	})

	return g.Wait()
}

// work owns one generator and turns sequence numbers into frames
func (r *Runner) work(ctx context.Context, jobs <-chan int, results chan<- burst) error {
	gen, err := dsss.New(
		dsss.WithFilter(r.cfg.GetFilterDelay(), r.cfg.GetExcessBandwidth()),
		dsss.WithPrototype(r.proto),
		dsss.WithLogger(r.genLog),
	)
	if err != nil {
		r.metrics.ObserveError("create")
		return fmt.Errorf("failed to create generator: %w", err)
	}
	defer gen.Close()

	for seq := range jobs {
		start := time.Now()
		frame := r.frames.Get().([]complex64)

		if err := gen.Assemble(r.header, r.payload); err != nil {
			r.metrics.ObserveError("assemble")
			return fmt.Errorf("burst %d: %w", seq, err)
		}
		if _, err := gen.Write(frame); err != nil {
			r.metrics.ObserveError("write")
			return fmt.Errorf("burst %d: %w", seq, err)
		}

		b := burst{
			seq:     seq,
			frame:   frame,
			header:  gen.Header(),
			payload: gen.Payload(),
			elapsed: time.Since(start),
		}
		select {
		case results <- b:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// collect restores sequence order and emits each burst, freeing its slot
func (r *Runner) collect(ctx context.Context, results <-chan burst, slots <-chan struct{}) error {
	pending := make(map[int]burst)
	next := 0

	for b := range results {
		pending[b.seq] = b
		r.maxPending = max(r.maxPending, len(pending))
		for {
			p, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			if err := r.emit(p); err != nil {
				return err
			}
			<-slots
			next++
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) emit(b burst) error {
	defer r.frames.Put(b.frame)
	offset := r.out.Samples()

	if err := r.streamer.Push(b.frame); err != nil {
		r.metrics.ObserveError("stream")
		return fmt.Errorf("burst %d: %w", b.seq, err)
	}
	for {
		n, err := r.streamer.Read(r.chunk)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if err := r.out.WriteSamples(r.chunk[:n]); err != nil {
			r.metrics.ObserveError("output")
			return fmt.Errorf("burst %d: %w", b.seq, err)
		}
	}
	r.metrics.ObserveBurst(len(b.frame), b.elapsed)

	var report spectrum.Report
	if r.analyzer != nil {
		var err error
		if report, err = r.analyzer.Analyze(b.frame, occupiedFraction); err != nil {
			r.metrics.ObserveError("spectrum")
			return fmt.Errorf("burst %d: %w", b.seq, err)
		}
		r.metrics.ObserveSpectrum(report.PAPR, report.OccupiedBandwidth)
		r.log.Printf("Burst %d: %s", b.seq, report)
	}

	if r.archive != nil {
		rec := database.NewBurst(b.seq, b.header, b.payload)
		rec.FilterDelay = r.cfg.GetFilterDelay()
		rec.ExcessBandwidth = r.cfg.GetExcessBandwidth()
		rec.Prototype = r.proto.String()
		rec.Samples = len(b.frame)
		rec.File = r.cfg.GetOutputPath()
		rec.SampleOffset = offset
		rec.MeanPower = report.MeanPower
		rec.PAPR = report.PAPR
		rec.OccupiedBandwidth = report.OccupiedBandwidth
		if err := r.archive.Create(rec); err != nil {
			r.metrics.ObserveError("archive")
			return fmt.Errorf("burst %d: failed to archive: %w", b.seq, err)
		}
	}

	r.written++
	if r.cfg.GetLogDebug() {
		r.log.Printf("Burst %d written at sample %d, %d gap samples (%s)", b.seq, offset, r.streamer.Gap(), b.elapsed)
	}
	return nil
}

// Written returns the number of bursts written to the output
func (r *Runner) Written() int { return r.written }
