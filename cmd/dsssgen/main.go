package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/dbehnke/dsssgen/internal/config"
	"github.com/dbehnke/dsssgen/internal/database"
	"github.com/dbehnke/dsssgen/internal/dsss"
	"github.com/dbehnke/dsssgen/internal/iqfile"
	"github.com/dbehnke/dsssgen/internal/metrics"
)

const VERSION = "1.0.0"

func main() {
	var (
		configFile = pflag.StringP("config", "c", getDefaultConfig(), "Configuration file path")
		outPath    = pflag.StringP("out", "o", "", "Output sample file (overrides output.path)")
		bursts     = pflag.IntP("bursts", "n", 0, "Number of bursts to generate (overrides output.bursts)")
		workers    = pflag.IntP("workers", "w", 0, "Number of generator workers (overrides output.workers)")
		headerHex  = pflag.String("header", "", "Frame header as 16 hex digits, random when empty")
		payloadHex = pflag.String("payload", "", "Frame payload as 128 hex digits, random when empty")
		stats      = pflag.Bool("stats", false, "Measure the spectrum of every burst")
		version    = pflag.BoolP("version", "v", false, "Show version information")
	)
	pflag.Parse()

	if *version {
		fmt.Printf("dsssgen v%s\n", VERSION)
		return
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := loadConfig(*configFile, pflag.CommandLine.Changed("config"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *outPath != "" {
		cfg.SetOutputPath(*outPath)
	}
	if *bursts > 0 {
		cfg.SetBursts(*bursts)
	}
	if *workers > 0 {
		cfg.SetWorkers(*workers)
	}
	if *stats {
		cfg.SetAnalyzeSpectrum(true)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	header, err := parseHexField("header", *headerHex, dsss.HeaderLen)
	if err != nil {
		log.Fatalf("%v", err)
	}
	payload, err := parseHexField("payload", *payloadHex, dsss.PayloadLen)
	if err != nil {
		log.Fatalf("%v", err)
	}

	log.Printf("dsssgen v%s: %d burst(s) of %d samples to %s (m=%d, beta=%.2f, %s)",
		VERSION, cfg.GetBursts(), dsss.FrameLen(cfg.GetFilterDelay()), cfg.GetOutputPath(),
		cfg.GetFilterDelay(), cfg.GetExcessBandwidth(), cfg.GetPrototype())

	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	if err := run(ctx, cfg, header, payload); err != nil {
		log.Fatalf("Generation failed: %v", err)
	}
}

// run opens the outputs, generates every burst and closes the outputs again
func run(ctx context.Context, cfg *config.Config, header, payload []byte) error {
	m := metrics.New()
	defer func() {
		if path := cfg.GetMetricsTextfile(); path != "" {
			if err := m.WriteTextfile(path); err != nil {
				log.Printf("Warning: %v", err)
			}
		}
	}()

	var (
		db      *database.DB
		archive *database.BurstRepository
	)
	if cfg.GetArchiveEnabled() {
		var err error
		db, err = database.NewDB(database.Config{
			Path:  cfg.GetArchivePath(),
			Debug: cfg.GetArchiveDebug(),
		}, log.New(os.Stdout, "[DB] ", log.LstdFlags))
		if err != nil {
			return fmt.Errorf("failed to open burst archive: %w", err)
		}
		defer db.Close()
		if err := db.Health(); err != nil {
			return fmt.Errorf("burst archive is not healthy: %w", err)
		}

		archive = database.NewBurstRepository(db.GetDB())
		if n, err := archive.DeleteByFile(cfg.GetOutputPath()); err != nil {
			return fmt.Errorf("failed to clear archive for %s: %w", cfg.GetOutputPath(), err)
		} else if n > 0 {
			log.Printf("Removed %d stale archive record(s) for %s", n, cfg.GetOutputPath())
		}
	}

	out, err := iqfile.Create(cfg.GetOutputPath(), cfg.GetCompress())
	if err != nil {
		return err
	}

	runner, err := NewRunner(cfg, header, payload, out, archive, m, log.Default())
	if err != nil {
		out.Close()
		return err
	}

	start := time.Now()
	runErr := runner.Run(ctx)
	if err := out.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to close %s: %w", cfg.GetOutputPath(), err)
	}
	if runErr != nil {
		return runErr
	}

	elapsed := time.Since(start)
	log.Printf("Wrote %d burst(s), %d samples to %s in %s",
		runner.Written(), out.Samples(), cfg.GetOutputPath(), elapsed.Round(time.Millisecond))

	if archive != nil {
		if stats, err := archive.GetStatistics(); err == nil {
			log.Printf("Burst archive holds %v bursts, %v samples", stats["total_bursts"], stats["total_samples"])
		}
		if cfg.GetArchiveDebug() {
			s := db.Stats()
			log.Printf("Archive %s connections: open=%d in_use=%d idle=%d", db.Path(), s.OpenConnections, s.InUse, s.Idle)
		}
	}
	return nil
}

// loadConfig reads the configuration file. A missing default file is not an
// error, the built-in defaults apply instead.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	cfg := config.NewConfig(path)
	if _, err := os.Stat(path); err != nil && !explicit {
		return cfg, nil
	}
	if err := cfg.Load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseHexField decodes an optional fixed-length hex argument. Empty input
// yields nil so the generator draws random bytes.
func parseHexField(name, value string, size int) ([]byte, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	value = strings.TrimPrefix(strings.ToLower(value), "0x")
	b, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	if len(b) != size {
		return nil, fmt.Errorf("invalid %s: need %d bytes, got %d", name, size, len(b))
	}
	return b, nil
}

// getDefaultConfig returns the default configuration file path
func getDefaultConfig() string {
	// Check for config file in current directory first
	if _, err := os.Stat("dsssgen.yaml"); err == nil {
		return "dsssgen.yaml"
	}

	// Check system location
	systemConfig := "/etc/dsssgen.yaml"
	if _, err := os.Stat(systemConfig); err == nil {
		return systemConfig
	}

	// Default to current directory
	return "dsssgen.yaml"
}
