// Command goodtime runs guest programs against the region-based heap.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chazu/maggie/internal/config"
	"github.com/chazu/maggie/internal/guest"
	"github.com/chazu/maggie/pkg/heap"
	"github.com/chazu/maggie/pkg/heap/archive"
	"github.com/chazu/maggie/pkg/heap/snapshot"
	"github.com/chazu/maggie/pkg/heap/telemetry"
)

// openTraceOutput resolves a trace.output config value to a writer:
// "", "-" or "stderr" means os.Stderr (no close needed), anything else is
// treated as a file path to create/truncate. The returned close func
// is always safe to call.
func openTraceOutput(output string) (io.Writer, func(), error) {
	if output == "" || output == "-" || output == "stderr" {
		return os.Stderr, func() {}, nil
	}
	f, err := os.Create(output)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func main() {
	trace := flag.Bool("trace", false, "Enable allocator/GC trace output")
	configPath := flag.String("config", "", "Directory to search for goodtime.toml (defaults to the current directory)")
	withArchive := flag.Bool("archive", false, "Save a snapshot to the SQLite archive after the run")
	withTelemetry := flag.Bool("telemetry", false, "Record GC cycle stats to the DuckDB telemetry log")
	archiveLabel := flag.String("archive-label", "run", "Label to save the archived snapshot under")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: goodtime run [options] <source-file>\n\n")
		fmt.Fprintf(os.Stderr, "Runs a guest program against a fresh region-based heap.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  goodtime run program.gt\n")
		fmt.Fprintf(os.Stderr, "  goodtime run --trace --archive program.gt\n")
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 || args[0] != "run" {
		flag.Usage()
		os.Exit(2)
	}
	// Options may also follow the "run" subcommand.
	flag.CommandLine.Parse(args[1:])
	args = flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(2)
	}
	sourcePath := args[0]

	dir := *configPath
	if dir == "" {
		dir = "."
	}
	cfg, err := config.FindAndLoad(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "goodtime: loading config: %v\n", err)
		os.Exit(1)
	}

	var tracer *heap.Tracer
	if (*trace || cfg.Trace.Enabled) && cfg.Trace.Output != "off" {
		w, closeTrace, err := openTraceOutput(cfg.Trace.Output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "goodtime: opening trace output: %v\n", err)
			os.Exit(1)
		}
		defer closeTrace()
		tracer = heap.NewTracer(w)
	}

	source, err := os.ReadFile(sourcePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "goodtime: reading %s: %v\n", sourcePath, err)
		os.Exit(1)
	}

	h := heap.NewHeap(tracer)
	alloc, fault := heap.NewAllocator(h)
	if fault != nil {
		fmt.Fprintf(os.Stderr, "goodtime: initializing allocator: %v\n", fault)
		os.Exit(1)
	}

	ev := guest.NewEvaluator(alloc, os.Stdout)

	if *withTelemetry || cfg.Telemetry.Enabled {
		telLog, err := telemetry.Open(cfg.Telemetry.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "goodtime: opening telemetry log: %v\n", err)
			os.Exit(1)
		}
		defer telLog.Close()

		sequence := int64(0)
		ev.SetGC(func(a *heap.Allocator) *heap.Fault {
			stats, fault := heap.MinorGCWithStats(a)
			if fault != nil {
				return fault
			}
			sequence++
			if err := telLog.Record(telemetry.Cycle{
				SequenceNumber:  sequence,
				TakenAt:         "0001-01-01T00:00:00Z",
				RegionsPaired:   stats.RegionsPaired,
				RegionsReleased: stats.RegionsReleased,
				BytesReclaimed:  int64(stats.BytesReclaimed),
			}); err != nil {
				fmt.Fprintf(os.Stderr, "goodtime: recording telemetry: %v\n", err)
			}
			return nil
		})
	}

	if err := ev.Run(string(source)); err != nil {
		fmt.Fprintf(os.Stderr, "goodtime: %v\n", err)
		os.Exit(1)
	}

	if *withArchive || cfg.Archive.Enabled {
		snap, fault := snapshot.Capture(h, alloc.Order())
		if fault != nil {
			fmt.Fprintf(os.Stderr, "goodtime: capturing snapshot: %v\n", fault)
			os.Exit(1)
		}
		ar, err := archive.Open(cfg.Archive.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "goodtime: opening archive: %v\n", err)
			os.Exit(1)
		}
		defer ar.Close()
		if err := ar.Save(*archiveLabel, "0001-01-01T00:00:00Z", snap, cfg.Snapshot.Compress); err != nil {
			fmt.Fprintf(os.Stderr, "goodtime: saving snapshot: %v\n", err)
			os.Exit(1)
		}
	}
}
