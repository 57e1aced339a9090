package utils

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Verbose controls whether informational output is printed.
// Set to false to suppress output.
var Verbose = true

// Output is the writer where informational output is printed.
// Defaults to os.Stdout.
var Output io.Writer = os.Stdout

// Logf prints a formatted line to Output when Verbose is set.
func Logf(format string, args ...any) {
	if !Verbose {
		return
	}
	fmt.Fprintf(Output, format+"\n", args...)
}

// TimingStats holds timing information for different operations
type TimingStats struct {
	TotalTime     time.Duration
	LoadTime      time.Duration
	ModelInitTime time.Duration
	DataTime      time.Duration
	TrainTime     time.Duration
	InferenceTime time.Duration
	SaveTime      time.Duration
}

// PrintTimingStats prints detailed timing statistics.
// Respects the Verbose flag - does nothing if Verbose is false.
func PrintTimingStats(stats *TimingStats, steps int) {
	if !Verbose {
		return
	}
	fmt.Fprintln(Output, "\n=== TIMING STATISTICS ===")
	fmt.Fprintf(Output, "Total time: %v\n", stats.TotalTime)
	fmt.Fprintf(Output, "Training steps completed: %d\n", steps)
	if steps > 0 {
		fmt.Fprintf(Output, "Average time per step: %v\n", stats.TrainTime/time.Duration(steps))
	}
	fmt.Fprintln(Output, "\nBreakdown by operation:")
	printShare("Network loading", stats.LoadTime, stats.TotalTime)
	printShare("Model initialization", stats.ModelInitTime, stats.TotalTime)
	printShare("Data loading", stats.DataTime, stats.TotalTime)
	printShare("Training", stats.TrainTime, stats.TotalTime)
	printShare("Inference", stats.InferenceTime, stats.TotalTime)
	printShare("Saving", stats.SaveTime, stats.TotalTime)
}

func printShare(name string, d, total time.Duration) {
	share := 0.0
	if total > 0 {
		share = float64(d) / float64(total) * 100
	}
	fmt.Fprintf(Output, "  %s: %v (%.1f%%)\n", name, d, share)
}

// DurationUS converts any time.Duration to micro-seconds as float64
func DurationUS(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1_000.0
}
