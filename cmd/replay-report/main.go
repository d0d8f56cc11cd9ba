// replay-report analyzes a recorded session from a file of raw replay
// records (a JSON array or NDJSON) and prints the semantic narrative.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/replaysight/replaysight/internal/adapter/pii"
	"github.com/replaysight/replaysight/internal/pkg/logger"
	"github.com/replaysight/replaysight/internal/replay/semantic"
	"github.com/replaysight/replaysight/internal/replay/signals"
	"github.com/replaysight/replaysight/internal/usecase"
)

func main() {
	var (
		input    = pflag.StringP("input", "i", "", "path to the session event file (defaults to stdin)")
		asJSON   = pflag.Bool("json", false, "emit the full SemanticSession as JSON instead of text")
		noRedact = pflag.Bool("no-redact", false, "disable PII redaction in surfaced text")
		logLevel = pflag.String("log-level", "warn", "log level (debug, info, warn, error)")
	)
	pflag.Parse()

	log := logger.New(*logLevel)
	slog.SetDefault(log)

	records, err := readRecords(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay-report: %v\n", err)
		os.Exit(1)
	}

	uc := usecase.NewAnalyzeSessionUseCase(
		pii.NewRedactor(!*noRedact),
		semantic.DefaultOptions(),
		signals.DefaultThresholds(),
		log,
	)
	result := uc.Analyze(context.Background(), records)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.Session); err != nil {
			fmt.Fprintf(os.Stderr, "replay-report: encode: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printReport(result)
}

func readRecords(path string) ([]json.RawMessage, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}

	// A JSON array of records, or one record per line.
	if strings.HasPrefix(trimmed, "[") {
		var records []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &records); err != nil {
			return nil, fmt.Errorf("parse event array: %w", err)
		}
		return records, nil
	}

	var records []json.RawMessage
	scanner := bufio.NewScanner(strings.NewReader(trimmed))
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		records = append(records, json.RawMessage(line))
	}
	return records, scanner.Err()
}

func printReport(result usecase.AnalyzeResult) {
	s := result.Session

	fmt.Printf("Session on %s (%s)\n", s.PageURL, s.TotalDuration)
	fmt.Printf("%s events decoded, %s records dropped\n\n",
		humanize.Comma(int64(result.Decoded)), humanize.Comma(int64(result.Dropped)))

	for _, entry := range s.Logs {
		line := fmt.Sprintf("[%s] %s", entry.Timestamp, entry.Action)
		if entry.Details != "" {
			line += " " + entry.Details
		}
		for _, flag := range entry.Flags {
			line += fmt.Sprintf(" [%s]", flag)
		}
		fmt.Println(line)
	}

	fmt.Println()
	sum := s.Summary
	fmt.Printf("Summary: %d clicks (%d rage, %d dead), %d inputs (%d abandoned), %d scrolls (max depth %d%%), %d errors, %ds idle\n",
		sum.Clicks, sum.RageClicks, sum.DeadClicks,
		sum.Inputs, sum.AbandonedInputs,
		sum.Scrolls, sum.MaxScrollDepth,
		sum.ConsoleErrors+sum.NetworkErrors, sum.IdleSeconds)

	flags := s.BehavioralSignals
	var set []string
	for _, f := range []struct {
		on   bool
		name string
	}{
		{flags.IsExploring, "exploring"},
		{flags.IsFrustrated, "frustrated"},
		{flags.IsEngaged, "engaged"},
		{flags.IsConfused, "confused"},
		{flags.IsMobile, "mobile"},
		{flags.CompletedGoal, "completed-goal"},
	} {
		if f.on {
			set = append(set, f.name)
		}
	}
	if len(set) == 0 {
		set = []string{"none"}
	}
	fmt.Printf("Behavior: %s\n", strings.Join(set, ", "))
}
