// Command whisperctl inspects identifiers and flagged-entry datasets from
// the terminal, with no daemon and no network. It drives the same
// classification and matching engine as whisperd, so the verdicts are
// identical.
//
// Usage:
//
//	whisperctl detect [-json] <value>...
//	whisperctl check -dataset flagged.yaml [-json] <value>...
//	whisperctl dataset -dataset flagged.yaml [-json]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/emmi-lili/tx-whisperer/internal/dataset"
	"github.com/emmi-lili/tx-whisperer/internal/domain/model"
	"github.com/emmi-lili/tx-whisperer/internal/screening"
)

const (
	exitOK      = 0
	exitFatal   = 1
	exitFlagged = 2
)

var (
	flaggedColor = color.New(color.FgRed, color.Bold)
	cleanColor   = color.New(color.FgGreen)
	unknownColor = color.New(color.FgYellow)

	chainColors = map[model.Chain]*color.Color{
		model.ChainEVM:     color.New(color.FgCyan),
		model.ChainBitcoin: color.New(color.FgHiYellow),
		model.ChainSolana:  color.New(color.FgMagenta),
	}
)

func main() {
	// A .env file is optional, same contract as whisperd.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(exitFatal)
	}

	var code int
	switch os.Args[1] {
	case "detect":
		code = runDetect(os.Args[2:], os.Stdout)
	case "check":
		code = runCheck(os.Args[2:], os.Stdout)
	case "dataset":
		code = runDataset(os.Args[2:], os.Stdout)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		printUsage(os.Stderr)
		code = exitFatal
	}
	os.Exit(code)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "whisperctl inspects blockchain identifiers and flagged-entry datasets offline.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  whisperctl detect [-json] <value>...")
	fmt.Fprintln(w, "  whisperctl check -dataset <path> [-json] <value>...")
	fmt.Fprintln(w, "  whisperctl dataset -dataset <path> [-json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes: 0 ok, 1 usage or load error, 2 at least one value flagged.")
}

// newLogger keeps stdout clean for command output; only real failures from
// the shared engine reach stderr.
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// staticProvider serves one immutable snapshot; the CLI never reloads.
type staticProvider struct {
	snap *dataset.Snapshot
}

func (p *staticProvider) Snapshot() *dataset.Snapshot { return p.snap }

func runDetect(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "emit one JSON object per value")
	if err := fs.Parse(args); err != nil {
		return exitFatal
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "detect: at least one value is required")
		return exitFatal
	}

	svc := screening.NewService(&staticProvider{}, newLogger())
	ctx := context.Background()

	for _, raw := range fs.Args() {
		det := svc.Detect(ctx, raw)
		if *jsonOut {
			if err := printJSON(out, det); err != nil {
				fmt.Fprintf(os.Stderr, "detect: %v\n", err)
				return exitFatal
			}
			continue
		}
		printDetection(out, det)
	}
	return exitOK
}

func runCheck(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	datasetPath := fs.String("dataset", "", "path to the flagged-entry YAML file")
	jsonOut := fs.Bool("json", false, "emit one JSON report per value")
	if err := fs.Parse(args); err != nil {
		return exitFatal
	}
	if *datasetPath == "" {
		fmt.Fprintln(os.Stderr, "check: -dataset is required")
		return exitFatal
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "check: at least one value is required")
		return exitFatal
	}

	snap, err := dataset.Load(*datasetPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "check: %v\n", err)
		return exitFatal
	}

	svc := screening.NewService(&staticProvider{snap: snap}, newLogger())
	ctx := context.Background()

	flagged := false
	for _, raw := range fs.Args() {
		report := svc.Check(ctx, raw)
		if report.Status == model.StatusFlagged {
			flagged = true
		}
		if *jsonOut {
			if err := printJSON(out, report); err != nil {
				fmt.Fprintf(os.Stderr, "check: %v\n", err)
				return exitFatal
			}
			continue
		}
		printReport(out, report)
	}

	if flagged {
		return exitFlagged
	}
	return exitOK
}

func runDataset(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("dataset", flag.ContinueOnError)
	datasetPath := fs.String("dataset", "", "path to the flagged-entry YAML file")
	jsonOut := fs.Bool("json", false, "emit dataset metadata as JSON")
	if err := fs.Parse(args); err != nil {
		return exitFatal
	}
	if *datasetPath == "" {
		fmt.Fprintln(os.Stderr, "dataset: -dataset is required")
		return exitFatal
	}

	snap, err := dataset.Load(*datasetPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dataset: %v\n", err)
		return exitFatal
	}

	meta := snap.Meta()
	if *jsonOut {
		if err := printJSON(out, meta); err != nil {
			fmt.Fprintf(os.Stderr, "dataset: %v\n", err)
			return exitFatal
		}
		return exitOK
	}

	fmt.Fprintf(out, "version     %s\n", meta.Version)
	fmt.Fprintf(out, "entries     %d\n", meta.EntryCount)
	fmt.Fprintf(out, "updated_at  %s\n", meta.UpdatedAt.Format(time.RFC3339))
	byChain := make(map[model.Chain]int)
	for _, e := range snap.Entries {
		byChain[e.Chain]++
	}
	for _, chain := range []model.Chain{model.ChainEVM, model.ChainBitcoin, model.ChainSolana} {
		if n := byChain[chain]; n > 0 {
			fmt.Fprintf(out, "  %s  %d\n", chainColor(chain).Sprintf("%-8s", chain), n)
		}
	}
	return exitOK
}

func printDetection(w io.Writer, det screening.Detection) {
	fmt.Fprintf(w, "%s  %s/%s",
		det.Input,
		chainColor(det.Chain).Sprint(det.Chain),
		det.Kind,
	)
	if det.DisplayAddress != "" && det.DisplayAddress != det.Input {
		fmt.Fprintf(w, "  checksum %s", det.DisplayAddress)
	}
	fmt.Fprintln(w)
}

func printReport(w io.Writer, report *screening.Report) {
	fmt.Fprintf(w, "%s  %s/%s  %s\n",
		report.Input,
		chainColor(report.Chain).Sprint(report.Chain),
		report.Kind,
		statusColor(report.Status).Sprint(report.Status),
	)
	for _, m := range report.Matches {
		fmt.Fprintf(w, "    %s  %q  source=%s\n", m.Entry.Value, m.Entry.Label, m.Entry.Source)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func statusColor(s model.MatchStatus) *color.Color {
	switch s {
	case model.StatusFlagged:
		return flaggedColor
	case model.StatusClean:
		return cleanColor
	default:
		return unknownColor
	}
}

func chainColor(c model.Chain) *color.Color {
	if cc, ok := chainColors[c]; ok {
		return cc
	}
	return color.New(color.FgWhite)
}
