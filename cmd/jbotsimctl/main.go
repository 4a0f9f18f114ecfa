package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/stevengo-git/jbotevolver/internal/capability"
	"github.com/stevengo-git/jbotevolver/internal/config"
	"github.com/stevengo-git/jbotevolver/pkg/jbotsim"
)

const artifactsDir = "runs"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:], out)
	case "runs":
		return runRuns(ctx, args[1:], out)
	case "summary":
		return runSummary(ctx, args[1:], out)
	case "fitness":
		return runFitness(ctx, args[1:], out)
	case "capabilities":
		return runCapabilities(ctx, args[1:], out)
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

type commonFlags struct {
	storeKind *string
	dbPath    *string
	logLevel  *string
	logFormat *string
	jsonOut   *bool
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		storeKind: fs.String("store", "sqlite", "store backend: memory|sqlite"),
		dbPath:    fs.String("db-path", "jbotsim.db", "sqlite database path"),
		logLevel:  fs.String("log-level", "info", "log level: debug|info|warn|error"),
		logFormat: fs.String("log-format", "auto", "log format: auto|text|json"),
		jsonOut:   fs.Bool("json", false, "emit JSON"),
	}
}

func (f commonFlags) client() (*jbotsim.Client, error) {
	logger, err := newLogger(os.Stderr, *f.logLevel, *f.logFormat)
	if err != nil {
		return nil, err
	}
	return jbotsim.New(jbotsim.Options{
		StoreKind:    *f.storeKind,
		DBPath:       *f.dbPath,
		ArtifactsDir: artifactsDir,
		Logger:       logger,
	})
}

// newLogger picks a text handler on a terminal and JSON otherwise, unless
// format forces one.
func newLogger(w *os.File, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch format {
	case "auto":
		if isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd()) {
			return slog.New(slog.NewTextHandler(w, opts)), nil
		}
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

func runRun(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	common := addCommonFlags(fs)
	configPath := fs.String("config", "", "experiment file (.json, .yaml or .yml)")
	ticks := fs.Int("ticks", 0, "override ticks per sample")
	samples := fs.Int("samples", 0, "override number of samples")
	seed := fs.Int64("seed", 0, "override seed")
	workers := fs.Int("workers", 0, "parallel integration workers")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ticks < 0 || *samples < 0 || *workers < 0 {
		return errors.New("ticks, samples and workers must be >= 0")
	}

	exp := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		exp = loaded
	}
	if *ticks > 0 {
		exp.Ticks = *ticks
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			exp.Seed = *seed
		}
	})

	client, err := common.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, jbotsim.RunRequest{
		Experiment: exp,
		Samples:    *samples,
		Workers:    *workers,
	})
	if err != nil {
		return err
	}

	if *common.jsonOut {
		return writeJSON(out, summary)
	}
	fmt.Fprintf(out, "run_id=%s experiment=%s ticks=%s samples=%d fitness=%s elapsed=%s\n",
		summary.RunID,
		summary.Experiment,
		humanize.Comma(int64(exp.Ticks)),
		summary.Summary.Samples,
		summary.Summary,
		summary.Duration.Round(time.Millisecond),
	)
	for i, f := range summary.SampleFitness {
		fmt.Fprintf(out, "sample=%d fitness=%.6f\n", i, f)
	}
	fmt.Fprintf(out, "artifacts=%s\n", summary.ArtifactsDir)
	return nil
}

func runRuns(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	common := addCommonFlags(fs)
	limit := fs.Int("limit", 20, "max runs to list")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := common.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	items, err := client.Runs(ctx, jbotsim.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if *common.jsonOut {
		return writeJSON(out, items)
	}
	if len(items) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}
	for _, item := range items {
		fmt.Fprintf(out, "run_id=%s created=%s experiment=%s evaluation=%s robots=%d ticks=%s mean=%.6f std=%.6f best=%.6f\n",
			item.RunID,
			relativeTime(item.CreatedAtUTC),
			item.Experiment,
			item.Evaluation,
			item.Robots,
			humanize.Comma(int64(item.Ticks)),
			item.Summary.Mean,
			item.Summary.Std,
			item.Summary.Max,
		)
	}
	return nil
}

func runSummary(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	common := addCommonFlags(fs)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "summarize the most recent run")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("summary requires --run-id or --latest")
	}

	client, err := common.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	item, err := client.Summary(ctx, jbotsim.RunRef{RunID: *runID, Latest: *latest})
	if err != nil {
		return err
	}
	if *common.jsonOut {
		return writeJSON(out, item)
	}
	fmt.Fprintf(out, "run_id=%s experiment=%s evaluation=%s created=%s\n", item.RunID, item.Experiment, item.Evaluation, relativeTime(item.CreatedAtUTC))
	fmt.Fprintf(out, "fitness=%s best_sample=%d\n", item.Summary, item.Summary.BestSample)
	return nil
}

func runFitness(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	common := addCommonFlags(fs)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show fitness history for the most recent run")
	sample := fs.Int("sample", 0, "sample index")
	limit := fs.Int("limit", 50, "max ticks to print (<=0 for all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("fitness requires --run-id or --latest")
	}
	if *limit < 0 {
		*limit = 0
	}

	client, err := common.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.FitnessHistory(ctx, jbotsim.FitnessHistoryRequest{
		RunRef: jbotsim.RunRef{RunID: *runID, Latest: *latest},
		Sample: *sample,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if *common.jsonOut {
		return writeJSON(out, history)
	}
	if len(history) == 0 {
		fmt.Fprintln(out, "no fitness history")
		return nil
	}
	for i, f := range history {
		fmt.Fprintf(out, "tick=%d fitness=%.6f\n", i+1, f)
	}
	return nil
}

func runCapabilities(_ context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("capabilities", flag.ContinueOnError)
	kind := fs.String("kind", "", "only list one kind: sensor|actuator|input|controller|evaluator")
	jsonOut := fs.Bool("json", false, "emit JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := jbotsim.New(jbotsim.Options{StoreKind: "memory"})
	if err != nil {
		return err
	}
	caps := client.Capabilities()
	if *kind != "" {
		names, ok := caps[capability.Kind(*kind)]
		if !ok {
			return fmt.Errorf("unknown capability kind: %s", *kind)
		}
		caps = map[capability.Kind][]string{capability.Kind(*kind): names}
	}
	if *jsonOut {
		return writeJSON(out, caps)
	}
	for _, k := range []capability.Kind{
		capability.KindSensor,
		capability.KindActuator,
		capability.KindInput,
		capability.KindController,
		capability.KindEvaluator,
	} {
		names, ok := caps[k]
		if !ok {
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", k, strings.Join(names, ", "))
	}
	return nil
}

func relativeTime(rfc3339 string) string {
	t, err := time.Parse(time.RFC3339Nano, rfc3339)
	if err != nil {
		return rfc3339
	}
	return humanize.Time(t)
}

func writeJSON(out io.Writer, value any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: jbotsimctl <run|runs|summary|fitness|capabilities> [flags]", msg)
}
