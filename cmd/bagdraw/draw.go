package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/Parkreiner/randombag/bag"
	"github.com/Parkreiner/randombag/eventfilelogger"
	"github.com/Parkreiner/randombag/eventlogger"
	"github.com/Parkreiner/randombag/internal/config"
	"github.com/Parkreiner/randombag/internal/logging"
	"github.com/Parkreiner/randombag/subscriptions"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type drawFlags struct {
	configPath string
	pool       []string
	labels     map[string]string
	seed       int64
	count      int
	peek       int
	add        []string
	remove     []string
	snapshot   bool
	eventsFile string
	logLevel   logging.Level
	logFormat  logging.Format
}

func newDrawCmd(stdout, stderr io.Writer) *cobra.Command {
	f := &drawFlags{
		logLevel:  logging.LevelWarn,
		logFormat: logging.FmtConsole,
	}

	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Draw items from a bag",
		Long: `Draw builds a bag from the configured pool and prints --count draws.

Settings come from the YAML file given by --config (or BAGDRAW_CONFIG), then
BAGDRAW_* environment variables, then any flags that were set explicitly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(f.configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if err := f.apply(cmd.Flags(), &cfg); err != nil {
				return err
			}
			return runDraw(stdout, stderr, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.configPath, "config", "", "path to a YAML config file")
	flags.StringSliceVar(&f.pool, "pool", nil, "items in the pool (default: I,J,L,O,S,T,Z)")
	flags.StringToStringVar(&f.labels, "label", nil, "text to print for an item, as item=text")
	flags.Int64Var(&f.seed, "seed", 0, "shuffle seed; 0 seeds from the clock")
	flags.IntVar(&f.count, "count", 0, "number of draws (default: one bag)")
	flags.IntVar(&f.peek, "peek", 0, "after drawing, show the next n pending draws")
	flags.StringSliceVar(&f.add, "add", nil, "items added to the pool before drawing")
	flags.StringSliceVar(&f.remove, "remove", nil, "items removed from the pool before drawing")
	flags.BoolVar(&f.snapshot, "snapshot", false, "print the final bag state as JSON")
	flags.StringVar(&f.eventsFile, "events-file", "", "append a line per bag event to this file")
	flags.Var(&f.logLevel, "log-level", "log level "+f.logLevel.Type())
	flags.Var(&f.logFormat, "log-format", "log format "+f.logFormat.Type())

	return cmd
}

// apply copies every explicitly set flag over the loaded config, so flags
// always win over the file and the environment.
func (f *drawFlags) apply(flags *pflag.FlagSet, cfg *config.Config) error {
	if flags.Changed("pool") {
		cfg.Bag.Pool = f.pool
	}
	if flags.Changed("label") {
		if cfg.Bag.Labels == nil {
			cfg.Bag.Labels = make(map[string]string, len(f.labels))
		}
		maps.Copy(cfg.Bag.Labels, f.labels)
	}
	if flags.Changed("seed") {
		cfg.Bag.Seed = f.seed
	}
	if flags.Changed("count") {
		cfg.Draw.Count = f.count
	}
	if flags.Changed("peek") {
		cfg.Draw.Peek = f.peek
	}
	if flags.Changed("add") {
		cfg.Draw.Add = f.add
	}
	if flags.Changed("remove") {
		cfg.Draw.Remove = f.remove
	}
	if flags.Changed("snapshot") {
		cfg.Draw.Snapshot = f.snapshot
	}
	if flags.Changed("events-file") {
		cfg.Draw.EventsFile = f.eventsFile
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = f.logLevel.String()
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = f.logFormat.String()
	}
	return cfg.Validate()
}

func runDraw(stdout, stderr io.Writer, cfg config.Config) error {
	var level logging.Level
	if err := level.Set(cfg.Logging.Level); err != nil {
		return err
	}
	var format logging.Format
	if err := format.Set(cfg.Logging.Format); err != nil {
		return err
	}
	logger := logging.New(stderr, level, format)
	defer func() {
		_ = logger.Sync()
	}()

	labels := maps.Clone(cfg.Bag.Labels)
	transform := func(item string) string {
		if label, ok := labels[item]; ok {
			return label
		}
		return item
	}

	opts := []bag.Option{bag.WithEventSink(eventlogger.New(logger))}
	if cfg.Draw.EventsFile != "" {
		manager := subscriptions.New(0)
		defer manager.Close()

		fileLogger, err := eventfilelogger.New(eventfilelogger.Init{
			Subscriber: manager,
			OutputPath: cfg.Draw.EventsFile,
		})
		if err != nil {
			return err
		}
		defer fileLogger.Close()

		opts = append(opts, bag.WithEventSink(manager))
	}
	if cfg.Bag.Seed != 0 {
		opts = append(opts, bag.WithSeed(cfg.Bag.Seed))
	}
	b := bag.New(cfg.Bag.Pool, transform, opts...)

	for _, item := range cfg.Draw.Add {
		b.Add(item)
	}
	if len(cfg.Draw.Remove) > 0 {
		remove := slices.Clone(cfg.Draw.Remove)
		b.RemoveIf(func(item string) bool {
			return slices.Contains(remove, item)
		})
	}

	count := cfg.Draw.Count
	if count == 0 {
		count = len(b.Pool())
	}
	for i := range count {
		drawn, err := b.Next()
		if err != nil {
			return fmt.Errorf("draw %d of %d: %w", i+1, count, err)
		}
		fmt.Fprintln(stdout, drawn)
	}

	if cfg.Draw.Peek > 0 {
		fmt.Fprintf(stdout, "next: %s\n", strings.Join(b.Peek(cfg.Draw.Peek), " "))
	}

	if cfg.Draw.Snapshot {
		out, err := json.Marshal(b.Snapshot())
		if err != nil {
			return fmt.Errorf("encoding snapshot: %w", err)
		}
		fmt.Fprintln(stdout, string(out))
	}
	return nil
}
