package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"funcmatch/internal/classify"
	"funcmatch/internal/compare"
	"funcmatch/internal/dump"
	"funcmatch/internal/funcmatch/config"
	"funcmatch/internal/funcmatch/log"
	"funcmatch/internal/image"
	"funcmatch/internal/matcher"
	"funcmatch/internal/report"
	"funcmatch/internal/symtab"
)

// ErrMismatch is returned when at least one compared function does not
// reproduce the reference code.
var ErrMismatch = errors.New("functions do not match")

type options struct {
	cfgFile  string
	dumpFile string
	listing  bool
	tui      bool
	all      bool
}

// flagKeys maps flags to their config keys.
var flagKeys = map[string]string{
	"base":      "base",
	"dump-tool": "dump_tool",
	"dump-flag": "dump_flags",
	"match":     "match",
	"strict":    "strict",
	"format":    "format",
	"debug":     "debug",
	"log-file":  "log_file",
}

// NewRootCmd builds the command tree. Every call returns an independent
// tree with its own config.
func NewRootCmd() *cobra.Command {
	var (
		opts options
		cfg  *config.Config
	)
	v := viper.New()

	root := &cobra.Command{
		Use:   "funcmatch <image> <symbols> <object> <symbol>",
		Short: "Check that a rebuilt function matches the original machine code",
		Long: `Funcmatch compares a function compiled from reconstructed source against
the same function in the original PowerPC binary. Instructions that only
differ in a relocated address or displacement are accepted.`,
		Example: `
# Compare one function
funcmatch main.dol symbols.csv build/foo.o __ct__3FooFv

# Compare every symbol in the table that the object defines
funcmatch --all main.dol symbols.csv build/foo.o

# Show the full side-by-side listing using a saved dump
funcmatch --listing --dump-file foo.dump main.dol symbols.csv build/foo.o update__3FooFv
  `,
		SilenceUsage: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.all {
				return cobra.ExactArgs(3)(cmd, args)
			}
			return cobra.ExactArgs(4)(cmd, args)
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(v, opts.cfgFile)
			if err != nil {
				return err
			}
			if err := log.Setup(cfg.LogFile, cfg.Debug); err != nil {
				return err
			}
			slog.Debug("Config loaded", "file", v.ConfigFileUsed(), "base", cfg.Base, "match", cfg.Match)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd.Context(), cmd.OutOrStdout(), cfg, opts, args)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return log.Close()
		},
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "Config file (default ./funcmatch.yaml or $HOME/.funcmatch.yaml)")
	root.PersistentFlags().BoolP("debug", "d", false, "Debug")
	root.PersistentFlags().String("log-file", "", "Also write JSON logs to this file")

	root.Flags().String("base", "", "Load address of the image, or auto to use its ELF segments")
	root.Flags().String("dump-tool", "", "Object dump executable")
	root.Flags().StringArray("dump-flag", nil, "Argument for the dump tool (repeatable, replaces the defaults)")
	root.Flags().StringVar(&opts.dumpFile, "dump-file", "", "Read a saved dump instead of running the dump tool")
	root.Flags().String("match", "", "Symbol matching: strict or suffix")
	root.Flags().Bool("strict", false, "Treat relocation differences as mismatches")
	root.Flags().StringP("format", "o", "", "Output format: text, json or markdown")
	root.Flags().BoolVarP(&opts.listing, "listing", "l", false, "Show the full side-by-side listing")
	root.Flags().BoolVarP(&opts.tui, "tui", "t", false, "Browse the results interactively")
	root.Flags().BoolVarP(&opts.all, "all", "a", false, "Compare every symbol of the table")

	for name, key := range flagKeys {
		f := root.Flags().Lookup(name)
		if f == nil {
			f = root.PersistentFlags().Lookup(name)
		}
		_ = v.BindPFlag(key, f)
	}

	root.AddCommand(newSymbolsCmd(), newSchemaCmd())
	return root
}

func newSession(cfg *config.Config, opts options, args []string) (*matcher.Session, error) {
	base, err := cfg.BaseAddress()
	if err != nil {
		return nil, err
	}
	mode, err := cfg.MatchMode()
	if err != nil {
		return nil, err
	}

	img, err := image.Load(args[0], base)
	if err != nil {
		return nil, err
	}
	table, err := symtab.Load(args[1])
	if err != nil {
		return nil, err
	}

	var source dump.Source = dump.NewTool(cfg.DumpTool, cfg.DumpFlags)
	if opts.dumpFile != "" {
		source = dump.File{Path: opts.dumpFile}
	}

	classifier := classify.New(classify.PPC{})
	if cfg.Strict {
		classifier = classify.NewStrict(classify.PPC{})
	}

	return &matcher.Session{
		Image:      img,
		Table:      table,
		Source:     source,
		Scanner:    dump.NewScanner(),
		Comparator: compare.New(classifier),
		ObjectPath: args[2],
		Match:      mode,
	}, nil
}

func runCompare(ctx context.Context, out io.Writer, cfg *config.Config, opts options, args []string) error {
	session, err := newSession(cfg, opts, args)
	if err != nil {
		return err
	}
	symbol := ""
	if !opts.all {
		symbol = args[3]
	}

	if opts.tui {
		return runTUI(ctx, session, symbol)
	}

	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	width := 0
	if f, ok := out.(*os.File); ok && term.IsTerminal(f.Fd()) {
		if w, _, err := term.GetSize(f.Fd()); err == nil {
			width = w
		}
	}
	reporter := report.New(session, report.Options{
		Format:  format,
		Listing: opts.listing,
		Glamour: width > 0,
		Width:   width,
	})

	if opts.all {
		outcomes, err := session.CompareAll(ctx)
		if err != nil {
			return err
		}
		if err := reporter.All(out, outcomes); err != nil {
			return err
		}
		if !matcher.Summarize(outcomes).OK() {
			return ErrMismatch
		}
		return nil
	}

	outcome, err := session.Compare(ctx, symbol)
	if err != nil {
		return err
	}
	if err := reporter.Outcome(out, outcome); err != nil {
		return err
	}
	if !outcome.Matches() {
		return ErrMismatch
	}
	return nil
}

func runTUI(ctx context.Context, session *matcher.Session, symbol string) error {
	program := tea.NewProgram(
		newModel(ctx, session, symbol),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	final, err := program.Run()
	if err != nil {
		slog.Error("TUI run error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	if m, ok := final.(model); ok {
		if m.err != nil {
			return m.err
		}
		if !matcher.Summarize(m.all).OK() {
			return ErrMismatch
		}
	}
	return nil
}

var rootCmd = NewRootCmd()

func Execute() {
	// Piped output goes through plain cobra so fang does not style it.
	if !term.IsTerminal(os.Stdout.Fd()) {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
