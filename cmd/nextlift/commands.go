package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/myrjola/nextlift/internal/envstruct"
	"github.com/myrjola/nextlift/internal/errors"
	"github.com/myrjola/nextlift/internal/logging"
	"github.com/myrjola/nextlift/internal/recommend"
	"github.com/myrjola/nextlift/internal/report"
	"github.com/myrjola/nextlift/internal/sqlite"
	"github.com/myrjola/nextlift/internal/training"
)

// defaults are read from the environment. Flags override them.
type defaults struct {
	SqliteURL   string `env:"NEXTLIFT_SQLITE_URL"    envDefault:"./nextlift.sqlite3"`
	CatalogPath string `env:"NEXTLIFT_CATALOG_PATH"  envDefault:""`
	Age         int    `env:"NEXTLIFT_DEFAULT_AGE"   envDefault:"30"`
	Phase       string `env:"NEXTLIFT_DEFAULT_PHASE" envDefault:"hypertrophy"`
	LogLevel    string `env:"NEXTLIFT_LOG_LEVEL"     envDefault:"warn"`
}

type options struct {
	db       string
	catalog  string
	age      int
	phase    string
	logLevel string
	asJSON   bool
	legacy   bool
}

// session is what a command needs to talk to the training history.
type session struct {
	service *training.Service
	db      *sqlite.Database
	logger  *slog.Logger
}

func (o *options) open(ctx context.Context, stderr io.Writer) (*session, error) {
	level, err := logging.ParseLevel(o.logLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger := logging.NewLogger(stderr, level)

	catalog := recommend.DefaultCatalog()
	if o.catalog != "" {
		if catalog, err = recommend.LoadCatalogFile(o.catalog); err != nil {
			return nil, errors.Wrap(err, "load exercise catalog", slog.String("path", o.catalog))
		}
	}

	db, err := sqlite.NewDatabase(ctx, o.db, logger)
	if err != nil {
		return nil, errors.Wrap(err, "open db", slog.String("url", o.db))
	}
	return &session{
		service: training.NewService(db, recommend.NewEngine(catalog, logger), nil, logger),
		db:      db,
		logger:  logger,
	}, nil
}

func (s *session) close(ctx context.Context) {
	if err := s.db.Close(); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to close db", errors.SlogError(err))
	}
}

// withSession opens the history for the duration of fn.
func (o *options) withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	s, err := o.open(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.close(ctx)
	return fn(ctx, s)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func newRootCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	var env defaults
	// An unparsable environment falls back to the tag defaults so that --help keeps working.
	if err := envstruct.Populate(&env, lookupEnv); err != nil {
		_ = envstruct.Populate(&env, func(string) (string, bool) { return "", false })
	}

	opts := &options{}
	root := &cobra.Command{
		Use:           "nextlift",
		Short:         "Log training sets and get the next session's prescription",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.db, "db", env.SqliteURL, "SQLite database path")
	flags.StringVar(&opts.catalog, "catalog", env.CatalogPath, "YAML file overriding the exercise catalog")
	flags.IntVar(&opts.age, "age", env.Age, "lifter age in years")
	flags.StringVar(&opts.phase, "phase", env.Phase, "training phase: hypertrophy, strength, peaking or explosive")
	flags.StringVar(&opts.logLevel, "log-level", env.LogLevel, "log level: debug, info, warn or error")
	flags.BoolVar(&opts.asJSON, "json", false, "print JSON instead of text")

	root.AddCommand(
		newRecommendCmd(opts),
		newReportCmd(opts),
		newLogCmd(opts),
		newImportCmd(opts),
		newExercisesCmd(opts),
		newBackupCmd(opts),
	)
	return root
}

func newRecommendCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend [exercise]",
		Short: "Print the next-session recommendation, or one for every exercise when none is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, s *session) error {
				phase := recommend.ParsePhase(opts.phase)
				var recs []recommend.Recommendation
				if len(args) == 1 {
					rec, err := s.service.Recommend(ctx, args[0], opts.age, phase)
					if err != nil {
						return err
					}
					recs = append(recs, rec)
				} else {
					var err error
					if recs, err = s.service.RecommendAll(ctx, opts.age, phase); err != nil {
						return err
					}
				}
				return printRecommendations(cmd.OutOrStdout(), recs, opts.asJSON, opts.legacy)
			})
		},
	}
	cmd.Flags().BoolVar(&opts.legacy, "legacy", false, "print the flat shape older clients understand (implies --json)")
	return cmd
}

func printRecommendations(w io.Writer, recs []recommend.Recommendation, asJSON, legacy bool) error {
	switch {
	case legacy:
		out := make([]*recommend.LegacyRecommendation, 0, len(recs))
		for i := range recs {
			out = append(out, recommend.ToLegacy(&recs[i]))
		}
		if len(out) == 1 {
			return writeJSON(w, out[0])
		}
		return writeJSON(w, out)
	case asJSON:
		if len(recs) == 1 {
			return writeJSON(w, recs[0])
		}
		return writeJSON(w, recs)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0) //nolint:mnd // two spaces between columns
	_, _ = fmt.Fprintln(tw, "EXERCISE\tSTATUS\tSETS\tREPS\tWEIGHT\tREST")
	for _, rec := range recs {
		p := rec.Prescription
		weight := "benchmark"
		if p.WeightKg != nil {
			weight = strconv.FormatFloat(*p.WeightKg, 'f', -1, 64) + " kg"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d s\n",
			rec.Exercise, report.StatusLabel(rec.TrainingStatus), p.Sets, p.Reps, weight, p.RestSeconds)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if len(recs) == 1 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, recs[0].Rationale)
	}
	return nil
}

func newReportCmd(opts *options) *cobra.Command {
	var asHTML bool
	cmd := &cobra.Command{
		Use:   "report <exercise>",
		Short: "Print the recommendation of an exercise as a Markdown report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, s *session) error {
				rec, err := s.service.Recommend(ctx, args[0], opts.age, recommend.ParsePhase(opts.phase))
				if err != nil {
					return err
				}
				out := report.Markdown(rec)
				if asHTML {
					if out, err = report.NewRenderer().HTML(rec); err != nil {
						return fmt.Errorf("render html: %w", err)
					}
				}
				_, err = io.WriteString(cmd.OutOrStdout(), out)
				return err //nolint:wrapcheck // plain write to stdout
			})
		},
	}
	cmd.Flags().BoolVar(&asHTML, "html", false, "render HTML instead of Markdown")
	return cmd
}

func newLogCmd(opts *options) *cobra.Command {
	var (
		date string
		rir  int
		sets int
	)
	cmd := &cobra.Command{
		Use:   "log <exercise> <weight-kg> <reps>",
		Short: "Log a working set",
		Args:  cobra.ExactArgs(3), //nolint:mnd // exercise, weight and reps
		RunE: func(cmd *cobra.Command, args []string) error {
			weight, err := strconv.ParseFloat(strings.Replace(args[1], ",", ".", 1), 64)
			if err != nil {
				return fmt.Errorf("weight %q is not a number", args[1])
			}
			reps, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("reps %q is not a number", args[2])
			}
			day := time.Now()
			if date != "" {
				if day, err = time.Parse(time.DateOnly, date); err != nil {
					return fmt.Errorf("date %q is not YYYY-MM-DD", date)
				}
			}
			in := training.EntryInput{
				ExerciseName:  args[0],
				Date:          day,
				WeightKg:      weight,
				Reps:          reps,
				SetsLogged:    nil,
				RepsInReserve: nil,
			}
			if cmd.Flags().Changed("rir") {
				in.RepsInReserve = &rir
			}
			if cmd.Flags().Changed("sets") {
				in.SetsLogged = &sets
			}
			return opts.withSession(cmd, func(ctx context.Context, s *session) error {
				entry, logErr := s.service.LogEntry(ctx, in)
				if logErr != nil {
					return logErr
				}
				if opts.asJSON {
					return writeJSON(cmd.OutOrStdout(), entry)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "logged %s %s kg x %d on %s (%s)\n", entry.ExerciseName,
					strconv.FormatFloat(entry.WeightKg, 'f', -1, 64), entry.Reps,
					entry.Date.Format(time.DateOnly), entry.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "session date as YYYY-MM-DD, today when empty")
	cmd.Flags().IntVar(&rir, "rir", 0, "reps in reserve")
	cmd.Flags().IntVar(&sets, "sets", 0, "number of sets performed with this weight and reps")
	return cmd
}

func newImportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <alpha-progression.csv>",
		Short: "Import an Alpha Progression CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open export: %w", err)
			}
			defer func() {
				_ = f.Close()
			}()
			return opts.withSession(cmd, func(ctx context.Context, s *session) error {
				result, importErr := s.service.ImportAlpha(ctx, f)
				if importErr != nil {
					return importErr
				}
				if opts.asJSON {
					return writeJSON(cmd.OutOrStdout(), result)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d sessions with %d sets, skipped %d sets\n",
					result.Sessions, result.Entries, result.Skipped)
				return nil
			})
		},
	}
}

func newExercisesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "exercises",
		Short: "List logged exercises",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withSession(cmd, func(ctx context.Context, s *session) error {
				exercises, err := s.service.ListExercises(ctx)
				if err != nil {
					return err
				}
				if opts.asJSON {
					return writeJSON(cmd.OutOrStdout(), exercises)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd // column gap
				_, _ = fmt.Fprintln(tw, "EXERCISE\tENTRIES\tEXCLUDED\tLAST")
				for _, ex := range exercises {
					_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n",
						ex.Name, ex.EntryCount, ex.ExcludedCount, ex.LastDate.Format(time.DateOnly))
				}
				return tw.Flush() //nolint:wrapcheck // plain write to stdout
			})
		},
	}
}

func newBackupCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "backup <path>",
		Short: "Write a consistent copy of the database to path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, s *session) error {
				if err := s.db.Backup(ctx, args[0]); err != nil {
					return fmt.Errorf("backup: %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "backed up to %s\n", args[0])
				return nil
			})
		},
	}
}
