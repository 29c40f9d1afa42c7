package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"mtgplan/internal/cities"
	"mtgplan/internal/config"
	"mtgplan/internal/format"
	"mtgplan/internal/ics"
	appLog "mtgplan/internal/log"
	"mtgplan/internal/model"
	"mtgplan/internal/plan"
	"mtgplan/internal/web"
)

var version = "0.1.0-dev"

// app holds flag values and the state built from them before a
// subcommand runs.
type app struct {
	configPath   string
	base         string
	participants []string
	slots        []string
	use24h       bool
	logLevel     string

	cfg    *config.Config
	format *format.Formatter
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "mtgplan",
		Short:         "Show candidate meeting times in every participant's zone",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", defaultConfigPath(), "path to config.yaml")
	pf.StringVar(&a.base, "base", "", "base city, IANA zone or Label=Zone (default from config)")
	pf.StringArrayVarP(&a.participants, "participant", "p", nil, "participant city, IANA zone or Label=Zone (repeatable)")
	pf.BoolVar(&a.use24h, "24h", false, "use 24-hour clock")
	pf.StringVar(&a.logLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR (default from config)")

	root.AddCommand(
		a.lineCmd(),
		a.tableCmd(),
		a.icsCmd(),
		a.importCmd(),
		a.citiesCmd(),
		a.serveCmd(),
	)
	return root
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "mtgplan", "config.yaml")
}

// setup loads the config, applies flag overrides and initializes logging
// and the formatter.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		if cfg == nil {
			return err
		}
		appLog.Warn("config not saved; using defaults", "config_path", a.configPath, "err", err.Error())
	}
	if cmd.Flags().Changed("24h") {
		cfg.Use24h = a.use24h
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}

	appLog.Init(appLog.Options{
		Level:  appLog.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
		Writer: cmd.ErrOrStderr(),
	})
	appLog.Debug("effective config",
		"config_path", a.configPath,
		"base", cfg.Base,
		"participants", len(cfg.Participants),
		"use_24h", cfg.Use24h,
		"dst_detection", cfg.DSTDetection,
	)

	a.cfg = cfg
	a.format = format.New(format.Options{
		Table:          cfg.AbbreviationTable(),
		Detect:         cfg.Detector(),
		RangeSeparator: cfg.RangeSeparator,
		ShowLabels:     cfg.ShowLabels,
	})
	return nil
}

// request builds a plan request from flags and config defaults.
func (a *app) request(candidates []model.Candidate) (plan.Request, error) {
	base := a.base
	if base == "" {
		base = a.cfg.Base
	}
	baseP, err := cities.Resolve(base)
	if err != nil {
		return plan.Request{}, errors.Wrap(err, "base")
	}

	participants := a.cfg.Participants
	if len(a.participants) > 0 {
		participants = make([]model.Participant, 0, len(a.participants))
		for _, in := range a.participants {
			p, err := cities.Resolve(in)
			if err != nil {
				return plan.Request{}, errors.Wrap(err, "participant")
			}
			participants = append(participants, p)
		}
	}

	return plan.Request{
		Base:         baseP,
		Candidates:   candidates,
		Participants: participants,
		Use24h:       a.cfg.Use24h,
	}, nil
}

// parseSlot reads "yyyy-MM-dd,HH:mm,HH:mm".
func parseSlot(s string) (model.Candidate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return model.Candidate{}, errors.Errorf("slot %q: want date,start,end", s)
	}
	return model.Candidate{
		Date:  strings.TrimSpace(parts[0]),
		Start: strings.TrimSpace(parts[1]),
		End:   strings.TrimSpace(parts[2]),
	}, nil
}

func (a *app) slotRequest() (plan.Request, error) {
	if len(a.slots) == 0 {
		return plan.Request{}, errors.New("at least one --slot is required")
	}
	cands := make([]model.Candidate, 0, len(a.slots))
	for _, s := range a.slots {
		c, err := parseSlot(s)
		if err != nil {
			return plan.Request{}, err
		}
		cands = append(cands, c)
	}
	return a.request(cands)
}

func (a *app) addSlotFlag(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&a.slots, "slot", nil, "candidate as date,start,end in the base zone (repeatable)")
}

func (a *app) lineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "line",
		Short: "Print one line per candidate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := a.slotRequest()
			if err != nil {
				return err
			}
			out, err := plan.Lines(a.format, req)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	a.addSlotFlag(cmd)
	return cmd
}

func (a *app) tableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print one participant table per candidate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := a.slotRequest()
			if err != nil {
				return err
			}
			out, err := plan.Tables(a.format, req)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	a.addSlotFlag(cmd)
	return cmd
}

func (a *app) icsCmd() *cobra.Command {
	var summary, organizer, outPath string

	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Write an iCalendar invite with one event per candidate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := a.slotRequest()
			if err != nil {
				return err
			}
			out, err := ics.BuildInvite(a.format, req, ics.InviteOptions{
				Summary:   summary,
				Organizer: organizer,
			})
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err = io.WriteString(cmd.OutOrStdout(), out)
				return err
			}
			if err := os.WriteFile(outPath, []byte(out), 0o644); err != nil {
				return errors.Wrap(err, "write invite")
			}
			appLog.Info("invite written", "path", outPath, "events", len(req.Candidates))
			return nil
		},
	}
	a.addSlotFlag(cmd)
	cmd.Flags().StringVar(&summary, "summary", "", "event title")
	cmd.Flags().StringVar(&organizer, "organizer", "", "organizer e-mail address")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	var asTable bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "import <file|url>",
		Short: "Read events from an .ics file or URL and print them as candidates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.request(nil)
			if err != nil {
				return err
			}
			body, err := ics.NewFetcher(timeout).Read(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			req.Candidates, err = ics.ParseCandidates(body, req.Base.Zone)
			if err != nil {
				return err
			}
			if len(req.Candidates) == 0 {
				return errors.New("no timed single-day events found")
			}

			render := plan.Lines
			if asTable {
				render = plan.Tables
			}
			out, err := render(a.format, req)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().BoolVar(&asTable, "table", false, "print tables instead of lines")
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "HTTP timeout for URLs")
	return cmd
}

func (a *app) citiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cities",
		Short: "List the city names accepted for --base and --participant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, c := range cities.All() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Label, c.Zone, strings.Join(c.Aliases, ", "))
			}
			return tw.Flush()
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// CLI --listen overrides config file listen if provided.
			if listen != "" {
				a.cfg.Listen = listen
			}
			appLog.Info("mtgplan starting", "version", version, "listen", a.cfg.Listen)
			return web.StartServer(cmd.Context(), a.cfg, a.format)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config)")
	return cmd
}
