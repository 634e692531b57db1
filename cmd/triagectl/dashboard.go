package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/linnemanlabs/triageboard/internal/dashboard"
	"github.com/linnemanlabs/triageboard/internal/patient"
	"github.com/linnemanlabs/triageboard/internal/tui"
)

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Run the terminal nurse dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			// the TUI owns the terminal, so logs go to a file or nowhere
			logger, closeLog, err := newLogger(cfg.LogLevel, cfg.LogFile, nil)
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()

			c, err := cfg.newClient()
			if err != nil {
				return err
			}
			logger.Info().Str("server", c.BaseURL()).Dur("interval", cfg.Interval).Msg("starting dashboard")

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var program *tea.Program
			poller := dashboard.NewPoller(c, cfg.Interval,
				func(records []*patient.Record) {
					program.Send(tui.SnapshotMsg{Records: records, FetchedAt: time.Now()})
				},
				func(err error) {
					logger.Warn().Err(err).Msg("poll failed")
					program.Send(tui.PollErrorMsg{Err: err})
				},
			)

			app := tui.NewApp(tui.Config{
				Board:          dashboard.NewBoard(),
				Sender:         c,
				Refresher:      poller,
				ServerURL:      c.BaseURL(),
				PollInterval:   cfg.Interval,
				ConfirmTimeout: cfg.Timeout,
			})
			program = tea.NewProgram(app, tea.WithAltScreen())

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return poller.Run(gctx)
			})
			g.Go(func() error {
				defer cancel()
				_, err := program.Run()
				return err
			})
			g.Go(func() error {
				<-gctx.Done()
				program.Quit()
				return nil
			})

			err = g.Wait()
			logger.Info().Err(err).Msg("dashboard stopped")
			return err
		},
	}
}
