package statuscmder

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/meridianclaims/payerkb/pkg/config"
	"github.com/meridianclaims/payerkb/pkg/kb"
	"github.com/meridianclaims/payerkb/pkg/logger"
)

const statusLongDesc string = `Print a one-off dashboard snapshot and exit.

Shows backend health, aggregate statistics, the active payer list, and
recent alerts - the same data the chat sidebar polls for.

Examples:
  payerkb status
  payerkb status --server http://kb.internal:8000`

const statusShortDesc string = "Print a dashboard snapshot"

type statusCommander struct {
	configPath string
	serverURL  string
	unreadOnly bool
	alertLimit int
}

func NewStatusCmd() *cobra.Command {
	cmder := &statusCommander{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVar(&cmder.serverURL, "server", "", "Knowledge base API URL")
	cmd.Flags().BoolVar(&cmder.unreadOnly, "unread-only", false, "Only show unread alerts")
	cmd.Flags().IntVar(&cmder.alertLimit, "alert-limit", 10, "Maximum alerts to show")

	return cmd
}

func (c *statusCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.serverURL != "" {
		cfg.ServerURL = c.serverURL
	}

	log := logger.NewLogger(cfg.Debug)
	defer log.Sync()

	client := kb.NewClient(kb.ClientConfig{
		BaseURL: cfg.ServerURL,
		Timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
	}, log)

	health, err := client.Health(ctx)
	if err != nil {
		return fmt.Errorf("backend unreachable at %s: %w", cfg.ServerURL, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Backend: %s (%s)\n", cfg.ServerURL, health.Status)

	stats, err := client.Stats(ctx)
	if err != nil {
		return fmt.Errorf("could not fetch stats: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nPayers: %d  Rules: %d  Unread alerts: %d  Scrape jobs (7d): %d\n",
		stats.TotalPayers, stats.TotalRules, stats.UnreadAlerts, stats.ScrapeJobsLast7d)
	for ruleType, count := range stats.RulesByType {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d\n", ruleType, count)
	}

	payers, err := client.Payers(ctx)
	if err != nil {
		return fmt.Errorf("could not fetch payers: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "\nActive payers:")
	for _, payer := range payers {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %3d rules  %s\n", payer.Name, payer.TotalRules, payer.Priority)
	}

	alerts, err := client.Alerts(ctx, c.unreadOnly, c.alertLimit)
	if err != nil {
		return fmt.Errorf("could not fetch alerts: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "\nAlerts:")
	if len(alerts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "  none")
	}
	for _, alert := range alerts {
		read := " "
		if !alert.IsRead {
			read = "*"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %s [%s] %s: %s\n", read, alert.Severity, alert.Title, alert.Message)
	}

	return nil
}
