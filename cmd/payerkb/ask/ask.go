package askcmder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/meridianclaims/payerkb/pkg/config"
	"github.com/meridianclaims/payerkb/pkg/kb"
	"github.com/meridianclaims/payerkb/pkg/logger"
	"github.com/meridianclaims/payerkb/pkg/ranking"
)

const askLongDesc string = `Ask the knowledge base a single question and print the answer.

Sources are listed best match first with their confidence percentage.
Pass --session to continue an earlier conversation.

Examples:
  payerkb ask "What is Aetna's timely filing rule?"
  payerkb ask --payer Cigna "How long do I have to submit a claim?"
  payerkb ask --session sess-123 "And for out-of-network providers?"`

const askShortDesc string = "Ask a one-shot question"

type askCommander struct {
	configPath string
	serverURL  string
	payerName  string
	ruleType   string
	sessionID  string
	debug      bool
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVar(&cmder.serverURL, "server", "", "Knowledge base API URL")
	cmd.Flags().StringVar(&cmder.payerName, "payer", "", "Filter to one payer")
	cmd.Flags().StringVar(&cmder.ruleType, "rule-type", "", "Filter to one rule type")
	cmd.Flags().StringVar(&cmder.sessionID, "session", "", "Continue an existing session")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *askCommander) run(ctx context.Context, cmd *cobra.Command, question string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.serverURL != "" {
		cfg.ServerURL = c.serverURL
	}
	if c.payerName != "" {
		cfg.PayerName = c.payerName
	}
	if c.ruleType != "" {
		cfg.RuleType = c.ruleType
	}

	log := logger.NewLogger(c.debug || cfg.Debug)
	defer log.Sync()

	client := kb.NewClient(kb.ClientConfig{
		BaseURL: cfg.ServerURL,
		Timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
	}, log)

	result := client.Query(ctx, question, c.sessionID, kb.Filters{
		PayerName: cfg.PayerName,
		RuleType:  cfg.RuleType,
	})

	switch {
	case result.Rejected:
		return fmt.Errorf("question must not be empty")
	case result.Failure != nil:
		return fmt.Errorf("query failed (%s): %w", result.Failure.Reason, result.Failure.Err)
	}

	resp := result.Response
	fmt.Fprintln(cmd.OutOrStdout(), resp.Response)

	if ranked := ranking.Normalize(resp.Sources); len(ranked) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "\nSources:")
		for _, src := range ranked {
			line := fmt.Sprintf("  %3d%% match  %s · %s", src.Percent, src.PayerName, src.RuleType)
			if src.Title != "" {
				line += " · " + src.Title
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nSession: %s (%.0f ms)\n", resp.SessionID, resp.ResponseTimeMs)
	return nil
}
