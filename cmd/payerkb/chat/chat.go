package chatcmder

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meridianclaims/payerkb/pkg/config"
	"github.com/meridianclaims/payerkb/pkg/conversation"
	"github.com/meridianclaims/payerkb/pkg/dashboard"
	"github.com/meridianclaims/payerkb/pkg/kb"
	"github.com/meridianclaims/payerkb/pkg/logger"
	"github.com/meridianclaims/payerkb/pkg/tui"
)

const chatLongDesc string = `Start an interactive chat session against the knowledge base.

Answers render as markdown with cited sources ranked by match
confidence. The dashboard sidebar refreshes on its own; a slow or
failing backend never interrupts the conversation.

Examples:
  payerkb chat
  payerkb chat --payer Aetna --rule-type timely_filing
  payerkb chat --server http://kb.internal:8000 --log-file ~/.payerkb/chat.log`

const chatShortDesc string = "Interactive chat session"

type chatCommander struct {
	configPath string
	serverURL  string
	payerName  string
	ruleType   string
	logFile    string
	debug      bool
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVar(&cmder.serverURL, "server", "", "Knowledge base API URL")
	cmd.Flags().StringVar(&cmder.payerName, "payer", "", "Filter queries to one payer")
	cmd.Flags().StringVar(&cmder.ruleType, "rule-type", "", "Filter queries to one rule type")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Write structured logs to this file")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
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
	if c.logFile != "" {
		cfg.LogFile = c.logFile
	}
	if c.debug {
		cfg.Debug = true
	}

	// The TUI owns the terminal, so logs either go to a file or nowhere.
	log := zap.NewNop()
	if cfg.LogFile != "" {
		log, err = logger.NewFileLogger(cfg.LogFile, cfg.Debug)
		if err != nil {
			return err
		}
	}
	defer log.Sync()

	client := kb.NewClient(kb.ClientConfig{
		BaseURL: cfg.ServerURL,
		Timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
	}, log)

	conv := conversation.New(log)
	poller := dashboard.NewPoller(client, dashboard.Config{
		Interval: time.Duration(cfg.PollIntervalSeconds) * time.Second,
	}, log)

	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go poller.Run(pollCtx)

	filters := kb.Filters{PayerName: cfg.PayerName, RuleType: cfg.RuleType}
	model := tui.New(client, conv, poller, filters, log)

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("chat session failed: %w", err)
	}
	return nil
}
