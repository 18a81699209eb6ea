package fixturecmder

import (
	"github.com/spf13/cobra"

	"github.com/meridianclaims/payerkb/pkg/fixture"
	"github.com/meridianclaims/payerkb/pkg/logger"
)

const fixtureLongDesc string = `Run a local stand-in for the knowledge base API.

Serves the full wire contract (/chat/query, /payers, /alerts, /stats,
/health) over a small canned rule table, so the chat console can be
exercised without the real backend.

Examples:
  payerkb fixture
  payerkb fixture --listen :9000`

const fixtureShortDesc string = "Run the fixture API server"

type fixtureCommander struct {
	listenAddr string
	debug      bool
}

func NewFixtureCmd() *cobra.Command {
	cmder := &fixtureCommander{}

	cmd := &cobra.Command{
		Use:   "fixture",
		Short: fixtureShortDesc,
		Long:  fixtureLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run()
		},
	}

	cmd.Flags().StringVar(&cmder.listenAddr, "listen", ":8000", "Address to listen on")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *fixtureCommander) run() error {
	log := logger.NewLogger(c.debug)
	defer log.Sync()

	return fixture.New(log).Listen(c.listenAddr)
}
