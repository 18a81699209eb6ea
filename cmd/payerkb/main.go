package main

import (
	"os"

	"github.com/spf13/cobra"

	askcmder "github.com/meridianclaims/payerkb/cmd/payerkb/ask"
	chatcmder "github.com/meridianclaims/payerkb/cmd/payerkb/chat"
	fixturecmder "github.com/meridianclaims/payerkb/cmd/payerkb/fixture"
	statuscmder "github.com/meridianclaims/payerkb/cmd/payerkb/status"
)

func main() {
	root := &cobra.Command{
		Use:   "payerkb",
		Short: "Chat console for the healthcare payer knowledge base",
		Long: `payerkb is a terminal front end for the payer knowledge base API.

It answers questions about payer rules with cited sources, keeps a
conversation session across turns, and shows a live dashboard of payers,
alerts, and system stats.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		chatcmder.NewChatCmd(),
		askcmder.NewAskCmd(),
		statuscmder.NewStatusCmd(),
		fixturecmder.NewFixtureCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
