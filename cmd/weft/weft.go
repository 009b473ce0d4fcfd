// Package weftcmder
package weftcmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/weft/cmd/weft/config"
	resetcmder "github.com/papercomputeco/weft/cmd/weft/reset"
	servecmder "github.com/papercomputeco/weft/cmd/weft/serve"
	statuscmder "github.com/papercomputeco/weft/cmd/weft/status"
	versioncmder "github.com/papercomputeco/weft/cmd/version"
)

const weftLongDesc string = `Weft is a validated reasoning-session engine.

It records chains of reasoning thoughts, validates revisions and branches,
detects stagnation, and audits candidate solution paths before a chain is
accepted as done.

Run the server using:
  weft serve           Run the API and MCP server`

const weftShortDesc string = "Weft - Validated Reasoning Sessions"

func NewWeftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weft",
		Short: weftShortDesc,
		Long:  weftLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .weft/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(resetcmder.NewResetCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
