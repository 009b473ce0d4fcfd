// Package resetcmder provides the reset command for wiping the persisted
// session snapshot.
package resetcmder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/weft/pkg/cliui"
	"github.com/papercomputeco/weft/pkg/config"
	"github.com/papercomputeco/weft/pkg/dotdir"
	"github.com/papercomputeco/weft/pkg/persist"
)

const resetLongDesc string = `Remove the persisted session snapshot.

Deletes the snapshot file from the .weft/ directory so the next server
start begins with an empty session. A running server is not affected;
use the weft_reset MCP tool to reset a live session.

Examples:
  weft reset`

const resetShortDesc string = "Remove the persisted session snapshot"

func NewResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: resetShortDesc,
		Long:  resetLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runReset(configDir)
		},
	}

	return cmd
}

func runReset(configDir string) error {
	v, err := config.InitViper(configDir)
	if err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}

	dir := v.GetString("storage.dir")
	if dir == "" {
		dir, err = dotdir.NewManager().Target(configDir)
		if err != nil {
			return fmt.Errorf("resolving storage dir: %w", err)
		}
	}

	path := filepath.Join(dir, v.GetString("storage.file"))
	ttl := time.Duration(v.GetUint("session.ttl_hours")) * time.Hour

	driver := persist.NewFileDriver(path, ttl)
	defer driver.Close()

	return cliui.Step(os.Stdout, fmt.Sprintf("Removing %s", path), func() error {
		return driver.Clear(context.Background())
	})
}
