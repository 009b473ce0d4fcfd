// Package statuscmder provides the status command for displaying the
// persisted session snapshot.
package statuscmder

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/weft/pkg/cliui"
	"github.com/papercomputeco/weft/pkg/config"
	"github.com/papercomputeco/weft/pkg/dotdir"
	"github.com/papercomputeco/weft/pkg/persist"
	"github.com/papercomputeco/weft/pkg/utils"
)

const statusLongDesc string = `Show the persisted session state.

Reads the session snapshot from the local .weft/ directory (or ~/.weft/)
and displays the session id, goal, and recent thoughts.

If no snapshot exists, or the snapshot has expired, indicates that the
next submission will start a fresh session.

Examples:
  weft status`

const statusShortDesc string = "Show persisted session state"

// previewThoughts is how many trailing thoughts the status output shows.
const previewThoughts = 10

func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runStatus(configDir)
		},
	}

	return cmd
}

func runStatus(configDir string) error {
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

	snap, err := driver.Load(context.Background())
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	if snap == nil {
		fmt.Printf("  %s No saved session. Next submission starts fresh.\n", cliui.DimStyle.Render("●"))
		return nil
	}

	fmt.Printf("\n  %s  %s\n", cliui.KeyStyle.Render("Session:  "), cliui.ValueStyle.Render(snap.CurrentSessionID))
	if snap.Goal != "" {
		fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Goal:     "), cliui.ValueStyle.Render(utils.Truncate(snap.Goal, 72)))
	}
	fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Thoughts: "), cliui.ValueStyle.Render(strconv.Itoa(len(snap.History))))
	fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Branches: "), cliui.ValueStyle.Render(strconv.Itoa(len(snap.Branches))))
	fmt.Printf("  %s  %s\n\n", cliui.KeyStyle.Render("Saved at: "), cliui.DimStyle.Render(snap.SavedAt.Format(time.RFC3339)))

	start := 0
	if len(snap.History) > previewThoughts {
		start = len(snap.History) - previewThoughts
		fmt.Printf("  %s\n", cliui.DimStyle.Render(fmt.Sprintf("… %d earlier thoughts", start)))
	}

	for _, t := range snap.History[start:] {
		marker := " "
		switch {
		case t.IsRevision:
			marker = "~"
		case t.BranchID != "":
			marker = "+"
		}
		preview := utils.Truncate(t.Text, 72)
		fmt.Printf("  %s %s %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%3d.", t.Number)),
			cliui.KeyStyle.Render(marker),
			cliui.PreviewStyle.Render(preview),
		)
	}

	fmt.Println()
	return nil
}
