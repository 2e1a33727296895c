package root

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"goalquest/internal/engine"
	"goalquest/internal/ui"
)

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("id must be a positive integer")
	}
	return id, nil
}

// idArgs validates that the first n args are ids.
func idArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return fmt.Errorf("requires %d id argument(s)", n)
		}
		for _, a := range args[:n] {
			if _, err := parseID(a); err != nil {
				return err
			}
		}
		return nil
	}
}

func printLevelUp(w io.Writer, before, after int) {
	if after <= before {
		return
	}
	rank := engine.RankForLevel(after)
	fmt.Fprintf(w, "%s %s %d → %d (%s)\n", ui.IconSparkle, ui.BadgeLevelUp, before, after, ui.Rank(rank.Title, rank.Color))
}

func printUnlocks(w io.Writer, unlocks []engine.Unlock) {
	for _, u := range unlocks {
		a := u.Achievement
		fmt.Fprintf(w, "%s %s %s %s\n", ui.IconTrophy, ui.Gold.Render(a.Title), ui.Tier(a.Tier),
			ui.Muted.Render(fmt.Sprintf("+%s XP +%s gold", ui.Number(a.XP), ui.Number(a.Gold))))
	}
}
