package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"goalquest/internal/ui"
)

func newAchievementsCmd() *cobra.Command {
	var (
		all      bool
		category string
		check    bool
	)

	cmd := &cobra.Command{
		Use:     "achievements",
		Aliases: []string{"ach"},
		Short:   "List achievements",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			if check {
				unlocks, err := svc.EvaluateAchievements(ctx)
				if err != nil {
					return err
				}
				printUnlocks(out, unlocks)
			}

			views, err := svc.Achievements(ctx)
			if err != nil {
				return err
			}
			unlocked := 0
			for _, v := range views {
				if v.Unlocked {
					unlocked++
				}
			}
			fmt.Fprintln(out, ui.Heading(ui.IconTrophy, fmt.Sprintf("Achievements %d/%d", unlocked, len(views))))
			for _, v := range views {
				if category != "" && v.Category != category {
					continue
				}
				if !v.Unlocked && !all {
					continue
				}
				icon := ui.IconLock
				when := ""
				if v.Unlocked {
					icon = ui.IconDone
					if v.UnlockedAt != nil {
						when = ui.Muted.Render(" " + v.UnlockedAt.In(svc.Location).Format("2006-01-02"))
					}
				}
				fmt.Fprintf(out, "%s %s %s %s%s\n", icon, v.Title, ui.Tier(v.Tier), ui.Muted.Render(v.Description), when)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include locked achievements")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only this category (streaks, habits, goals, levels, stats, special, legendary)")
	cmd.Flags().BoolVar(&check, "check", false, "Re-evaluate unlocks before listing")
	return cmd
}
