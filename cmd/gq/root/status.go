package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"goalquest/internal/engine"
	"goalquest/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show level, gold, stats and active boosts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			st, err := svc.Status(ctx)
			if err != nil {
				return err
			}
			p := st.Progress
			lp := st.Level
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Status"))
			fmt.Fprintln(out, ui.LabelValue("Rank", ui.Rank(st.Rank.Title, st.Rank.Color)))
			fmt.Fprintln(out, ui.LabelValue("Level", lp.Level))
			fmt.Fprintln(out, ui.LabelValue("XP", fmt.Sprintf("%s %s/%s %s",
				ui.Bar(lp.XPIntoLevel, lp.XPForNext, 24), ui.Number(lp.XPIntoLevel), ui.Number(lp.XPForNext),
				ui.Muted.Render("(total "+ui.Number(p.TotalXP)+")"))))
			fmt.Fprintln(out, ui.LabelValue("Gold", fmt.Sprintf("%s %s %s", ui.IconCoin, ui.Gold.Render(ui.Number(p.CurrentGold)),
				ui.Muted.Render("(lifetime "+ui.Number(p.LifetimeGold)+")"))))
			fmt.Fprintln(out, ui.LabelValue("Achievements", fmt.Sprintf("%d/%d", st.Unlocked, st.Achievements)))
			if p.LastLevelUp != nil {
				fmt.Fprintln(out, ui.LabelValue("Last level up", p.LastLevelUp.In(svc.Location).Format("2006-01-02 15:04")))
			}
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render("Stats"))
			for _, s := range engine.AllStats {
				fmt.Fprintf(out, "- %-12s %d\n", s, engine.StatValue(&p, s))
			}

			if len(st.Effects) > 0 {
				fmt.Fprintln(out, "")
				fmt.Fprintln(out, ui.H2.Render(ui.IconBolt+" Boosts"))
				fmt.Fprintf(out, "- XP %s, gold %s\n", ui.Multiplier(st.XPMultiplier), ui.Multiplier(st.GoldMultiplier))
				printEffects(cmd, st.Effects, svc.Now())
			}
			return nil
		},
	}
	return cmd
}

func remaining(until, now time.Time) string {
	d := until.Sub(now).Round(time.Minute)
	if d < time.Minute {
		return "<1m"
	}
	return d.String()
}
