package root

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"goalquest/internal/catalog"
	"goalquest/internal/storage"
	"goalquest/internal/ui"
)

func newShopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shop",
		Short: "Spend gold on boosts",
	}
	cmd.AddCommand(newShopListCmd(), newShopBuyCmd(), newShopUseCmd())
	return cmd
}

func newShopListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List shop items and your inventory",
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
			inv, err := svc.Inventory(ctx)
			if err != nil {
				return err
			}
			owned := map[string]int{}
			for _, it := range inv {
				owned[it.ItemID] = it.Quantity
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconCoin, "Shop "+ui.Muted.Render("(gold "+ui.Number(st.Progress.CurrentGold)+")")))
			for _, it := range svc.Catalog().Items() {
				lock := ""
				if st.Progress.Level < it.LevelRequired {
					lock = " " + ui.IconLock + ui.Muted.Render(fmt.Sprintf(" level %d", it.LevelRequired))
				}
				fmt.Fprintf(out, "- %s %s %s %s %s%s\n", ui.Key.Render(it.ID), it.Name, ui.Rarity(it.Rarity),
					ui.Gold.Render(ui.Number(it.Price)+"g"),
					ui.Muted.Render(fmt.Sprintf("%s, owned %d/%d", describeEffect(it), owned[it.ID], it.MaxStack)),
					lock)
			}
			return nil
		},
	}
}

func describeEffect(it catalog.ShopItem) string {
	if it.IsGear() {
		return fmt.Sprintf("%s gear: %s XP %s", it.Slot, it.Effect.Category, ui.Multiplier(it.Effect.Value))
	}
	return fmt.Sprintf("%s %s for %s", it.Effect.Kind, ui.Multiplier(it.Effect.Value), it.Effect.Duration)
}

func newShopBuyCmd() *cobra.Command {
	var qty int

	cmd := &cobra.Command{
		Use:   "buy <item-id>",
		Short: "Buy an item",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("item id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.Buy(ctx, args[0], qty)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Bought %dx %s for %s gold %s\n", ui.IconPotion, res.Quantity, res.ItemID,
				ui.Gold.Render(ui.Number(res.GoldSpent)), ui.Muted.Render(fmt.Sprintf("(%s left, %d owned)", ui.Number(res.GoldLeft), res.Owned)))
			printUnlocks(out, res.Unlocked)
			return nil
		},
	}
	cmd.Flags().IntVarP(&qty, "qty", "n", 1, "Quantity")
	return cmd
}

func newShopUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <item-id>",
		Short: "Use an item from your inventory",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("item id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.Use(ctx, args[0])
			if err != nil {
				return err
			}
			e := res.Effect
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s active until %s %s\n", ui.IconBolt, e.Kind, ui.Multiplier(e.Value),
				e.ExpiresAt.In(svc.Location).Format("2006-01-02 15:04"), ui.Muted.Render(fmt.Sprintf("(%d left)", res.Remaining)))
			return nil
		},
	}
}

func newEffectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "effects",
		Short: "List active boosts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			effects, err := svc.ActiveEffects(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconBolt, "Active effects"))
			if len(effects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(none)"))
				return nil
			}
			printEffects(cmd, effects, svc.Now())
			return nil
		},
	}
}

func printEffects(cmd *cobra.Command, effects []storage.Effect, now time.Time) {
	for _, e := range effects {
		fmt.Fprintf(cmd.OutOrStdout(), "- %s %s %s %s\n", e.Kind, ui.Multiplier(e.Value), ui.Muted.Render("from "+e.Source),
			ui.Muted.Render(remaining(e.ExpiresAt, now)+" left"))
	}
}
