package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"goalquest/internal/catalog"
	"goalquest/internal/ui"
)

func newGearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gear",
		Short: "Show worn gear",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			gear, err := svc.Gear(ctx)
			if err != nil {
				return err
			}
			worn := map[string]catalog.ShopItem{}
			for _, g := range gear {
				worn[g.Slot] = g.Item
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Gear"))
			for _, slot := range catalog.Slots {
				it, ok := worn[slot]
				if !ok {
					fmt.Fprintf(out, "- %s %s\n", ui.Key.Render(slot), ui.Muted.Render("(empty)"))
					continue
				}
				fmt.Fprintf(out, "- %s %s %s\n", ui.Key.Render(slot), it.Name, ui.Muted.Render(describeEffect(it)))
			}
			return nil
		},
	}
	cmd.AddCommand(newGearEquipCmd(), newGearRemoveCmd())
	return cmd
}

func newGearEquipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "equip <item-id>",
		Short: "Wear an owned item",
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

			res, err := svc.Equip(ctx, args[0])
			if err != nil {
				return err
			}
			msg := fmt.Sprintf("%s Equipped %s in %s", ui.IconSparkle, res.ItemID, res.Slot)
			if res.Replaced != "" {
				msg += " " + ui.Muted.Render("(replaced "+res.Replaced+")")
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func newGearRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <slot>",
		Aliases: []string{"unequip"},
		Short:   "Empty a gear slot",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("slot is required")
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

			removed, err := svc.Unequip(ctx, args[0])
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.IconInfo, ui.Muted.Render("Nothing worn in "+args[0]+"."))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Emptied %s\n", ui.IconDone, args[0])
			return nil
		},
	}
}
