package root

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"goalquest/internal/ui"
	"goalquest/internal/wisdom"
)

func newWisdomCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wisdom [prompt]",
		Short: "Print the quote of the day",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			d, err := wisdom.NewDaily()
			if err != nil {
				return err
			}
			d.Location = cfg.Location()

			var s wisdom.Suggester = d
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			text, err := s.Suggest(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.IconScroll, text)
			return nil
		},
	}
}
