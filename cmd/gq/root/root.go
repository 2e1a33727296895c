package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"goalquest/internal/ui"
)

const Version = "0.1.0"

var (
	flagVerbose bool
	flagDBPath  string
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gq",
		Short:         "GoalQuest — level up by keeping your habits",
		Long:          "GoalQuest is a local-first habit and goal tracker with XP, levels, streaks, gold and achievements.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log engine events to stderr")
	cmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Database path (overrides GQ_DB_PATH)")

	cmd.AddCommand(
		newHabitCmd(),
		newGoalCmd(),
		newStatusCmd(),
		newAchievementsCmd(),
		newShopCmd(),
		newEffectsCmd(),
		newGearCmd(),
		newBoardCmd(),
		newServeCmd(),
		newWisdomCmd(),
		newResetCmd(),
	)
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
