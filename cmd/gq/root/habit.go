package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"goalquest/internal/engine"
	"goalquest/internal/ui"
)

func newHabitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "habit",
		Aliases: []string{"h"},
		Short:   "Manage daily habits",
	}
	cmd.AddCommand(
		newHabitAddCmd(),
		newHabitListCmd(),
		newHabitDoneCmd(),
		newHabitToggleCmd(),
		newHabitDifficultyCmd(),
	)
	return cmd
}

func newHabitAddCmd() *cobra.Command {
	var (
		desc     string
		category string
		diff     string
		freq     string
		days     string
		every    int
		priority bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a habit",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || strings.TrimSpace(strings.Join(args, " ")) == "" {
				return errors.New("name is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := engine.ParseDifficulty(diff)
			if err != nil {
				return err
			}
			f, err := engine.ParseFrequency(freq)
			if err != nil {
				return err
			}
			weekdays, err := engine.ParseFrequencyDays(days)
			if err != nil {
				return err
			}
			if len(weekdays) > 0 && !cmd.Flags().Changed("freq") {
				f = engine.FrequencySpecific
			}
			if every > 0 && !cmd.Flags().Changed("freq") {
				f = engine.FrequencyCustom
			}

			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.CreateHabit(ctx, engine.CreateHabitInput{
				Name:           strings.Join(args, " "),
				Description:    desc,
				Category:       category,
				Difficulty:     d,
				Frequency:      f,
				FrequencyDays:  weekdays,
				CustomInterval: every,
				Priority:       priority,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Added habit %d %s\n", ui.IconPlus, res.ID, ui.Muted.Render(fmt.Sprintf("(%s, +%d XP)", d, engine.HabitXP(d))))
			printUnlocks(out, res.Unlocked)
			return nil
		},
	}

	cmd.Flags().StringVar(&desc, "desc", "", "Description")
	cmd.Flags().StringVarP(&category, "category", "c", "personal", "Category (fitness, learning, health, ...)")
	cmd.Flags().StringVarP(&diff, "diff", "d", "easy", "Difficulty (1-3 or easy|medium|hard)")
	cmd.Flags().StringVar(&freq, "freq", "daily", "Frequency (daily|weekdays|weekends|specific|custom)")
	cmd.Flags().StringVar(&days, "days", "", "Weekdays for the specific frequency, e.g. mon,wed,fri")
	cmd.Flags().IntVar(&every, "every", 0, "Interval in days for the custom frequency")
	cmd.Flags().BoolVar(&priority, "priority", false, "Mark as a priority habit")
	return cmd
}

func newHabitListCmd() *cobra.Command {
	var dueOnly bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List habits with streaks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			habits, err := svc.Habits(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconHabit, "Habits"))
			shown := 0
			for _, h := range habits {
				if dueOnly && (!h.DueToday || !h.Active) {
					continue
				}
				shown++
				state := ui.DoneText(h.DoneToday)
				if !h.Active {
					state = ui.Muted.Render("paused")
				}
				streak := ""
				if h.Streak > 0 {
					streak = fmt.Sprintf(" %s %d", ui.IconFlame, h.Streak)
				}
				fmt.Fprintf(out, "- %d %s %s %s%s\n", h.ID, h.Name, state,
					ui.Muted.Render(fmt.Sprintf("[%s, %s, %s]", h.Category, engine.Difficulty(h.Difficulty), engine.DescribeSchedule(h.Habit))), streak)
			}
			if shown == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(none)"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dueOnly, "due", false, "Only show active habits due today")
	return cmd
}

func newHabitDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "done <id>",
		Aliases: []string{"do"},
		Short:   "Check a habit in for today",
		Args:    idArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := parseID(args[0])
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.CompleteHabit(ctx, id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.AlreadyDone {
				fmt.Fprintf(out, "%s %s\n", ui.IconInfo, ui.Muted.Render(fmt.Sprintf("Habit %d is already done for %s.", id, res.Date)))
				return nil
			}
			mult := ""
			if res.StreakMultiplier != 1 {
				mult = " " + ui.Multiplier(res.StreakMultiplier)
			}
			if res.GearMultiplier > 1 {
				mult += ", gear " + ui.Multiplier(res.GearMultiplier)
			}
			fmt.Fprintf(out, "%s Habit %d done: %s XP, %s gold, +1 %s %s\n", ui.IconDone, id,
				ui.Good.Render("+"+ui.Number(res.XPAwarded)), ui.Gold.Render("+"+ui.Number(res.GoldAwarded)),
				res.Stat, ui.Muted.Render(fmt.Sprintf("(%s streak %d%s)", ui.IconFlame, res.Streak, mult)))
			printLevelUp(out, res.LevelBefore, res.NewLevel)
			printUnlocks(out, res.Unlocked)
			return nil
		},
	}
}

func newHabitToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Pause or resume a habit",
		Args:  idArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := parseID(args[0])
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			active, err := svc.ToggleHabit(ctx, id)
			if err != nil {
				return err
			}
			state := "paused"
			if active {
				state = "active"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Habit %d is now %s\n", ui.IconHabit, id, state)
			return nil
		},
	}
}

func newHabitDifficultyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "difficulty <id> <easy|medium|hard>",
		Short: "Change a habit's difficulty for future check-ins",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("id and difficulty are required")
			}
			return idArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := parseID(args[0])
			d, err := engine.ParseDifficulty(args[1])
			if err != nil {
				return err
			}
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.UpdateHabitDifficulty(ctx, id, d); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Habit %d is now %s\n", ui.IconInfo, id, d)
			return nil
		},
	}
}
