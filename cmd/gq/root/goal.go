package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"goalquest/internal/engine"
	"goalquest/internal/ui"
)

func newGoalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "goal",
		Aliases: []string{"g"},
		Short:   "Manage long-term goals",
	}
	step := &cobra.Command{
		Use:   "step",
		Short: "Manage goal steps",
	}
	step.AddCommand(newGoalStepAddCmd(), newGoalStepDoneCmd())
	cmd.AddCommand(newGoalAddCmd(), newGoalListCmd(), newGoalProgressCmd(), step)
	return cmd
}

func newGoalAddCmd() *cobra.Command {
	var (
		desc     string
		category string
		diff     string
		deadline string
		steps    []string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a goal",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || strings.TrimSpace(strings.Join(args, " ")) == "" {
				return errors.New("title is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := engine.ParseDifficulty(diff)
			if err != nil {
				return err
			}
			var due *time.Time
			if deadline != "" {
				t, err := time.ParseInLocation(engine.DateLayout, deadline, time.Local)
				if err != nil {
					return fmt.Errorf("deadline must be YYYY-MM-DD: %w", err)
				}
				due = &t
			}

			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.CreateGoal(ctx, engine.CreateGoalInput{
				Title:       strings.Join(args, " "),
				Description: desc,
				Category:    category,
				Difficulty:  d,
				Deadline:    due,
				Steps:       steps,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Added goal %d %s\n", ui.IconPlus, res.ID, ui.Muted.Render(fmt.Sprintf("(%s, +%s XP on completion)", d, ui.Number(engine.GoalXP(d)))))
			printUnlocks(out, res.Unlocked)
			return nil
		},
	}

	cmd.Flags().StringVar(&desc, "desc", "", "Description")
	cmd.Flags().StringVarP(&category, "category", "c", "personal", "Category")
	cmd.Flags().StringVarP(&diff, "diff", "d", "easy", "Difficulty (1-3 or easy|medium|hard)")
	cmd.Flags().StringVar(&deadline, "deadline", "", "Deadline (YYYY-MM-DD)")
	cmd.Flags().StringArrayVarP(&steps, "step", "s", nil, "Step title (repeatable)")
	return cmd
}

func newGoalListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List goals and their steps",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			goals, err := svc.Goals(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconGoal, "Goals"))
			shown := 0
			for _, g := range goals {
				if g.Completed && !all {
					continue
				}
				shown++
				state := fmt.Sprintf("%s %d%%", ui.Bar(int64(g.Progress), 100, 20), g.Progress)
				if g.Completed {
					state = ui.Good.Render("completed")
					if g.CompletedOn != nil {
						state += ui.Muted.Render(" on " + *g.CompletedOn)
					}
				}
				fmt.Fprintf(out, "- %d %s %s %s\n", g.ID, g.Title, state, ui.Muted.Render(fmt.Sprintf("[%s, %s]", g.Category, engine.Difficulty(g.Difficulty))))
				if g.Deadline != nil && !g.Completed {
					fmt.Fprintf(out, "    %s\n", ui.Muted.Render("due "+g.Deadline.Format(engine.DateLayout)))
				}
				for _, st := range g.Steps {
					mark := "[ ]"
					if st.Completed {
						mark = "[x]"
					}
					fmt.Fprintf(out, "    %s %d %s\n", mark, st.ID, st.Title)
				}
			}
			if shown == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(none)"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include completed goals")
	return cmd
}

func printGoalResult(out io.Writer, res *engine.GoalResult) {
	if res.JustCompleted {
		fmt.Fprintf(out, "%s Goal %d completed: %s XP, %s gold\n", ui.IconTrophy, res.GoalID,
			ui.Good.Render("+"+ui.Number(res.XPAwarded)), ui.Gold.Render("+"+ui.Number(res.GoldAwarded)))
	} else if res.Completed {
		fmt.Fprintf(out, "%s %s\n", ui.IconInfo, ui.Muted.Render(fmt.Sprintf("Goal %d is already completed.", res.GoalID)))
	} else {
		fmt.Fprintf(out, "%s Goal %d at %s %d%%\n", ui.IconGoal, res.GoalID, ui.Bar(int64(res.Progress), 100, 20), res.Progress)
	}
	printLevelUp(out, res.LevelBefore, res.NewLevel)
	printUnlocks(out, res.Unlocked)
}

func newGoalProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress <id> <percent>",
		Short: "Set a goal's progress (0-100)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("id and percent are required")
			}
			if _, err := strconv.Atoi(strings.TrimSuffix(args[1], "%")); err != nil {
				return errors.New("percent must be an integer")
			}
			return idArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := parseID(args[0])
			pct, _ := strconv.Atoi(strings.TrimSuffix(args[1], "%"))
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.UpdateGoalProgress(ctx, id, pct)
			if err != nil {
				return err
			}
			printGoalResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func newGoalStepAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <goal-id> <title>",
		Short: "Add a step to a goal",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errors.New("goal id and title are required")
			}
			return idArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			goalID, _ := parseID(args[0])
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := svc.AddGoalStep(ctx, goalID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Added step %d to goal %d\n", ui.IconPlus, id, goalID)
			return nil
		},
	}
}

func newGoalStepDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <step-id>",
		Short: "Mark a goal step done",
		Args:  idArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := parseID(args[0])
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.CompleteGoalStep(ctx, id)
			if err != nil {
				return err
			}
			printGoalResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}
