package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"goalquest/internal/engine"
	"goalquest/internal/ui"
)

type boardModel struct {
	ctx context.Context
	svc *engine.Service

	width  int
	height int

	status *engine.Status
	habits []engine.HabitView
	goals  []engine.GoalView

	selected int

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	status *engine.Status
	habits []engine.HabitView
	goals  []engine.GoalView
	err    error
}

type completedMsg struct {
	res *engine.CompleteResult
	err error
}

func newBoardModel(ctx context.Context, svc *engine.Service) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		st, err := m.svc.Status(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		habits, err := m.svc.Habits(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		goals, err := m.svc.Goals(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{status: st, habits: habits, goals: goals}
	}
}

func (m boardModel) completeCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.CompleteHabit(m.ctx, id)
		return completedMsg{res: res, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.status = msg.status
		m.habits = msg.habits
		m.goals = msg.goals
		if m.selected >= len(m.habits) {
			m.selected = len(m.habits) - 1
		}
		if m.selected < 0 {
			m.selected = 0
		}
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case completedMsg:
		if msg.err != nil {
			m.lastLog = "Complete failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = completionLog(msg.res)
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.habits)-1 {
				m.selected++
			}
			return m, nil
		case "c", " ", "enter":
			if m.selected < 0 || m.selected >= len(m.habits) {
				return m, nil
			}
			h := m.habits[m.selected]
			if !h.Active {
				m.lastLog = "Habit is paused."
				return m, nil
			}
			if h.DoneToday {
				m.lastLog = "Already done today."
				return m, nil
			}
			m.lastLog = fmt.Sprintf("Completing %d…", h.ID)
			return m, m.completeCmd(h.ID)
		}
	}
	return m, nil
}

func completionLog(res *engine.CompleteResult) string {
	if res.AlreadyDone {
		return fmt.Sprintf("Habit %d was already done on %s.", res.HabitID, res.Date)
	}
	s := fmt.Sprintf("Habit %d: +%d XP +%d gold (streak %d)", res.HabitID, res.XPAwarded, res.GoldAwarded, res.Streak)
	if res.LeveledUp {
		s += fmt.Sprintf(" %s %d → %d", ui.BadgeLevelUp, res.LevelBefore, res.NewLevel)
	}
	for _, u := range res.Unlocked {
		s += " " + ui.IconTrophy + " " + u.Achievement.Title
	}
	return s
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := "\n" + m.lastLog

	leftW := 26
	if m.width > 0 {
		maxLeft := m.width / 2
		if maxLeft < leftW {
			leftW = maxLeft
		}
		if leftW < 18 {
			leftW = 18
		}
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	rows := len(linesLeft)
	if len(linesRight) > rows {
		rows = len(linesRight)
	}

	var body strings.Builder
	for i := 0; i < rows; i++ {
		l, r := "", ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	if m.status == nil {
		return "GoalQuest — loading…"
	}
	lp := m.status.Level
	return fmt.Sprintf("GoalQuest | %s | Level %d | XP %s %s | Gold %s",
		m.status.Rank.Title, lp.Level, ui.Number(m.status.Progress.TotalXP),
		ui.Bar(lp.XPIntoLevel, lp.XPForNext, 30), ui.Number(m.status.Progress.CurrentGold))
}

func (m boardModel) renderSidebar() string {
	if m.status == nil {
		return "Stats\n\nLoading…"
	}
	lines := []string{"Stats"}
	for _, s := range engine.AllStats {
		lines = append(lines, fmt.Sprintf("- %-12s %d", s.String(), engine.StatValue(&m.status.Progress, s)))
	}
	lines = append(lines, "")
	if m.status.XPMultiplier != 1 || m.status.GoldMultiplier != 1 {
		lines = append(lines, fmt.Sprintf("Boost XP %s Gold %s", ui.Multiplier(m.status.XPMultiplier), ui.Multiplier(m.status.GoldMultiplier)), "")
	}
	lines = append(lines, "Keys")
	lines = append(lines, "- ↑/↓ or j/k: move")
	lines = append(lines, "- c/space: complete")
	lines = append(lines, "- r: refresh")
	lines = append(lines, "- q: quit")
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}
	var out []string
	out = append(out, "Habits")
	if len(m.habits) == 0 {
		out = append(out, "(none yet)")
	}
	for i, h := range m.habits {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		mark := "[ ]"
		switch {
		case h.DoneToday:
			mark = "[x]"
		case !h.Active:
			mark = "[-]"
		case !h.DueToday:
			mark = "[.]"
		}
		out = append(out, fmt.Sprintf("%s%s %d %s (%s, streak %d)", cursor, mark, h.ID, h.Name, engine.Difficulty(h.Difficulty), h.Streak))
	}

	open := 0
	for _, g := range m.goals {
		if !g.Completed {
			open++
		}
	}
	if open > 0 {
		out = append(out, "", "Goals")
		for _, g := range m.goals {
			if g.Completed {
				continue
			}
			out = append(out, fmt.Sprintf("  %d %s %s %d%%", g.ID, g.Title, ui.Bar(int64(g.Progress), 100, 10), g.Progress))
		}
	}
	return strings.Join(out, "\n")
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
