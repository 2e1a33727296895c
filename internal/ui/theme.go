package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// GoalQuest theme (CLI + TUI).

const (
	IconHabit   = "🔁"
	IconGoal    = "🎯"
	IconSparkle = "✨"
	IconPlus    = "➕"
	IconDone    = "✅"
	IconTrophy  = "🏆"
	IconBolt    = "⚡"
	IconFlame   = "🔥"
	IconCoin    = "🪙"
	IconPotion  = "🧪"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconLock    = "🔒"
	IconScroll  = "📜"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
)

var tierColors = map[string]lipgloss.Color{
	"bronze":    lipgloss.Color("#cd7f32"),
	"silver":    lipgloss.Color("#c0c0c0"),
	"gold":      lipgloss.Color("#ffd700"),
	"platinum":  lipgloss.Color("#7dd3fc"),
	"legendary": lipgloss.Color("#a855f7"),
}

var rarityColors = map[string]lipgloss.Color{
	"common":    cMuted,
	"uncommon":  cGood,
	"rare":      cPrimary,
	"epic":      lipgloss.Color("#a855f7"),
	"legendary": cWarn,
}

var printer = message.NewPrinter(language.English)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// Number groups digits: 12345 -> "12,345".
func Number(n int64) string {
	return printer.Sprintf("%d", n)
}

// Multiplier renders a factor like "x1.5"; 1 renders as "x1".
func Multiplier(f float64) string {
	return printer.Sprintf("x%g", f)
}

// Rank colors a rank title with its band color.
func Rank(title, color string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(title)
}

func Tier(tier string) string {
	c, ok := tierColors[strings.ToLower(tier)]
	if !ok {
		return Muted.Render(tier)
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c).Render(tier)
}

func Rarity(rarity string) string {
	c, ok := rarityColors[strings.ToLower(rarity)]
	if !ok {
		return Muted.Render(rarity)
	}
	return lipgloss.NewStyle().Foreground(c).Render(rarity)
}

func DoneText(done bool) string {
	if done {
		return Good.Render("done")
	}
	return Warn.Render("pending")
}

// Bar is a plain ASCII progress bar.
func Bar(value, total int64, width int) string {
	if total <= 0 {
		total = 1
	}
	if width <= 3 {
		width = 3
	}
	if value < 0 {
		value = 0
	}
	if value > total {
		value = total
	}
	filled := int(float64(value) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
