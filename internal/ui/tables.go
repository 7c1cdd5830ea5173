package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/protondex/protondex/internal/store"
)

const timeLayout = "2006-01-02"

func formatSeen(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(timeLayout)
}

// RenderGames prints a compact table of games.
func RenderGames(out io.Writer, games []store.Game) {
	if len(games) == 0 {
		fmt.Fprintln(out, "No games found.")
		return
	}

	titleWidth := terminalWidth() - 46
	if titleWidth < 20 {
		titleWidth = 20
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%-10s  %-*s  %-10s  %-10s  %8s",
		"App ID", titleWidth, "Title", "First seen", "Last seen", "Reports")))
	for _, g := range games {
		title := g.Title
		if len(title) > titleWidth {
			title = title[:titleWidth-1] + "…"
		}
		fmt.Fprintf(out, "%-10d  %-*s  %-10s  %-10s  %8d\n",
			g.AppID, titleWidth, title, formatSeen(g.FirstSeen), formatSeen(g.LastSeen), g.ReportCount)
	}
	fmt.Fprintln(out, faintStyle.Render(fmt.Sprintf("%d game(s)", len(games))))
}

// RenderGameDetail prints every field of one game.
func RenderGameDetail(out io.Writer, g store.Game) {
	detail := fmt.Sprintf("App ID:       %d\nTitle:        %s\nFirst seen:   %s\nLast seen:    %s\nReport count: %d",
		g.AppID, g.Title, formatSeen(g.FirstSeen), formatSeen(g.LastSeen), g.ReportCount)
	fmt.Fprintln(out, summaryBox.Render(detail))
}

// RenderStats prints database-wide statistics.
func RenderStats(out io.Writer, st store.Stats) {
	body := fmt.Sprintf("Total games:         %d\nMax reports:         %d\nAvg reports:         %.2f\nOldest first_seen:   %s\nNewest first_seen:   %s",
		st.TotalGames, st.MaxReports, st.AvgReports, formatSeen(st.OldestSeen), formatSeen(st.NewestSeen))
	fmt.Fprintln(out, summaryBox.Render(body))
}
