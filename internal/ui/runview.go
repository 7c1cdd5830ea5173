package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/protondex/protondex/internal/ingest"
)

// RunView renders ingestion events as terminal output. It implements
// ingest.Observer.
type RunView struct {
	out         io.Writer
	interactive bool
	bar         progress.Model
	lineDirty   bool
}

// NewRunView writes to out. When interactive is false, per-entry progress is
// suppressed and only file and run summaries are printed.
func NewRunView(out io.Writer, interactive bool) *RunView {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 30
	return &RunView{out: out, interactive: interactive, bar: bar}
}

func (v *RunView) RunStarted(runID string, archives, looseFiles int) {
	fmt.Fprintln(v.out, headerStyle.Render(fmt.Sprintf("Ingestion run %s", runID)))
	fmt.Fprintf(v.out, "  %d archive(s), %d loose JSON file(s)\n", archives, looseFiles)
}

func (v *RunView) FileStarted(path string, kind ingest.FileKind) {
	fmt.Fprintf(v.out, "%s %s\n", faintStyle.Render("processing"), filepath.Base(path))
}

func (v *RunView) FileProgress(path string, processed, total int) {
	if !v.interactive {
		return
	}
	if total > 0 {
		fmt.Fprintf(v.out, "\r  %s %d/%d", v.bar.ViewAs(float64(processed)/float64(total)), processed, total)
	} else if processed%500 == 0 {
		fmt.Fprintf(v.out, "\r  %d entries…", processed)
	}
	v.lineDirty = true
}

func (v *RunView) FileCommitted(path string, stats ingest.FileStats) {
	v.clearLine()
	line := fmt.Sprintf("  %s %s: %d entries, %d failed, %d new, %d updated (%s)",
		okStyle.Render("✔"), filepath.Base(path),
		stats.Entries, stats.Failed, stats.Inserted, stats.Updated,
		stats.Elapsed.Round(time.Millisecond))
	if stats.Deleted {
		line += faintStyle.Render(" [removed]")
	}
	fmt.Fprintln(v.out, line)
}

func (v *RunView) FileSkipped(path string, err error) {
	v.clearLine()
	fmt.Fprintf(v.out, "  %s %s: %v\n", warnStyle.Render("skipped"), filepath.Base(path), err)
}

func (v *RunView) RunFinished(sum ingest.Summary) {
	var b strings.Builder
	fmt.Fprintf(&b, "Entries processed: %d\n", sum.Entries)
	fmt.Fprintf(&b, "Entries failed:    %d\n", sum.Failed)
	fmt.Fprintf(&b, "Games added:       %d\n", sum.Inserted)
	fmt.Fprintf(&b, "Games updated:     %d\n", sum.Updated)
	fmt.Fprintf(&b, "Files skipped:     %d\n", sum.FilesSkipped)
	fmt.Fprintf(&b, "Games in database: %d\n", sum.GamesInDB)
	if sum.DBSizeMB > 0 {
		fmt.Fprintf(&b, "Database size:     %.2f MB\n", sum.DBSizeMB)
	}
	fmt.Fprintf(&b, "Elapsed:           %s", sum.Elapsed.Round(time.Millisecond))
	fmt.Fprintln(v.out, summaryBox.Render(b.String()))
}

func (v *RunView) clearLine() {
	if v.lineDirty {
		fmt.Fprint(v.out, "\r"+strings.Repeat(" ", 60)+"\r")
		v.lineDirty = false
	}
}
