package ingest

import "time"

// FileKind distinguishes the two input shapes.
type FileKind string

const (
	KindArchive FileKind = "archive"
	KindJSON    FileKind = "json"
)

// FileStats summarizes one committed file.
type FileStats struct {
	Entries  int // valid records folded
	Failed   int // entries that could not be read or parsed
	Inserted int // games newly created by this file's commit
	Updated  int // games that already existed
	Deleted  bool
	Elapsed  time.Duration
}

// Summary summarizes a whole run.
type Summary struct {
	RunID        string
	Archives     int
	LooseFiles   int
	FilesSkipped int
	Entries      int
	Failed       int
	Inserted     int
	Updated      int
	GamesInDB    int64
	DBSizeMB     float64
	Elapsed      time.Duration
}

// Observer receives the orchestrator's state-machine transitions. Rendering
// (progress bars, log lines) lives behind this interface so the pipeline
// itself stays testable.
type Observer interface {
	RunStarted(runID string, archives, looseFiles int)
	FileStarted(path string, kind FileKind)
	// FileProgress reports processed entry counts; total is negative when
	// unknown (archives are streamed, their length is not known up front).
	FileProgress(path string, processed, total int)
	FileCommitted(path string, stats FileStats)
	FileSkipped(path string, err error)
	RunFinished(sum Summary)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) RunStarted(string, int, int)     {}
func (NopObserver) FileStarted(string, FileKind)    {}
func (NopObserver) FileProgress(string, int, int)   {}
func (NopObserver) FileCommitted(string, FileStats) {}
func (NopObserver) FileSkipped(string, error)       {}
func (NopObserver) RunFinished(Summary)             {}
