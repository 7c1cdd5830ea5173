package ingest

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// discoverInputs lists the archive and loose JSON files under dir, each set
// sorted by name. Archives are processed before loose files, matching the
// monthly-dump-then-increments layout of the reports directory.
func discoverInputs(fs afero.Fs, dir string) (archives, loose []string, err error) {
	if _, err := fs.Stat(dir); err != nil {
		return nil, nil, fmt.Errorf("reports directory: %w", err)
	}
	archives, err = afero.Glob(fs, filepath.Join(dir, "*.tar.gz"))
	if err != nil {
		return nil, nil, fmt.Errorf("scan archives: %w", err)
	}
	loose, err = afero.Glob(fs, filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("scan json files: %w", err)
	}
	sort.Strings(archives)
	sort.Strings(loose)
	return archives, loose, nil
}

// Report dumps are named reports_<mon><n>_<year>.{tar.gz,json}, e.g.
// reports_jan2_2020.tar.gz.
var fileStampPattern = regexp.MustCompile(`^reports_([a-z]+?)\d*_(\d{4})\.(?:tar\.gz|json)$`)

var monthIndex = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// fallbackTimestamp picks the observation time for records that carry no
// timestamp of their own: the month/year encoded in the file name (pinned to
// the 15th, the middle of the dump's window), then the file's modification
// time, then now. Files named *piiremoved* are re-published snapshots whose
// name carries no date; they get now directly.
func fallbackTimestamp(fs afero.Fs, path string, now time.Time) time.Time {
	name := filepath.Base(path)
	if strings.Contains(name, "piiremoved") {
		return now
	}
	if m := fileStampPattern.FindStringSubmatch(name); m != nil {
		if mon, ok := monthIndex[m[1]]; ok {
			year, err := strconv.Atoi(m[2])
			if err == nil {
				return time.Date(year, mon, 15, 0, 0, 0, 0, time.UTC)
			}
		}
	}
	if fi, err := fs.Stat(path); err == nil && !fi.ModTime().IsZero() {
		return fi.ModTime().UTC()
	}
	return now
}
