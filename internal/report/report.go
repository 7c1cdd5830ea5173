// Package report decodes raw compatibility-report entries into typed records.
package report

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

// FailureKind classifies why an entry could not become a Record.
type FailureKind string

const (
	// KindMalformedInput marks input that is not well-formed JSON.
	KindMalformedInput FailureKind = "malformed_input"
	// KindMissingAppID marks well-formed input without a numeric app id.
	KindMissingAppID FailureKind = "missing_app_id"
)

// Failure is a typed parse failure. Parsing never panics or returns a plain
// error for bad input; one bad entry must not stop a whole archive.
type Failure struct {
	Kind   FailureKind
	Detail string
}

func (f Failure) Error() string {
	return fmt.Sprintf("parse failure (%s): %s", f.Kind, f.Detail)
}

// Record is one observation of a game. It lives only for the duration of one
// file's processing pass.
type Record struct {
	AppID      int64
	Title      string
	ObservedAt time.Time
}

// appID accepts a JSON number or a numeric string. Anything else leaves the
// value unset, which surfaces as KindMissingAppID rather than a decode error.
type appID struct {
	value int64
	ok    bool
}

func (a *appID) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	a.value = v
	a.ok = true
	return nil
}

// payload mirrors the report wire format: app info is nested under
// app.steam, the report timestamp sits at the top level.
type payload struct {
	App struct {
		Title string `json:"title"`
		Steam struct {
			AppID appID `json:"appId"`
		} `json:"steam"`
	} `json:"app"`
	Timestamp int64 `json:"timestamp"`
}

// Parse decodes one entry's raw bytes. An entry holds either a single report
// object or an array of them. Records whose own timestamp is absent get
// fallback as their observation time. Parse is pure: all failure is returned,
// never raised.
func Parse(raw []byte, fallback time.Time) ([]Record, []Failure) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, []Failure{{Kind: KindMalformedInput, Detail: "empty input"}}
	}

	if trimmed[0] == '[' {
		var list []payload
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, []Failure{{Kind: KindMalformedInput, Detail: err.Error()}}
		}
		records := make([]Record, 0, len(list))
		var failures []Failure
		for i, p := range list {
			rec, fail := fromPayload(p, fallback)
			if fail != nil {
				fail.Detail = fmt.Sprintf("element %d: %s", i, fail.Detail)
				failures = append(failures, *fail)
				continue
			}
			records = append(records, rec)
		}
		return records, failures
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, []Failure{{Kind: KindMalformedInput, Detail: err.Error()}}
	}
	rec, fail := fromPayload(p, fallback)
	if fail != nil {
		return nil, []Failure{*fail}
	}
	return []Record{rec}, nil
}

func fromPayload(p payload, fallback time.Time) (Record, *Failure) {
	if !p.App.Steam.AppID.ok {
		return Record{}, &Failure{Kind: KindMissingAppID, Detail: "app.steam.appId absent or non-numeric"}
	}
	observed := fallback
	if p.Timestamp > 0 {
		observed = time.Unix(p.Timestamp, 0).UTC()
	}
	return Record{
		AppID:      p.App.Steam.AppID.value,
		Title:      p.App.Title,
		ObservedAt: observed,
	}, nil
}
