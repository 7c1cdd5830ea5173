// Package steam fetches the canonical app catalog from the Steam Web API.
package steam

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	json "github.com/goccy/go-json"
)

// DefaultAppListURL is the public, keyless app list endpoint.
const DefaultAppListURL = "https://api.steampowered.com/ISteamApps/GetAppList/v2/"

// App is one catalog entry as returned by the API.
type App struct {
	AppID int64  `json:"appid"`
	Name  string `json:"name"`
}

// Client fetches the Steam app catalog.
type Client struct {
	url  string
	http *http.Client
}

// NewClient returns a Client for the given endpoint; an empty url selects
// DefaultAppListURL.
func NewClient(url string) *Client {
	if url == "" {
		url = DefaultAppListURL
	}
	return &Client{
		url:  url,
		http: &http.Client{Timeout: 60 * time.Second},
	}
}

// FetchApps downloads the full app list.
func (c *Client) FetchApps(ctx context.Context) ([]App, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch app list: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch app list: unexpected status %s", resp.Status)
	}

	var payload struct {
		AppList struct {
			Apps []App `json:"apps"`
		} `json:"applist"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode app list: %w", err)
	}
	return payload.AppList.Apps, nil
}

// DuplicateReport summarizes the kinds of duplication present in a fetched
// catalog. The API routinely returns the same app id several times, sometimes
// under different names.
type DuplicateReport struct {
	TotalApps       int
	UniqueIDs       int
	EmptyNames      int
	DuplicatedIDs   int                // ids appearing more than once
	ExactDuplicates int                // (id, name) pairs appearing more than once
	ConflictingIDs  map[int64][]string // ids carrying two or more distinct names
}

// AnalyzeDuplicates inspects a fetched catalog before it is loaded, since
// insert-or-replace will silently collapse duplicates.
func AnalyzeDuplicates(apps []App) DuplicateReport {
	idCounts := make(map[int64]int, len(apps))
	pairCounts := make(map[App]int, len(apps))
	names := make(map[int64]map[string]struct{})
	empty := 0

	for _, a := range apps {
		idCounts[a.AppID]++
		pairCounts[a]++
		if a.Name == "" {
			empty++
		}
		set, ok := names[a.AppID]
		if !ok {
			set = make(map[string]struct{}, 1)
			names[a.AppID] = set
		}
		set[a.Name] = struct{}{}
	}

	rep := DuplicateReport{
		TotalApps:      len(apps),
		UniqueIDs:      len(idCounts),
		EmptyNames:     empty,
		ConflictingIDs: make(map[int64][]string),
	}
	for _, n := range idCounts {
		if n > 1 {
			rep.DuplicatedIDs++
		}
	}
	for _, n := range pairCounts {
		if n > 1 {
			rep.ExactDuplicates++
		}
	}
	for id, set := range names {
		if len(set) > 1 {
			list := make([]string, 0, len(set))
			for name := range set {
				list = append(list, name)
			}
			sort.Strings(list)
			rep.ConflictingIDs[id] = list
		}
	}
	return rep
}
