// Package update asks the release feed whether a newer client exists.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ReleasesURL is the latest-release endpoint of the client's repository.
const ReleasesURL = "https://api.github.com/repos/matheuskafuri/articles/releases/latest"

// Result holds the outcome of a version check.
type Result struct {
	Current string
	Latest  string
}

// Newer reports whether the latest release differs from the running build.
func (r Result) Newer() bool {
	return r.Latest != "" && r.Latest != r.Current
}

type release struct {
	TagName string `json:"tag_name"`
}

// Check fetches the latest release from url. A nil client uses
// http.DefaultClient.
func Check(ctx context.Context, client *http.Client, url, current string) (Result, error) {
	res := Result{Current: strings.TrimPrefix(current, "v")}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return res, fmt.Errorf("building release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return res, fmt.Errorf("fetching latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return res, fmt.Errorf("fetching latest release: status %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return res, fmt.Errorf("decoding release: %w", err)
	}
	res.Latest = strings.TrimPrefix(rel.TagName, "v")
	return res, nil
}
