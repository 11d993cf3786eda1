package nexus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/MasterGenotype/Modular/internal/httpclient"
)

// DefaultBaseURL is the production NexusMods API endpoint.
const DefaultBaseURL = "https://api.nexusmods.com"

// ErrNoTrackedMods is returned when the tracked-mods listing succeeds but
// contains no mods.
var ErrNoTrackedMods = errors.New("nexus: no tracked mods")

// Client calls the NexusMods API. The API key is carried explicitly; there
// is no ambient credential state.
type Client struct {
	APIKey  string
	BaseURL string
	HTTP    *httpclient.Client
}

// NewClient creates a client for the production API.
func NewClient(apiKey string, http *httpclient.Client) *Client {
	return &Client{APIKey: apiKey, BaseURL: DefaultBaseURL, HTTP: http}
}

func (c *Client) header() http.Header {
	h := http.Header{}
	h.Set("accept", "application/json")
	h.Set("apikey", c.APIKey)
	return h
}

// TrackedMods returns the ids of all mods the account tracks. The endpoint
// historically returned either a bare array or an object with a "mods"
// field; both shapes are accepted.
func (c *Client) TrackedMods(ctx context.Context) ([]int, error) {
	url := c.BaseURL + "/v1/user/tracked_mods.json"

	status, body, err := c.HTTP.Get(ctx, url, c.header())
	if err != nil {
		return nil, fmt.Errorf("fetch tracked mods: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("fetch tracked mods: %w", httpclient.CheckStatusCode(status))
	}

	type trackedMod struct {
		ModID int `json:"mod_id"`
	}

	var mods []trackedMod
	if err := json.Unmarshal(body, &mods); err != nil {
		var wrapper struct {
			Mods []trackedMod `json:"mods"`
		}
		if err := json.Unmarshal(body, &wrapper); err != nil {
			return nil, fmt.Errorf("parse tracked mods: %w", err)
		}
		mods = wrapper.Mods
	}

	if len(mods) == 0 {
		return nil, ErrNoTrackedMods
	}

	ids := make([]int, 0, len(mods))
	for _, m := range mods {
		ids = append(ids, m.ModID)
	}
	return ids, nil
}

// FileIDs returns the main-category file ids for one mod. Any failure
// yields an empty list; resolution failures never abort a stage.
func (c *Client) FileIDs(ctx context.Context, domain string, modID int) []int {
	url := fmt.Sprintf("%s/v1/games/%s/mods/%d/files.json?category=main", c.BaseURL, domain, modID)

	status, body, err := c.HTTP.Get(ctx, url, c.header())
	if err != nil || status != http.StatusOK {
		return nil
	}

	var resp struct {
		Files []struct {
			FileID int `json:"file_id"`
		} `json:"files"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil
	}

	ids := make([]int, 0, len(resp.Files))
	for _, f := range resp.Files {
		ids = append(ids, f.FileID)
	}
	return ids
}

// DownloadLink resolves the ephemeral signed URL for one file. Any failure
// yields "".
func (c *Client) DownloadLink(ctx context.Context, domain string, modID, fileID int) string {
	url := fmt.Sprintf("%s/v1/games/%s/mods/%d/files/%d/download_link.json?expires=999999",
		c.BaseURL, domain, modID, fileID)

	status, body, err := c.HTTP.Get(ctx, url, c.header())
	if err != nil || status != http.StatusOK {
		return ""
	}

	var locations []struct {
		URI string `json:"URI"`
	}
	if err := json.Unmarshal(body, &locations); err != nil || len(locations) == 0 {
		return ""
	}
	return locations[0].URI
}

// ModName returns the display name of one mod, used by the rename sequence.
func (c *Client) ModName(ctx context.Context, domain string, modID int) (string, error) {
	url := fmt.Sprintf("%s/v1/games/%s/mods/%d", c.BaseURL, domain, modID)

	status, body, err := c.HTTP.Get(ctx, url, c.header())
	if err != nil {
		return "", fmt.Errorf("fetch mod %d: %w", modID, err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("fetch mod %d: %w", modID, httpclient.CheckStatusCode(status))
	}

	var resp struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parse mod %d: %w", modID, err)
	}
	if resp.Name == "" {
		return "", fmt.Errorf("mod %d has no name", modID)
	}
	return resp.Name, nil
}
