// Package gamebanana implements the GameBanana subscription download
// sequence.
//
// GameBanana exposes download URLs directly on the mod record, so the
// sequence is shorter than the NexusMods pipeline: enumerate one member's
// subscriptions, resolve each subscribed mod's file URLs in parallel, then
// transfer everything with the retrying fetcher. No link record is
// persisted; the URLs are not ephemeral.
package gamebanana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gocloud.dev/blob"

	"github.com/MasterGenotype/Modular/internal/fetcher"
	"github.com/MasterGenotype/Modular/internal/httpclient"
	"github.com/MasterGenotype/Modular/internal/names"
	"github.com/MasterGenotype/Modular/internal/progress"
	"github.com/MasterGenotype/Modular/pkg/workpool"
)

// DefaultBaseURL is the production GameBanana API endpoint.
const DefaultBaseURL = "https://gamebanana.com"

// ErrNoSubscriptions is returned when a member has no mod subscriptions.
var ErrNoSubscriptions = errors.New("gamebanana: no subscribed mods")

// Mod is one subscribed mod.
type Mod struct {
	ProfileURL string
	Name       string
}

// ID extracts the numeric mod id from the profile URL. It returns "" when
// the URL has no /mods/ segment.
func (m Mod) ID() string {
	const marker = "/mods/"
	if i := strings.Index(m.ProfileURL, marker); i >= 0 {
		return m.ProfileURL[i+len(marker):]
	}
	return ""
}

// Client calls the GameBanana v11 API.
type Client struct {
	BaseURL string
	HTTP    *httpclient.Client
}

// NewClient creates a client for the production API.
func NewClient(http *httpclient.Client) *Client {
	return &Client{BaseURL: DefaultBaseURL, HTTP: http}
}

// SubscribedMods lists the mods a member subscribes to. Subscription
// records for non-mod content (sounds, skins, ...) are filtered out.
func (c *Client) SubscribedMods(ctx context.Context, userID string) ([]Mod, error) {
	url := fmt.Sprintf("%s/apiv11/Member/%s/Subscriptions", c.BaseURL, userID)

	status, body, err := c.HTTP.Get(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch subscriptions: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("fetch subscriptions: %w", httpclient.CheckStatusCode(status))
	}

	var resp struct {
		Records []struct {
			Subscription struct {
				SingularTitle string `json:"_sSingularTitle"`
				ProfileURL    string `json:"_sProfileUrl"`
				Name          string `json:"_sName"`
			} `json:"_aSubscription"`
		} `json:"_aRecords"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse subscriptions: %w", err)
	}

	var mods []Mod
	for _, rec := range resp.Records {
		s := rec.Subscription
		if s.SingularTitle != "Mod" || s.ProfileURL == "" {
			continue
		}
		mods = append(mods, Mod{ProfileURL: s.ProfileURL, Name: s.Name})
	}
	if len(mods) == 0 {
		return nil, ErrNoSubscriptions
	}
	return mods, nil
}

// ModFileURLs returns the download URLs for one mod's files. Any failure
// yields an empty list; resolution failures never abort the sequence.
func (c *Client) ModFileURLs(ctx context.Context, modID string) []string {
	url := fmt.Sprintf("%s/apiv11/Mod/%s?_csvProperties=_aFiles", c.BaseURL, modID)

	status, body, err := c.HTTP.Get(ctx, url, nil)
	if err != nil || status != http.StatusOK {
		return nil
	}

	var resp struct {
		Files []struct {
			DownloadURL string `json:"_sDownloadUrl"`
		} `json:"_aFiles"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil
	}

	var urls []string
	for _, f := range resp.Files {
		if f.DownloadURL != "" {
			urls = append(urls, f.DownloadURL)
		}
	}
	return urls
}

// Options configures a subscription download run. Pacing for both the
// resolution stage and the transfers is taken from Fetcher.Pacing.
type Options struct {
	Workers int
	Fetcher fetcher.Options
	Sink    *progress.Sink
}

// DownloadAll downloads every file of every subscribed mod into the bucket
// under a "GameBanana/<mod name>/" prefix. Files keep a stable 1-based
// index prefix per mod so identically named files never collide.
func (c *Client) DownloadAll(ctx context.Context, bucket *blob.Bucket, userID string, opts Options) ([]fetcher.Result, error) {
	sink := opts.Sink
	if sink == nil {
		sink = progress.NewSink(progress.Options{Output: io.Discard})
		defer sink.Close()
	}
	opts.Fetcher.Sink = sink

	mods, err := c.SubscribedMods(ctx, userID)
	if err != nil {
		return nil, err
	}
	sink.Printf("Found %d subscribed mods for member %s.", len(mods), userID)

	// Resolve each mod's file URLs in parallel; a mod that fails simply
	// contributes no tasks.
	type modFiles struct {
		mod  Mod
		urls []string
	}

	resolved := workpool.Process(ctx, mods, workpool.Options{Workers: opts.Workers, Pacing: opts.Fetcher.Pacing},
		func(ctx context.Context, m Mod) modFiles {
			id := m.ID()
			if id == "" {
				sink.Printf("Could not extract mod id from %s, skipping.", m.ProfileURL)
				return modFiles{mod: m}
			}
			urls := c.ModFileURLs(ctx, id)
			if len(urls) == 0 {
				sink.Printf("No files found for mod %q.", m.Name)
			}
			return modFiles{mod: m, urls: urls}
		})

	var tasks []fetcher.Task
	for _, mf := range resolved {
		folder := names.Sanitize(mf.mod.Name)
		for i, url := range mf.urls {
			name := names.FileNameFromURL(url)
			if name == "" {
				name = "downloaded_file"
			}
			tasks = append(tasks, fetcher.Task{
				URL: url,
				Key: fmt.Sprintf("GameBanana/%s/%d_%s", folder, i+1, name),
			})
		}
	}

	if len(tasks) == 0 {
		sink.Printf("Nothing to download for member %s.", userID)
		return nil, nil
	}

	opts.Fetcher.Workers = opts.Workers
	return fetcher.Fetch(ctx, bucket, tasks, opts.Fetcher), nil
}
