package rename

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"

	"github.com/MasterGenotype/Modular/internal/httpclient"
	"github.com/MasterGenotype/Modular/internal/nexus"
)

func openTestBucket(t *testing.T) *blob.Bucket {
	t.Helper()
	bucket, err := blob.OpenBucket(context.Background(), "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	t.Cleanup(func() { bucket.Close() })
	return bucket
}

func newTestNexus(server *httptest.Server) *nexus.Client {
	c := nexus.NewClient("k", httpclient.NewClient(httpclient.DefaultOptions()))
	c.BaseURL = server.URL
	return c
}

func seed(t *testing.T, bucket *blob.Bucket, keys map[string]string) {
	t.Helper()
	ctx := context.Background()
	for k, v := range keys {
		if err := bucket.WriteAll(ctx, k, []byte(v), nil); err != nil {
			t.Fatalf("seed %s: %v", k, err)
		}
	}
}

func TestRunMovesModDirectories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/mods/7"):
			io.WriteString(w, `{"name": "Great Mod"}`)
		case strings.HasSuffix(r.URL.Path, "/mods/8"):
			io.WriteString(w, `{"name": "Other/Mod"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	ctx := context.Background()
	bucket := openTestBucket(t)
	seed(t, bucket, map[string]string{
		"skyrim/7/a.zip":             "a",
		"skyrim/7/b.zip":             "b",
		"skyrim/8/c.zip":             "c",
		"skyrim/download_links.txt":  "7,1,https://x/a.zip",
		"skyrim/Already Named/d.zip": "d",
	})

	if err := Run(ctx, bucket, newTestNexus(server), Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantPresent := []string{
		"skyrim/Great Mod/a.zip",
		"skyrim/Great Mod/b.zip",
		"skyrim/Other_Mod/c.zip",
		"skyrim/download_links.txt",
		"skyrim/Already Named/d.zip",
	}
	for _, key := range wantPresent {
		if ok, _ := bucket.Exists(ctx, key); !ok {
			t.Errorf("expected object %s", key)
		}
	}

	wantGone := []string{"skyrim/7/a.zip", "skyrim/7/b.zip", "skyrim/8/c.zip"}
	for _, key := range wantGone {
		if ok, _ := bucket.Exists(ctx, key); ok {
			t.Errorf("object %s should have been moved", key)
		}
	}
}

func TestRunSkipsModsWhoseNameLookupFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/mods/1") {
			io.WriteString(w, `{"name": "Good"}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	ctx := context.Background()
	bucket := openTestBucket(t)
	seed(t, bucket, map[string]string{
		"d/1/a.zip": "a",
		"d/2/b.zip": "b",
	})

	if err := Run(ctx, bucket, newTestNexus(server), Options{Domains: []string{"d"}}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if ok, _ := bucket.Exists(ctx, "d/Good/a.zip"); !ok {
		t.Error("mod 1 not renamed")
	}
	// Mod 2's lookup failed; its files stay put.
	if ok, _ := bucket.Exists(ctx, "d/2/b.zip"); !ok {
		t.Error("mod 2's files should be untouched")
	}
}

func TestRunEmptyBucket(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no API calls expected for an empty bucket")
	}))
	defer server.Close()

	bucket := openTestBucket(t)
	if err := Run(context.Background(), bucket, newTestNexus(server), Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestListPrefixes(t *testing.T) {
	ctx := context.Background()
	bucket := openTestBucket(t)
	seed(t, bucket, map[string]string{
		"a/1/x": "x",
		"a/2/y": "y",
		"b/3/z": "z",
	})

	domains, err := listPrefixes(ctx, bucket, "")
	if err != nil {
		t.Fatalf("listPrefixes: %v", err)
	}
	if fmt.Sprint(domains) != "[a b]" {
		t.Fatalf("unexpected domains: %v", domains)
	}

	mods, err := listPrefixes(ctx, bucket, "a/")
	if err != nil {
		t.Fatalf("listPrefixes: %v", err)
	}
	if fmt.Sprint(mods) != "[1 2]" {
		t.Fatalf("unexpected mod dirs: %v", mods)
	}
}
