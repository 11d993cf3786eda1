package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"
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

func testOptions() Options {
	return Options{
		Workers:  2,
		Attempts: 5,
		Backoff:  time.Millisecond,
	}
}

func TestFetchWritesObjects(t *testing.T) {
	payload := []byte("archive contents")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	ctx := context.Background()
	bucket := openTestBucket(t)

	tasks := []Task{
		{ModID: 1, FileID: 10, URL: server.URL + "/a.zip", Key: "d/1/a.zip"},
		{ModID: 2, FileID: 20, URL: server.URL + "/b.zip", Key: "d/2/b.zip"},
	}

	results := Fetch(ctx, bucket, tasks, testOptions())
	if len(results) != len(tasks) {
		t.Fatalf("expected %d results, got %d", len(tasks), len(results))
	}
	for _, r := range results {
		if !r.OK() {
			t.Fatalf("task %+v failed: %v", r.Task, r.Err)
		}
		if r.Attempts != 1 {
			t.Errorf("expected 1 attempt, got %d", r.Attempts)
		}
	}

	for _, task := range tasks {
		data, err := bucket.ReadAll(ctx, task.Key)
		if err != nil {
			t.Fatalf("ReadAll %s: %v", task.Key, err)
		}
		if string(data) != string(payload) {
			t.Errorf("object %s: unexpected contents %q", task.Key, data)
		}
	}
}

func TestRetrySucceedsOnFifthAttempt(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 5 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, "eventually")
	}))
	defer server.Close()

	ctx := context.Background()
	bucket := openTestBucket(t)

	results := Fetch(ctx, bucket, []Task{{ModID: 1, FileID: 1, URL: server.URL, Key: "d/1/f"}}, testOptions())

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if !r.OK() {
		t.Fatalf("expected success on fifth attempt, got %v", r.Err)
	}
	if r.Attempts != 5 {
		t.Errorf("expected 5 attempts, got %d", r.Attempts)
	}
	if got := calls.Load(); got != 5 {
		t.Errorf("expected 5 requests, got %d", got)
	}
}

func TestRetryExhaustionStopsAtCeiling(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	ctx := context.Background()
	bucket := openTestBucket(t)

	results := Fetch(ctx, bucket, []Task{{ModID: 1, FileID: 1, URL: server.URL, Key: "d/1/f"}}, testOptions())

	r := results[0]
	if r.OK() {
		t.Fatal("expected failure after exhausting retries")
	}
	if r.Attempts != 5 {
		t.Errorf("expected 5 attempts, got %d", r.Attempts)
	}
	if got := calls.Load(); got != 5 {
		t.Errorf("expected exactly 5 requests, no 6th, got %d", got)
	}

	// A failed transfer must not leave a destination object behind.
	if ok, _ := bucket.Exists(ctx, "d/1/f"); ok {
		t.Error("failed transfer committed a destination object")
	}
}

func TestFailedTaskDoesNotStopSiblings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		io.WriteString(w, "ok")
	}))
	defer server.Close()

	ctx := context.Background()
	bucket := openTestBucket(t)

	tasks := []Task{
		{ModID: 1, FileID: 1, URL: server.URL + "/bad", Key: "d/1/bad"},
		{ModID: 2, FileID: 2, URL: server.URL + "/good", Key: "d/2/good"},
	}

	results := Fetch(ctx, bucket, tasks, testOptions())

	var okCount, failCount int
	for _, r := range results {
		if r.OK() {
			okCount++
		} else {
			failCount++
		}
	}
	if okCount != 1 || failCount != 1 {
		t.Fatalf("expected 1 success and 1 failure, got %d/%d", okCount, failCount)
	}

	if ok, _ := bucket.Exists(ctx, "d/2/good"); !ok {
		t.Error("sibling transfer missing after another task failed")
	}
}

func TestSpacesEscapedBeforeRequest(t *testing.T) {
	var gotPath atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.EscapedPath())
		io.WriteString(w, "ok")
	}))
	defer server.Close()

	ctx := context.Background()
	bucket := openTestBucket(t)

	results := Fetch(ctx, bucket, []Task{{ModID: 1, FileID: 1, URL: server.URL + "/my mod.zip", Key: "d/1/my mod.zip"}}, testOptions())
	if !results[0].OK() {
		t.Fatalf("fetch failed: %v", results[0].Err)
	}
	if got := gotPath.Load(); got != "/my%20mod.zip" {
		t.Errorf("expected escaped path /my%%20mod.zip, got %v", got)
	}
}

func TestFetchEmptyTasks(t *testing.T) {
	bucket := openTestBucket(t)
	results := Fetch(context.Background(), bucket, nil, testOptions())
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}
