package links

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

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

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	bucket := openTestBucket(t)

	in := []Record{
		{ModID: 1, FileID: 10, URL: "https://a/u1"},
		{ModID: 2, FileID: 20, URL: "https://b/u2"},
	}

	if err := Save(ctx, bucket, Key("skyrim"), in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := Load(ctx, bucket, Key("skyrim"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(out) != len(in) {
		t.Fatalf("expected %d records, got %d", len(in), len(out))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ModID < out[j].ModID })
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("record %d: got %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestSaveSkipsEmptyURLs(t *testing.T) {
	ctx := context.Background()
	bucket := openTestBucket(t)

	in := []Record{
		{ModID: 1, FileID: 10, URL: "https://a/u1"},
		{ModID: 2, FileID: 20, URL: ""},
	}

	if err := Save(ctx, bucket, Key("d"), in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := Load(ctx, bucket, Key("d"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 1 || out[0].ModID != 1 {
		t.Fatalf("expected only the resolved record, got %+v", out)
	}
}

func TestSaveRejectsNewlineURL(t *testing.T) {
	ctx := context.Background()
	bucket := openTestBucket(t)

	err := Save(ctx, bucket, Key("d"), []Record{{ModID: 1, FileID: 2, URL: "https://a/u\nx"}})
	if err == nil {
		t.Fatal("expected error for URL containing a newline")
	}
}

func TestURLWithCommasSurvives(t *testing.T) {
	ctx := context.Background()
	bucket := openTestBucket(t)

	url := "https://cdn/file.zip?sig=a,b,c&expires=1"
	if err := Save(ctx, bucket, Key("d"), []Record{{ModID: 3, FileID: 4, URL: url}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := Load(ctx, bucket, Key("d"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 1 || out[0].URL != url {
		t.Fatalf("comma URL mangled: %+v", out)
	}
}

func TestSaveReplacesWholeRecord(t *testing.T) {
	ctx := context.Background()
	bucket := openTestBucket(t)

	if err := Save(ctx, bucket, Key("d"), []Record{{ModID: 1, FileID: 1, URL: "https://a/1"}}); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := Save(ctx, bucket, Key("d"), []Record{{ModID: 9, FileID: 9, URL: "https://a/9"}}); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	out, err := Load(ctx, bucket, Key("d"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 1 || out[0].ModID != 9 {
		t.Fatalf("expected only the rewritten record, got %+v", out)
	}
}

func TestLoadMissingRecord(t *testing.T) {
	bucket := openTestBucket(t)

	_, err := Load(context.Background(), bucket, Key("absent"))
	if !errors.Is(err, ErrNoRecord) {
		t.Fatalf("expected ErrNoRecord, got %v", err)
	}
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	ctx := context.Background()
	bucket := openTestBucket(t)

	raw := strings.Join([]string{
		"1,10,https://a/u1",
		"not-a-number,2,https://bad",
		"3,also-bad,https://bad",
		"4,40", // missing URL field
		"",
		"5,50,https://a/u5",
	}, "\n")
	if err := bucket.WriteAll(ctx, Key("d"), []byte(raw), nil); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}

	out, err := Load(ctx, bucket, Key("d"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 valid records, got %d: %+v", len(out), out)
	}
}
