// Package links persists resolved download links between the resolution and
// transfer stages.
//
// The record is a plain-text object with one "modID,fileID,url" line per
// resolved transfer. The URL is the trailing field, so commas inside signed
// URLs survive a round trip; saving replaces the whole object, so a rerun
// never mixes lines from different resolutions.
package links

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// DefaultObject is the record's object name under a game domain prefix.
const DefaultObject = "download_links.txt"

// ErrNoRecord is returned by Load when no record exists for the domain.
var ErrNoRecord = errors.New("links: no download link record")

// Record is one resolved transfer.
type Record struct {
	ModID  int
	FileID int
	URL    string
}

// Key returns the record object key for a game domain.
func Key(domain string) string {
	return domain + "/" + DefaultObject
}

// Save writes all records with non-empty URLs to the bucket, replacing any
// prior record at the key. Records whose URL contains a newline are
// rejected rather than written ambiguously.
func Save(ctx context.Context, bucket *blob.Bucket, key string, records []Record) error {
	var buf bytes.Buffer
	for _, r := range records {
		if r.URL == "" {
			continue
		}
		if strings.ContainsAny(r.URL, "\r\n") {
			return fmt.Errorf("links: URL for mod %d file %d contains a line break", r.ModID, r.FileID)
		}
		fmt.Fprintf(&buf, "%d,%d,%s\n", r.ModID, r.FileID, r.URL)
	}

	if err := bucket.WriteAll(ctx, key, buf.Bytes(), nil); err != nil {
		return fmt.Errorf("write link record %s: %w", key, err)
	}
	return nil
}

// Load reads a record previously written by Save. Malformed lines are
// skipped; a missing object is ErrNoRecord.
func Load(ctx context.Context, bucket *blob.Bucket, key string) ([]Record, error) {
	data, err := bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrNoRecord
		}
		return nil, fmt.Errorf("read link record %s: %w", key, err)
	}

	var records []Record
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// The URL is everything after the second comma.
		parts := strings.SplitN(line, ",", 3)
		if len(parts) != 3 || parts[2] == "" {
			continue
		}
		modID, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		fileID, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		records = append(records, Record{ModID: modID, FileID: fileID, URL: parts[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan link record %s: %w", key, err)
	}

	return records, nil
}
