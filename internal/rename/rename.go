// Package rename rewrites numeric mod-id prefixes in the storage bucket to
// human-readable mod names.
//
// The NexusMods transfer stage files archives under "domain/modID/"; this
// sequence asks the API for each mod's display name and moves every object
// under the id prefix to a sanitized name prefix. Object stores have no
// rename, so a move is copy-then-delete per object. One mod failing never
// stops the sequence.
package rename

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gocloud.dev/blob"

	"github.com/MasterGenotype/Modular/internal/links"
	"github.com/MasterGenotype/Modular/internal/names"
	"github.com/MasterGenotype/Modular/internal/nexus"
	"github.com/MasterGenotype/Modular/internal/progress"
)

// Options configures a rename run.
type Options struct {
	// Domains restricts the run; empty means every domain prefix found in
	// the bucket.
	Domains []string

	// Sink receives run output.
	Sink *progress.Sink
}

// Run renames every numeric mod directory in the bucket to the mod's
// display name.
func Run(ctx context.Context, bucket *blob.Bucket, client *nexus.Client, opts Options) error {
	sink := opts.Sink
	if sink == nil {
		sink = progress.NewSink(progress.Options{Output: io.Discard})
		defer sink.Close()
	}

	domains := opts.Domains
	if len(domains) == 0 {
		var err error
		domains, err = listPrefixes(ctx, bucket, "")
		if err != nil {
			return fmt.Errorf("list domains: %w", err)
		}
	}
	if len(domains) == 0 {
		sink.Printf("No game domains found in the bucket.")
		return nil
	}

	for _, domain := range domains {
		modDirs, err := listPrefixes(ctx, bucket, domain+"/")
		if err != nil {
			sink.Printf("Failed to list mods for domain %s: %v", domain, err)
			continue
		}

		for _, dir := range modDirs {
			modID, err := strconv.Atoi(dir)
			if err != nil {
				// Already renamed, or the link record's parent.
				continue
			}

			name, err := client.ModName(ctx, domain, modID)
			if err != nil {
				sink.Printf("Failed to fetch name for mod %d in %s: %v", modID, domain, err)
				continue
			}

			oldPrefix := fmt.Sprintf("%s/%d/", domain, modID)
			newPrefix := fmt.Sprintf("%s/%s/", domain, names.Sanitize(name))
			if oldPrefix == newPrefix {
				continue
			}

			moved, err := movePrefix(ctx, bucket, oldPrefix, newPrefix)
			if err != nil {
				sink.Printf("Failed to rename %s to %s: %v", oldPrefix, newPrefix, err)
				continue
			}
			sink.Printf("Renamed %d to %q in %s (%d files).", modID, names.Sanitize(name), domain, moved)
		}
	}

	return nil
}

// listPrefixes returns the immediate "directory" names under a prefix.
func listPrefixes(ctx context.Context, bucket *blob.Bucket, prefix string) ([]string, error) {
	iter := bucket.List(&blob.ListOptions{Prefix: prefix, Delimiter: "/"})

	var dirs []string
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			return dirs, nil
		}
		if err != nil {
			return nil, err
		}
		if !obj.IsDir {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(obj.Key, prefix), "/")
		if name != "" {
			dirs = append(dirs, name)
		}
	}
}

// movePrefix copies every object under oldPrefix to newPrefix and deletes
// the originals. It returns the number of objects moved. The link record is
// left untouched.
func movePrefix(ctx context.Context, bucket *blob.Bucket, oldPrefix, newPrefix string) (int, error) {
	iter := bucket.List(&blob.ListOptions{Prefix: oldPrefix})

	var keys []string
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		if strings.HasSuffix(obj.Key, "/"+links.DefaultObject) {
			continue
		}
		keys = append(keys, obj.Key)
	}

	moved := 0
	for _, key := range keys {
		dst := newPrefix + strings.TrimPrefix(key, oldPrefix)
		if err := bucket.Copy(ctx, dst, key, nil); err != nil {
			return moved, fmt.Errorf("copy %s: %w", key, err)
		}
		if err := bucket.Delete(ctx, key); err != nil {
			return moved, fmt.Errorf("delete %s: %w", key, err)
		}
		moved++
	}
	return moved, nil
}
