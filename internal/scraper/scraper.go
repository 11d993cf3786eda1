// Package scraper invokes the external download-history scraper script.
//
// The scraper automates a browser session and lives outside this process;
// this package runs it with discrete arguments (never through a shell, so
// no identifier can smuggle in shell metacharacters), captures its output,
// and maps its exit status to an error.
package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrCookieFileMissing is returned when the configured cookies file does
// not exist.
var ErrCookieFileMissing = errors.New("scraper: cookies file not found")

// Options configures a scraper run.
type Options struct {
	// Python is the interpreter to run. Default: "python3".
	Python string

	// Script is the path to the scraper script.
	Script string

	// CookiePath is the cookies file forwarded to the script.
	CookiePath string

	// OutputPath is where the script writes its JSON database.
	OutputPath string
}

// Result captures one scraper run.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes the scraper and waits for it to finish. A nonzero exit
// status is an error carrying the captured stderr.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Python == "" {
		opts.Python = "python3"
	}
	if opts.Script == "" {
		return nil, errors.New("scraper: script path is required")
	}
	if _, err := os.Stat(opts.CookiePath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCookieFileMissing, opts.CookiePath)
	}

	cmd := exec.CommandContext(ctx, opts.Python, opts.Script, opts.CookiePath, opts.OutputPath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, fmt.Errorf("scraper exited with code %d: %s",
				res.ExitCode, strings.TrimSpace(res.Stderr))
		}
		return res, fmt.Errorf("run scraper: %w", err)
	}

	return res, nil
}
