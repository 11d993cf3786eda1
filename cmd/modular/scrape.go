package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/MasterGenotype/Modular/internal/config"
	"github.com/MasterGenotype/Modular/internal/scraper"
)

// runScrape runs the external download-history scraper script, which needs
// a logged-in browser session and therefore lives outside this process.
func runScrape(args []string) int {
	fs := flag.NewFlagSet("scrape", flag.ExitOnError)

	configPath := fs.String("config", "", "Config file path (default ~/.config/modular/config.yaml)")
	script := fs.String("script", "nexus_scraper.py", "Scraper script path")
	cookies := fs.String("cookies", "", "Cookies file exported from a logged-in browser session")
	output := fs.String("output", "download_history.json", "Where the script writes its JSON database")
	python := fs.String("python", "", "Python interpreter (default python3)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: modular scrape [options]

Run the scraper script that collects the account's full download history
from the website, for files the API no longer lists.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, err := loadConfig(*configPath, config.Config{ScraperCookiePath: *cookies})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}
	if cfg.ScraperCookiePath == "" {
		fmt.Fprintln(os.Stderr, "Error: -cookies or scraper_cookie_path is required")
		return ExitConfigError
	}

	ctx, cancel := signalContext()
	defer cancel()

	res, err := scraper.Run(ctx, scraper.Options{
		Python:     *python,
		Script:     *script,
		CookiePath: cfg.ScraperCookiePath,
		OutputPath: *output,
	})
	if res != nil && res.Stdout != "" {
		fmt.Fprint(os.Stdout, res.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, scraper.ErrCookieFileMissing) {
			return ExitConfigError
		}
		return ExitGeneralError
	}

	fmt.Fprintf(os.Stderr, "[modular] Scraper finished, history written to %s\n", *output)
	return ExitSuccess
}
