package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/apply-agent/internal/config"
	"github.com/jonathan/apply-agent/internal/extract"
	"github.com/jonathan/apply-agent/internal/fetch"
	"github.com/jonathan/apply-agent/internal/observability"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract a normalized job posting from a URL or HTML file",
	Long:  "Extract runs the full extraction cascade (structured data, site-specific selectors, meta tags, generic scoring) against a fetched or local page and prints the normalized job posting.",
	RunE:  runExtract,
}

var (
	extractURL     string
	extractFile    string
	extractBrowser bool
	extractJSON    bool
)

func init() {
	extractCmd.Flags().StringVar(&extractURL, "url", "", "Job posting URL to fetch")
	extractCmd.Flags().StringVar(&extractFile, "file", "", "Local HTML file to extract from")
	extractCmd.Flags().BoolVar(&extractBrowser, "browser", false, "Fall back to headless rendering when the static fetch is too thin")
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "Print the posting as JSON")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(_ *cobra.Command, _ []string) error {
	if (extractURL == "") == (extractFile == "") {
		return fmt.Errorf("exactly one of --url or --file is required")
	}

	cfg, log, err := loadSetup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	pageURL := extractURL

	var html string
	path := "static"
	switch {
	case extractFile != "":
		raw, err := os.ReadFile(extractFile)
		if err != nil {
			return fmt.Errorf("read input file: %w", err)
		}
		html = string(raw)
		path = "file"
	default:
		result, err := fetch.URL(ctx, extractURL, nil)
		if err != nil {
			return err
		}
		html = result.HTML
	}

	doc, err := fetch.Document(html)
	if err != nil {
		return err
	}

	if extractBrowser && extractFile == "" && fetch.ShouldUseBrowser(fetch.VisibleTextLength(doc)) {
		log.Info("static fetch too thin, rendering in browser", zap.String("url", extractURL))
		timeout := config.Duration(cfg.Browser.NavigationTimeoutMS) + 10*time.Second
		rendered, err := fetch.RenderURL(ctx, log, extractURL, timeout)
		if err != nil {
			return err
		}
		if doc, err = fetch.Document(rendered); err != nil {
			return err
		}
		path = "browser"
	}

	engine := extract.NewEngine(log, extract.WithDescriptionCap(cfg.Extract.DescriptionMaxLength))
	job := engine.Extract(doc, pageURL)
	observability.ExtractionsTotal.WithLabelValues(path).Inc()

	if extractJSON {
		out, err := json.MarshalIndent(job, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	observability.NewPrinter(os.Stdout).PrintJobPosting(job)
	return nil
}
