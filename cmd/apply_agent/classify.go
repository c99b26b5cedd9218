package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/apply-agent/internal/fetch"
	"github.com/jonathan/apply-agent/internal/pagewatch"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a URL as job posting, application form or completion page",
	RunE:  runClassify,
}

var (
	classifyURL      string
	classifyBodyFile string
	classifyFetch    bool
)

func init() {
	classifyCmd.Flags().StringVar(&classifyURL, "url", "", "Page URL to classify (required)")
	classifyCmd.Flags().StringVar(&classifyBodyFile, "body-file", "", "Optional file with the page's body text")
	classifyCmd.Flags().BoolVar(&classifyFetch, "fetch", false, "Fetch the page and classify its body text too")
	_ = classifyCmd.MarkFlagRequired("url")

	rootCmd.AddCommand(classifyCmd)
}

func runClassify(_ *cobra.Command, _ []string) error {
	bodyText := ""
	switch {
	case classifyBodyFile != "":
		raw, err := os.ReadFile(classifyBodyFile)
		if err != nil {
			return fmt.Errorf("read body file: %w", err)
		}
		bodyText = string(raw)
	case classifyFetch:
		result, err := fetch.URL(context.Background(), classifyURL, nil)
		if err != nil {
			return err
		}
		doc, err := fetch.Document(result.HTML)
		if err != nil {
			return err
		}
		bodyText = doc.Find("body").Text()
	}

	pageType := pagewatch.Classify(classifyURL, bodyText)
	fmt.Println(pageType)
	return nil
}
