package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/apply-agent/internal/browser"
	"github.com/jonathan/apply-agent/internal/config"
	"github.com/jonathan/apply-agent/internal/extract"
	"github.com/jonathan/apply-agent/internal/formfill"
	"github.com/jonathan/apply-agent/internal/observability"
	"github.com/jonathan/apply-agent/internal/questions"
	"github.com/jonathan/apply-agent/internal/session"
	"github.com/jonathan/apply-agent/internal/types"
)

var autofillCmd = &cobra.Command{
	Use:   "autofill",
	Short: "Detect application questions on a page and fill them with generated answers",
	Long:  "Autofill opens the URL, extracts the posting for context, detects application form questions, requests one batched set of answers and fills the form sequentially. Interrupting mid-run stops at the next question boundary and reports what was completed.",
	RunE:  runAutoFill,
}

var (
	autofillURL  string
	autofillWait time.Duration
	autofillJSON bool
	autofillSave bool
)

func init() {
	autofillCmd.Flags().StringVar(&autofillURL, "url", "", "Application form URL (required)")
	autofillCmd.Flags().DurationVar(&autofillWait, "wait", 10*time.Second, "How long to wait for questions to appear")
	autofillCmd.Flags().BoolVar(&autofillJSON, "json", false, "Print the completion report as JSON")
	autofillCmd.Flags().BoolVar(&autofillSave, "save", false, "Sync the application out after filling")
	_ = autofillCmd.MarkFlagRequired("url")

	rootCmd.AddCommand(autofillCmd)
}

func runAutoFill(_ *cobra.Command, _ []string) error {
	cfg, log, err := loadSetup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := browser.NewSession(ctx, log,
		browser.WithHeadless(cfg.Browser.Headless),
		browser.WithExecPath(cfg.Browser.ExecPath),
		browser.WithNavigationTimeout(config.Duration(cfg.Browser.NavigationTimeoutMS)),
		browser.WithRenderSettle(config.Duration(cfg.Browser.RenderSettleMS)),
	)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Navigate(autofillURL); err != nil {
		return err
	}

	bridgeClient, closeBridge, err := buildBridge(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeBridge()

	detector := questions.NewDetector(log, sess.Document,
		questions.WithRescanDebounce(config.Duration(cfg.Detection.RescanDebounceMS)))
	filler := formfill.NewEngine(log, sess,
		formfill.WithDelays(config.Duration(cfg.Fill.EventDelayMS), config.Duration(cfg.Fill.SettleDelayMS)),
		formfill.WithValidationWait(config.Duration(cfg.Fill.ValidationStepMS), config.Duration(cfg.Fill.ValidationCapMS)),
		formfill.WithVerifyRatio(cfg.Fill.VerifyRatio),
	)
	extractor := extract.NewEngine(log, extract.WithDescriptionCap(cfg.Extract.DescriptionMaxLength))

	orch := session.New(log, extractor, detector, filler, bridgeClient, sess, cfg.Bridge.Token,
		session.WithInterFillDelay(config.Duration(cfg.Fill.InterFillDelayMS)),
		session.WithAnswerThreshold(cfg.Detection.AnswerThreshold),
	)

	// Posting context for the answer request, from the same page when it is
	// a combined posting/form page.
	orch.OnPageChanged(types.PageJobPosting, autofillURL)

	orch.StartTracking(newCLINotifier(log))
	defer orch.StopTracking()

	if err := waitForQuestions(ctx, detector, autofillWait); err != nil {
		return err
	}

	report, err := orch.AutoFill(ctx)
	if err != nil {
		return err
	}

	if autofillJSON {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	} else {
		printer := observability.NewPrinter(os.Stdout)
		results := make(map[string]string, len(report.Results))
		for _, r := range report.Results {
			outcome := string(r.Outcome)
			if r.Detail != "" {
				outcome += ": " + r.Detail
			}
			results[r.Question] = outcome
		}
		printer.PrintFillResults(results)
		fmt.Println(report.Summary)
	}

	if autofillSave {
		saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := orch.Save(saveCtx); err != nil {
			return err
		}
	}
	return nil
}

// waitForQuestions polls the detector until at least one question appears.
func waitForQuestions(ctx context.Context, detector *questions.Detector, wait time.Duration) error {
	deadline := time.Now().Add(wait)
	for {
		if len(detector.Questions()) > 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("no questions detected within %s", wait)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(250 * time.Millisecond):
			detector.OnDOMChanged()
		}
	}
}
