package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/apply-agent/internal/browser"
	"github.com/jonathan/apply-agent/internal/config"
	"github.com/jonathan/apply-agent/internal/extract"
	"github.com/jonathan/apply-agent/internal/formfill"
	"github.com/jonathan/apply-agent/internal/observability"
	"github.com/jonathan/apply-agent/internal/pagewatch"
	"github.com/jonathan/apply-agent/internal/questions"
	"github.com/jonathan/apply-agent/internal/session"
	"github.com/jonathan/apply-agent/internal/types"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Track a job application in a live browser session",
	Long:  "Track opens the URL in a headless browser, monitors page type transitions, extracts the posting, detects application questions as they appear and records answers until interrupted. With --save, the application is synced out on exit.",
	RunE:  runTrack,
}

var (
	trackURL     string
	trackCompany string
	trackCV      string
	trackSave    bool
)

func init() {
	trackCmd.Flags().StringVar(&trackURL, "url", "", "Job posting URL to open (required)")
	trackCmd.Flags().StringVar(&trackCompany, "company-id", "", "Company ID for the tracked application")
	trackCmd.Flags().StringVar(&trackCV, "cv-id", "", "CV ID for the tracked application")
	trackCmd.Flags().BoolVar(&trackSave, "save", false, "Sync the application out when tracking ends")
	_ = trackCmd.MarkFlagRequired("url")

	rootCmd.AddCommand(trackCmd)
}

func runTrack(_ *cobra.Command, _ []string) error {
	cfg, log, err := loadSetup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		go observability.ServeMetrics(log, cfg.Metrics.Address)
	}

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

	if err := sess.Navigate(trackURL); err != nil {
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
	if trackCompany != "" {
		orch.SetCompany(trackCompany)
	}
	if trackCV != "" {
		orch.SetCV(trackCV)
	}

	source, err := pagewatch.NewBrowserSource(sess.Context(), log)
	if err != nil {
		return err
	}
	defer source.Close()

	watcher, err := questions.NewInputWatcher(sess.Context(), log)
	if err != nil {
		return err
	}
	watcher.Attach(detector)
	defer watcher.Detach()

	orch.StartTracking(newCLINotifier(log))
	defer orch.StopTracking()

	// Mutations reach the detector directly; every event also drives the
	// monitor's reclassification.
	monitorSource := pagewatch.NewChanSource()
	go func() {
		defer monitorSource.Close()
		for ev := range source.Events() {
			if ev.Kind == pagewatch.EventMutation {
				detector.OnDOMChanged()
			}
			select {
			case monitorSource.C <- ev:
			default:
			}
		}
	}()

	monitor := pagewatch.NewMonitor(log, sess,
		pagewatch.WithSettleDelay(config.Duration(cfg.Detection.PageSettleMS)))
	monitor.Start(monitorSource, orch.OnPageChanged)
	defer monitor.Stop()

	log.Info("tracking started", zap.String("url", trackURL))
	<-ctx.Done()
	log.Info("tracking interrupted")

	if trackSave {
		saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := orch.Save(saveCtx); err != nil {
			log.Error("final sync failed", zap.Error(err))
			return err
		}
	}
	return nil
}

// cliNotifier is the UI collaborator for CLI runs: the full-rebuild tier
// prints the question list, the lightweight tier logs counters. It also
// feeds the question metrics.
type cliNotifier struct {
	log     *zap.Logger
	printer *observability.Printer
	seen    int
}

func newCLINotifier(log *zap.Logger) *cliNotifier {
	return &cliNotifier{log: log, printer: observability.NewPrinter(os.Stdout)}
}

func (n *cliNotifier) UpdateQuestions(list []types.Question) {
	if added := len(list) - n.seen; added > 0 {
		observability.QuestionsDetected.Add(float64(added))
	}
	n.seen = len(list)
	n.printer.PrintQuestions(list)
}

func (n *cliNotifier) UpdateStatus(total, answered int) {
	n.log.Info("question status", zap.Int("total", total), zap.Int("answered", answered))
}
