package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/apply-agent/internal/bridge"
	"github.com/jonathan/apply-agent/internal/config"
	"github.com/jonathan/apply-agent/internal/llm"
)

// buildBridge assembles the collaborator client. A configured LLM API key
// serves answer messages locally; everything else needs the remote endpoint.
func buildBridge(ctx context.Context, cfg *config.Config, log *zap.Logger) (bridge.Client, func(), error) {
	noop := func() {}

	var remote bridge.Client
	if cfg.Bridge.Endpoint != "" {
		remote = bridge.NewHTTPClient(log, cfg.Bridge.Endpoint, cfg.Bridge.Token)
	}

	if cfg.LLM.APIKey == "" {
		if remote == nil {
			return nil, noop, fmt.Errorf("no answer source: set bridge.endpoint or llm.api_key")
		}
		return remote, noop, nil
	}

	llmCfg := llm.DefaultConfig()
	if cfg.LLM.ModelLite != "" {
		llmCfg = llmCfg.WithModel(llm.TierLite, cfg.LLM.ModelLite)
	}
	if cfg.LLM.ModelStandard != "" {
		llmCfg = llmCfg.WithModel(llm.TierStandard, cfg.LLM.ModelStandard)
	}
	if cfg.LLM.ModelAdvanced != "" {
		llmCfg = llmCfg.WithModel(llm.TierAdvanced, cfg.LLM.ModelAdvanced)
	}

	client, err := llm.NewClient(ctx, llmCfg, cfg.LLM.APIKey)
	if err != nil {
		return nil, noop, err
	}
	answers, err := llm.NewAnswerService(client, log, cfg.LLM.Profile)
	if err != nil {
		_ = client.Close()
		return nil, noop, err
	}
	return bridge.NewLocalAnswers(remote, answers), func() { _ = client.Close() }, nil
}
