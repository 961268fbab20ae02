package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mizuki/toeflsim/internal/app"
	"github.com/mizuki/toeflsim/internal/contentgen"
	"github.com/mizuki/toeflsim/internal/grading"
	"github.com/mizuki/toeflsim/internal/history"
	"github.com/mizuki/toeflsim/internal/llm"
	"github.com/mizuki/toeflsim/internal/report"
	"github.com/mizuki/toeflsim/internal/screen"
	"github.com/mizuki/toeflsim/internal/speech"
	"github.com/mizuki/toeflsim/internal/storage"
)

// runApp opens the store, builds the service graph, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	cfg, err := providerConfig()
	if err != nil {
		return err
	}
	provider, err := llm.NewProvider(ctx, cfg, st.RequestLog())
	if err != nil {
		return fmt.Errorf("create LLM provider: %w", err)
	}

	hist := history.NewStore(st.KV())
	services := &screen.Services{
		Gen:     contentgen.New(provider, hist, contentgen.DefaultConfig()),
		Grader:  grading.NewLLMGrader(provider),
		History: hist,
		Log:     report.NewLog(st.KV()),
		Reports: report.NewReports(st.KV()),
		Synth:   speech.NewSynthesizer(),
		Recog:   speech.NewRecognizer(),
	}

	return app.Run(services)
}

// providerConfig resolves LLM configuration: explicit TOEFLSIM_* env
// vars win, then standard provider API key vars are probed.
func providerConfig() (llm.Config, error) {
	cfg := llm.ConfigFromEnv()
	if err := cfg.Validate(); err == nil {
		return cfg, nil
	}
	if discovered, ok := llm.DiscoverConfig(); ok {
		return discovered, nil
	}
	return llm.Config{}, errors.New(
		"no LLM provider configured: set GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, or OPENROUTER_API_KEY (or the TOEFLSIM_* equivalents)")
}
