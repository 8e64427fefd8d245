package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/abductd/internal/logging"
	"github.com/fyrsmithlabs/abductd/internal/phase"
	"github.com/fyrsmithlabs/abductd/internal/provider"
)

var (
	chainObservation string
	chainContext     string
	chainDomain      string
	chainCount       int
	chainUseCouncil  bool
	chainCouncil     []string
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Run the full three-phase chain against a configured provider",
	Long: `Run observe, hypothesize, and evaluate end to end, executing each
instruction against the configured provider backend and printing the final
result as JSON.

Requires a provider backend; without one the engine is prompt-only and this
command fails with an unavailable error.

Examples:
  abductd chain --observation "Customer churn rate doubled in Q3" --domain financial

  abductd chain --observation "..." --count 3 --council "Forensic Accountant" --council "Security Engineer"`,
	RunE: runChain,
}

func init() {
	chainCmd.Flags().StringVar(&chainObservation, "observation", "", "the surprising fact to explain (required)")
	chainCmd.Flags().StringVar(&chainContext, "context", "", "additional background information")
	chainCmd.Flags().StringVar(&chainDomain, "domain", "general", "domain context (general, financial, legal, medical, technical, scientific)")
	chainCmd.Flags().IntVar(&chainCount, "count", 0, "number of hypotheses to generate (1-20, default from config)")
	chainCmd.Flags().BoolVar(&chainUseCouncil, "use-council", false, "evaluate through the default Council of Critics")
	chainCmd.Flags().StringArrayVar(&chainCouncil, "council", nil, "custom critic role, repeatable; replaces the default council")
	_ = chainCmd.MarkFlagRequired("observation")
}

func runChain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer logging.Sync(logger) //nolint:errcheck

	p, err := provider.New(providerConfig(cfg))
	if err != nil {
		return err
	}

	runner, err := phase.NewRunner(p, logger)
	if err != nil {
		return err
	}

	mode := phase.ModeCriteria
	switch {
	case len(chainCouncil) > 0:
		mode = phase.ModeCustom
	case chainUseCouncil || cfg.Abduction.UseCouncil:
		mode = phase.ModeCouncil
	}

	count := chainCount
	if count == 0 {
		count = cfg.Abduction.DefaultHypotheses
	}

	result, err := runner.Run(cmd.Context(), phase.ChainRequest{
		Observation: chainObservation,
		Context:     chainContext,
		Domain:      chainDomain,
		Count:       count,
		Mode:        mode,
		Council:     chainCouncil,
	})
	if err != nil {
		return fmt.Errorf("chain run failed: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}
