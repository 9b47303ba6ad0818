package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/GraphSentinel/internal/application/analysis"
	"github.com/turtacn/GraphSentinel/internal/domain/fraud"
	"github.com/turtacn/GraphSentinel/internal/domain/graph"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/database/memstore"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/monitoring/logging"
)

// AnalyzeOptions holds the analyze command flags.
type AnalyzeOptions struct {
	SnapshotPath string
	Hops         int
}

// NewAnalyzeCmd creates the analyze subcommand.
func NewAnalyzeCmd(root *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <company-id>",
		Short: "Run the fraud detection pipeline for one company",
		Long:  "Analyze loads a graph snapshot file, runs shell chain, circular trade\nand hidden influence detection, and prints the aggregated result.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.SnapshotPath, "snapshot", "s", "", "graph snapshot file (JSON)")
	cmd.Flags().IntVar(&opts.Hops, "hops", graph.DefaultHops, "neighborhood extraction depth")
	cmd.MarkFlagRequired("snapshot")

	return cmd
}

func runAnalyze(cmd *cobra.Command, root *RootOptions, opts *AnalyzeOptions, entityID string) error {
	logger := logging.Default()

	store, err := memstore.LoadSnapshot(opts.SnapshotPath)
	if err != nil {
		return err
	}

	svc := analysis.NewService(
		store,
		graph.NewExtractor(store, logger),
		fraud.NewShellChainDetector(store, fraud.DefaultShellChainConfig(), logger),
		fraud.NewCircularTradeDetector(store, fraud.DefaultCircularTradeConfig(), logger),
		fraud.NewHiddenInfluenceDetector(store, fraud.DefaultHiddenInfluenceConfig(), logger),
		nil, // no result cache in snapshot mode
		nil, // no alert publishing in snapshot mode
		nil,
		logger,
		analysis.Options{Hops: opts.Hops, Timeout: root.Timeout},
	)

	ctx, cancel := context.WithTimeout(cmd.Context(), root.Timeout)
	defer cancel()

	result, err := svc.AnalyzeEntity(ctx, entityID)
	if err != nil {
		return err
	}

	return printResult(cmd, root.OutputFormat, result, func() string {
		return formatResultText(result)
	})
}

func formatResultText(res *analysis.Result) string {
	var sb strings.Builder

	name := res.EntityName
	if name == "" {
		name = res.EntityID
	}
	fmt.Fprintf(&sb, "Entity:            %s (%s)\n", name, res.EntityID)
	fmt.Fprintf(&sb, "Risk score:        %.3f\n", res.RiskScore)
	fmt.Fprintf(&sb, "Opportunity score: %.3f\n", res.OpportunityScore)
	fmt.Fprintf(&sb, "Generated at:      %s\n", res.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))

	fmt.Fprintf(&sb, "\nShell chains (%d):\n", len(res.Patterns.ShellChains))
	for _, c := range res.Patterns.ShellChains {
		fmt.Fprintf(&sb, "  %s  auditor=%s length=%d avg_invoices=%.1f risk=%.2f\n",
			strings.Join(c.Companies, " -> "), c.AuditorID, c.Length, c.AvgInvoices, c.RiskScore)
	}

	fmt.Fprintf(&sb, "\nCircular trade (%d):\n", len(res.Patterns.CircularTrade))
	for _, c := range res.Patterns.CircularTrade {
		fmt.Fprintf(&sb, "  %s  volume=%.1f isolation=%.2f risk=%.2f\n",
			strings.Join(c.Companies, " -> "), c.TotalVolume, c.IsolationScore, c.RiskScore)
	}

	fmt.Fprintf(&sb, "\nHidden influence (%d):\n", len(res.Patterns.HiddenInfluence))
	for _, t := range res.Patterns.HiddenInfluence {
		fmt.Fprintf(&sb, "  %s -> %s -> %s  ownership=%.1f%% concentration=%.1f%% opportunity=%.3f\n",
			t.ShareholderID, t.SupplierID, t.TargetID, t.OwnershipPct, t.ConcentrationPct, t.OpportunityScore)
	}

	if len(res.Diagnostics) > 0 {
		fmt.Fprintf(&sb, "\nDiagnostics:\n")
		for detector, msg := range res.Diagnostics {
			fmt.Fprintf(&sb, "  %s: %s\n", detector, msg)
		}
	}

	return sb.String()
}
