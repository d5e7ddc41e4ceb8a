package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"coin-wallet-ledger/internal/orchestrator"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder
	run := r.Run
	counts := run.Counts()

	// Header
	sb.WriteString("# Ledger Run Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: `%s`", run.RunID))
	if run.Cohort != "" {
		sb.WriteString(fmt.Sprintf(" | Cohort: %s", run.Cohort))
	}
	sb.WriteString(fmt.Sprintf(" | Duration: %s\n\n", run.Finished.Sub(run.Started).Round(time.Millisecond)))

	// Partition summary
	sb.WriteString("## Partitions\n\n")
	sb.WriteString("| Status | Count |\n")
	sb.WriteString("|--------|-------|\n")
	for _, s := range []orchestrator.Status{
		orchestrator.StatusOK, orchestrator.StatusUnchanged, orchestrator.StatusSkipped, orchestrator.StatusFailed,
	} {
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", s, counts[s]))
	}
	sb.WriteString("\n")

	// Assets
	if len(r.Assets) > 0 {
		sb.WriteString("## Assets\n\n")
		sb.WriteString("| Asset | Source | Wallets | USD Balance | Profits | Inflows | Return |\n")
		sb.WriteString("|-------|--------|---------|-------------|---------|---------|--------|\n")
		for _, a := range r.Assets {
			ret := "n/a"
			if a.TotalReturn != nil {
				ret = fmt.Sprintf("%.2f%%", *a.TotalReturn*100)
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %.2f | %.2f | %.2f | %s |\n",
				a.AssetID, a.Source, a.Wallets, a.UsdBalance, a.ProfitsCumulative, a.UsdInflowsCumulative, ret))
		}
		sb.WriteString("\n")
	}

	// Conflicts
	if len(run.Conflicts) > 0 {
		sb.WriteString("## Ownership Conflicts\n\n")
		for _, c := range run.Conflicts {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", c.AssetID, strings.Join(c.Sources, ", ")))
		}
		sb.WriteString("\n")
	}

	// Skipped and failed
	var issues []*orchestrator.PartitionResult
	for _, p := range run.Partitions {
		if p.Status == orchestrator.StatusSkipped || p.Failed() {
			issues = append(issues, p)
		}
	}
	if len(issues) > 0 {
		sb.WriteString("## Skipped and Failed\n\n")
		sb.WriteString("| Asset | Status | Reason |\n")
		sb.WriteString("|-------|--------|--------|\n")
		for _, p := range issues {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", p.AssetID, p.Status, escapeCell(p.Reason)))
		}
		sb.WriteString("\n")

		for _, p := range issues {
			if len(p.WalletErrors) == 0 {
				continue
			}
			sb.WriteString(fmt.Sprintf("### %s wallet errors\n\n", p.AssetID))
			wallets := make([]string, 0, len(p.WalletErrors))
			for w := range p.WalletErrors {
				wallets = append(wallets, w)
			}
			sort.Strings(wallets)
			for _, w := range wallets {
				sb.WriteString(fmt.Sprintf("- `%s`: %s\n", w, p.WalletErrors[w]))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
