package reporting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/orchestrator"
	"coin-wallet-ledger/internal/storage"
)

// Generator produces reports from stored ledger data.
type Generator struct {
	profitStore storage.ProfitStore
	now         func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(profitStore storage.ProfitStore) *Generator {
	return &Generator{
		profitStore: profitStore,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate summarizes every asset the run wrote or left unchanged.
func (g *Generator) Generate(ctx context.Context, run *orchestrator.RunReport) (*Report, error) {
	r := &Report{GeneratedAt: g.now(), Run: run}
	for _, p := range run.Partitions {
		if p.Status != orchestrator.StatusOK && p.Status != orchestrator.StatusUnchanged {
			continue
		}
		rows, err := g.profitStore.GetByAsset(ctx, p.AssetID)
		if err != nil {
			return nil, fmt.Errorf("load profits of %s: %w", p.AssetID, err)
		}
		s := Summarize(rows)
		s.AssetID, s.Source, s.Status = p.AssetID, p.Source, p.Status
		r.Assets = append(r.Assets, s)
	}
	return r, nil
}

// Summarize folds profit rows ordered by (wallet, date) into asset totals.
func Summarize(rows []*domain.ProfitRecord) AssetSummary {
	var s AssetSummary
	for i, row := range rows {
		if i+1 < len(rows) && rows[i+1].Wallet == row.Wallet {
			continue
		}
		// last row of a wallet
		s.Wallets++
		s.UsdBalance += row.UsdBalance
		s.ProfitsCumulative += row.ProfitsCumulative
		s.UsdInflowsCumulative += row.UsdInflowsCumulative
		if row.Date.After(s.LastDate) {
			s.LastDate = row.Date
		}
	}
	if s.UsdInflowsCumulative > 0 {
		ret := s.ProfitsCumulative / s.UsdInflowsCumulative
		s.TotalReturn = &ret
	}
	return s
}

// WriteFiles writes RUN_REPORT.md and asset_summary.csv into dir.
func WriteFiles(dir string, r *Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	files := map[string]string{
		"RUN_REPORT.md":     RenderMarkdown(r),
		"asset_summary.csv": RenderCSV(r.Assets),
	}
	var written []string
	for _, name := range []string{"RUN_REPORT.md", "asset_summary.csv"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(files[name]), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, path)
	}
	return written, nil
}
