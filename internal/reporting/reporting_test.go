package reporting

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/orchestrator"
	"coin-wallet-ledger/internal/reconcile"
	"coin-wallet-ledger/internal/storage/memory"
)

var day1 = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func ptr(v float64) *float64 { return &v }

func profitRows() []*domain.ProfitRecord {
	return []*domain.ProfitRecord{
		{AssetID: "A", Wallet: "v", Date: day1.AddDate(0, 0, 1), Price: 12, UsdBalance: 12, UsdInflowsCumulative: 12, TotalReturn: ptr(0)},
		{AssetID: "A", Wallet: "w", Date: day1, Price: 10, UsdBalance: 20, UsdInflowsCumulative: 20, TotalReturn: ptr(0)},
		{AssetID: "A", Wallet: "w", Date: day1.AddDate(0, 0, 1), Price: 12, UsdBalance: 12, ProfitsChange: 4, ProfitsCumulative: 4, UsdInflowsCumulative: 20, TotalReturn: ptr(0.2)},
	}
}

func TestSummarize_UsesLastRowPerWallet(t *testing.T) {
	s := Summarize(profitRows())

	assert.Equal(t, 2, s.Wallets)
	assert.InDelta(t, 24.0, s.UsdBalance, 1e-9)
	assert.InDelta(t, 4.0, s.ProfitsCumulative, 1e-9)
	assert.InDelta(t, 32.0, s.UsdInflowsCumulative, 1e-9)
	require.NotNil(t, s.TotalReturn)
	assert.InDelta(t, 0.125, *s.TotalReturn, 1e-9)
	assert.Equal(t, day1.AddDate(0, 0, 1), s.LastDate)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Wallets)
	assert.Nil(t, s.TotalReturn)
}

func testRun() *orchestrator.RunReport {
	return &orchestrator.RunReport{
		RunID:    "run-1",
		Started:  day1,
		Finished: day1.Add(1500 * time.Millisecond),
		Conflicts: []reconcile.Conflict{
			{AssetID: "C", Sources: []string{"covalent", "dune"}},
		},
		Partitions: []*orchestrator.PartitionResult{
			{AssetID: "A", Source: "ethereum", Status: orchestrator.StatusOK},
			{AssetID: "B", Status: orchestrator.StatusSkipped, Reason: "excluded: Stablecoins"},
			{AssetID: "C", Status: orchestrator.StatusFailed, Reason: "OWNERSHIP_CONFLICT asset=C"},
			{AssetID: "D", Source: "dune", Status: orchestrator.StatusOK, WalletErrors: map[string]string{"x": "transfer sequence violation"}},
		},
	}
}

func TestGenerator_Generate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProfitStore()
	require.NoError(t, store.ReplaceAsset(ctx, "A", profitRows()))

	fixed := time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)
	r, err := NewGenerator(store).WithClock(func() time.Time { return fixed }).Generate(ctx, testRun())
	require.NoError(t, err)

	assert.Equal(t, fixed, r.GeneratedAt)
	require.Len(t, r.Assets, 2)
	assert.Equal(t, "A", r.Assets[0].AssetID)
	assert.Equal(t, 2, r.Assets[0].Wallets)
	assert.Equal(t, "D", r.Assets[1].AssetID)
	assert.Zero(t, r.Assets[1].Wallets)
}

func TestRenderMarkdown(t *testing.T) {
	r := &Report{
		GeneratedAt: day1,
		Run:         testRun(),
		Assets:      []AssetSummary{{AssetID: "A", Source: "ethereum", Wallets: 2, UsdBalance: 24, TotalReturn: ptr(0.125)}},
	}
	md := RenderMarkdown(r)

	assert.Contains(t, md, "# Ledger Run Report")
	assert.Contains(t, md, "Run: `run-1`")
	assert.Contains(t, md, "| ok | 2 |")
	assert.Contains(t, md, "| A | ethereum | 2 | 24.00 |")
	assert.Contains(t, md, "12.50%")
	assert.Contains(t, md, "- C: covalent, dune")
	assert.Contains(t, md, "| B | skipped | excluded: Stablecoins |")
	assert.Contains(t, md, "### D wallet errors")
}

func TestRenderCSV(t *testing.T) {
	out := RenderCSV([]AssetSummary{
		{AssetID: "A", Source: "ethereum", Status: orchestrator.StatusOK, Wallets: 2, LastDate: day1, UsdBalance: 24},
	})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "asset_id,source,status"))
	assert.Equal(t, "A,ethereum,ok,2,2024-06-01,24.000000,0.000000,0.000000,", lines[1])
}

func TestRenderProfitsCSV(t *testing.T) {
	out := RenderProfitsCSV(profitRows())
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[3], "A,w,2024-06-02,0,")
	assert.True(t, strings.HasSuffix(lines[3], ",0.200000,false"))
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	r := &Report{GeneratedAt: day1, Run: testRun()}

	written, err := WriteFiles(dir, r)
	require.NoError(t, err)
	require.Len(t, written, 2)

	md, err := os.ReadFile(filepath.Join(dir, "RUN_REPORT.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "run-1")

	_, err = os.Stat(filepath.Join(dir, "asset_summary.csv"))
	assert.NoError(t, err)
}
