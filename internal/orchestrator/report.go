package orchestrator

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"coin-wallet-ledger/internal/reconcile"
)

// Status is the outcome of one asset partition.
type Status string

const (
	StatusOK        Status = "ok"
	StatusSkipped   Status = "skipped"   // excluded, unscalable, or no usable input
	StatusUnchanged Status = "unchanged" // inputs identical to the last build
	StatusFailed    Status = "failed"    // fatal error, nothing written
)

// PartitionResult reports what happened to one asset.
type PartitionResult struct {
	AssetID string
	Source  string // owning source, empty when unowned
	Status  Status
	Reason  string

	NetTransfers int // rows written
	Balances     int
	Profits      int

	WalletRecordsDropped map[string]int    // by wallet exclusion reason
	WalletErrors         map[string]string // wallet -> fatal error of that (asset, wallet)
	Warnings             []string
	Duration             time.Duration
}

// Failed reports whether the asset or any of its wallets failed fatally.
func (p *PartitionResult) Failed() bool {
	return p.Status == StatusFailed || len(p.WalletErrors) > 0
}

// RunReport is the result of one ledger run.
type RunReport struct {
	RunID                string
	Cohort               string
	Started              time.Time
	Finished             time.Time
	ExclusionFingerprint string
	Conflicts            []reconcile.Conflict
	Partitions           []*PartitionResult // ordered by asset ID
}

// Failed reports whether any partition failed.
func (r *RunReport) Failed() bool {
	for _, p := range r.Partitions {
		if p.Failed() {
			return true
		}
	}
	return false
}

// Counts returns the number of partitions per status.
func (r *RunReport) Counts() map[Status]int {
	out := make(map[Status]int)
	for _, p := range r.Partitions {
		out[p.Status]++
	}
	return out
}

// Partition returns the result for assetID, or nil.
func (r *RunReport) Partition(assetID string) *PartitionResult {
	for _, p := range r.Partitions {
		if p.AssetID == assetID {
			return p
		}
	}
	return nil
}

func (r *RunReport) sort() {
	sort.Slice(r.Partitions, func(i, j int) bool {
		return r.Partitions[i].AssetID < r.Partitions[j].AssetID
	})
}

// WriteText prints a human-readable summary of the run.
func (r *RunReport) WriteText(w io.Writer) error {
	counts := r.Counts()
	fmt.Fprintf(w, "run %s", r.RunID)
	if r.Cohort != "" {
		fmt.Fprintf(w, " cohort=%s", r.Cohort)
	}
	fmt.Fprintf(w, " took %s: %d ok, %d unchanged, %d skipped, %d failed\n\n",
		r.Finished.Sub(r.Started).Round(time.Millisecond),
		counts[StatusOK], counts[StatusUnchanged], counts[StatusSkipped], counts[StatusFailed])

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ASSET\tSOURCE\tSTATUS\tNET\tBAL\tPROFIT\tWARN\tREASON")
	for _, p := range r.Partitions {
		reason := p.Reason
		if len(p.WalletErrors) > 0 {
			reason = fmt.Sprintf("%s (%d wallet errors)", reason, len(p.WalletErrors))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			p.AssetID, p.Source, p.Status, p.NetTransfers, p.Balances, p.Profits, len(p.Warnings), reason)
	}
	return tw.Flush()
}
