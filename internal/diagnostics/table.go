package diagnostics

import (
	"fmt"
	"io"
	"strings"
)

// RenderTable writes a human-readable diagnostics table for
// `rankctl rank --explain`, one row per Breakdown in rank order.
func RenderTable(w io.Writer, breakdowns []Breakdown, styles Styles) {
	if len(breakdowns) == 0 {
		fmt.Fprintln(w, styles.Dim.Render("no results"))
		return
	}

	header := fmt.Sprintf("%-4s %-24s %8s %8s %8s %8s %8s %8s",
		"rank", "practitioner", "bm25", "quality", "exact", "prox", "delta", "score")
	fmt.Fprintln(w, styles.Header.Render(header))
	fmt.Fprintln(w, styles.Border.Render(strings.Repeat("-", len(header))))

	for _, b := range breakdowns {
		name := b.PractitionerName
		if len(name) > 24 {
			name = name[:21] + "..."
		}
		delta := b.IntentDelta + b.AnchorDelta + b.SafeLaneDelta + b.SubspecialtyBoost + b.NegativeDelta

		rank := styles.Rank.Render(fmt.Sprintf("%-4d", b.Rank))
		rest := styles.Score.Render(fmt.Sprintf("%-24s %8.2f %8.2f %8.2f %8.2f %8.2f %8.2f",
			name, b.BaseBM25Score, b.QualityBoost, b.ExactMatchBonus, b.ProximityBoost, delta, b.Score))
		fmt.Fprintln(w, rank+" "+rest)
	}
}
