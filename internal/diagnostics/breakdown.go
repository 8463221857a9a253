package diagnostics

import (
	"log/slog"

	"github.com/aman-health/practitioner-rank/internal/ranking"
)

// Breakdown is the flattened per-candidate diagnostics record named in
// the ambient logging plan: every component that feeds a candidate's
// final score, keyed by practitioner id.
type Breakdown struct {
	RequestID          string
	Rank               int
	PractitionerID     string
	PractitionerName   string
	QualityBoost       float64
	ExactMatchBonus    float64
	ProximityBoost     float64
	SemanticScore      float64
	BaseBM25Score      float64
	NormalizedBM25     float64
	NormalizedSemantic float64
	IntentDelta        float64
	AnchorDelta        float64
	SafeLaneDelta      float64
	SubspecialtyBoost  float64
	NegativeDelta      float64
	Score              float64
}

// FromScored builds a Breakdown from a Stage A result with no Stage B
// rescoring applied.
func FromScored(requestID string, rank int, s ranking.Scored) Breakdown {
	return Breakdown{
		RequestID:          requestID,
		Rank:               rank,
		PractitionerID:     s.Practitioner.ID,
		PractitionerName:   s.Practitioner.Name,
		QualityBoost:       s.QualityBoost,
		ExactMatchBonus:    s.ExactBonus,
		ProximityBoost:     s.ProximityBoost,
		SemanticScore:      s.SemanticScore,
		BaseBM25Score:      s.BaseBM25,
		NormalizedBM25:     s.NormBM25,
		NormalizedSemantic: s.NormSemantic,
		Score:              s.Score,
	}
}

// FromRescored builds a Breakdown from a Stage B rescored result,
// carrying forward the Stage A components plus the rescoring deltas.
func FromRescored(requestID string, r ranking.Rescored) Breakdown {
	b := FromScored(requestID, r.Rank, r.Scored)
	b.IntentDelta = r.IntentDelta
	b.AnchorDelta = r.AnchorDelta
	b.SafeLaneDelta = r.SafeLaneDelta
	b.SubspecialtyBoost = r.SubspecialtyBoost
	b.NegativeDelta = r.NegativeDelta
	b.Score = r.FinalScore
	return b
}

// LogDebug emits the breakdown as a slog.LevelDebug structured record,
// per the ambient logging plan: debug-level per-component score
// breakdowns keyed by practitioner id and request id, never at info
// level or above.
func (b Breakdown) LogDebug(logger *slog.Logger) {
	if logger == nil {
		return
	}
	logger.Debug("score_breakdown",
		slog.String("request_id", b.RequestID),
		slog.Int("rank", b.Rank),
		slog.String("practitioner_id", b.PractitionerID),
		slog.Float64("bm25_base", b.BaseBM25Score),
		slog.Float64("quality_boost", b.QualityBoost),
		slog.Float64("exact_match_bonus", b.ExactMatchBonus),
		slog.Float64("proximity_boost", b.ProximityBoost),
		slog.Float64("semantic_score", b.SemanticScore),
		slog.Float64("norm_bm25", b.NormalizedBM25),
		slog.Float64("norm_semantic", b.NormalizedSemantic),
		slog.Float64("intent_delta", b.IntentDelta),
		slog.Float64("anchor_delta", b.AnchorDelta),
		slog.Float64("safe_lane_delta", b.SafeLaneDelta),
		slog.Float64("subspecialty_boost", b.SubspecialtyBoost),
		slog.Float64("negative_delta", b.NegativeDelta),
		slog.Float64("score", b.Score),
	)
}
