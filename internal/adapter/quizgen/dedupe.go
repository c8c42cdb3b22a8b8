package quizgen

import (
	"context"

	"bloomforge/internal/domain"
	"bloomforge/internal/util"

	"go.uber.org/zap"
)

// Deduplicator drops questions whose text embedding is too close to one
// already kept.
type Deduplicator struct {
	embedder  domain.EmbeddingService
	threshold float64
	logger    *zap.Logger
}

func NewDeduplicator(embedder domain.EmbeddingService, threshold float64, logger *zap.Logger) *Deduplicator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deduplicator{embedder: embedder, threshold: threshold, logger: logger}
}

// Filter keeps the first of every near-duplicate group, preserving order.
// Any embedding failure returns the input unfiltered.
func (d *Deduplicator) Filter(ctx context.Context, questions []domain.Question) []domain.Question {
	if d == nil || d.embedder == nil || len(questions) < 2 {
		return questions
	}

	kept := make([]domain.Question, 0, len(questions))
	var keptVecs [][]float32
	for _, q := range questions {
		vec, err := d.embedder.Generate(ctx, q.Content)
		if err != nil {
			d.logger.Warn("Embedding failed, skipping duplicate filtering", zap.Error(err))
			return questions
		}
		if dup, sim := d.isDuplicate(vec, keptVecs); dup {
			d.logger.Debug("Dropping near-duplicate question", zap.String("content", q.Content), zap.Float64("similarity", sim))
			continue
		}
		kept = append(kept, q)
		keptVecs = append(keptVecs, vec)
	}
	return kept
}

func (d *Deduplicator) isDuplicate(vec []float32, kept [][]float32) (bool, float64) {
	idx, sim := util.MostSimilar(vec, kept)
	return idx >= 0 && sim >= d.threshold, sim
}
