// Package activity filters and normalizes raw activity-recognition samples.
package activity

import (
	"github.com/rs/zerolog"

	"github.com/contextd-io/contextd/internal/logging"
	"github.com/contextd-io/contextd/internal/models"
)

// ConfidenceThreshold is the exclusive lower bound on sample confidence.
// Samples at or below this value are dropped. Fixed, not user-configurable.
const ConfidenceThreshold = 70

// Classifier is a stateless filter in front of the trigger engine: it
// rejects low-confidence and malformed samples and normalizes the rest to
// canonical activity kinds.
type Classifier struct {
	logger zerolog.Logger
}

// NewClassifier creates a Classifier.
func NewClassifier() *Classifier {
	return &Classifier{logger: logging.Component("activity")}
}

// Accept returns the canonical kind of a sample iff it clears the confidence
// threshold. The threshold is strict: confidence 70 is rejected, 71 is
// accepted. Rejected samples are dropped entirely and must not touch any
// state downstream.
func (c *Classifier) Accept(sample models.ActivitySample) (models.ActivityKind, bool) {
	if sample.Confidence < 0 || sample.Confidence > 100 {
		c.logger.Debug().
			Int("confidence", sample.Confidence).
			Msg("dropping sample with out-of-range confidence")
		return models.ActivityUnknown, false
	}

	kind, ok := sample.ResolveKind()
	if !ok {
		c.logger.Debug().Msg("dropping sample with no recognizable activity")
		return models.ActivityUnknown, false
	}

	if sample.Confidence <= ConfidenceThreshold {
		c.logger.Debug().
			Str("kind", string(kind)).
			Int("confidence", sample.Confidence).
			Int("threshold", ConfidenceThreshold).
			Msg("dropping sample below confidence threshold")
		return models.ActivityUnknown, false
	}

	return kind, true
}

// AcceptBatch filters a ranked result batch, preserving delivery order. Each
// accepted entry is replayed downstream as its own event.
func (c *Classifier) AcceptBatch(samples []models.ActivitySample) []models.ActivityKind {
	accepted := make([]models.ActivityKind, 0, len(samples))
	for _, sample := range samples {
		if kind, ok := c.Accept(sample); ok {
			accepted = append(accepted, kind)
		}
	}
	return accepted
}
