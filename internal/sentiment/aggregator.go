package sentiment

import (
	"log/slog"

	"github.com/spacesedan/moodstream/internal/models"
)

// Classifier assigns a sentiment label to one piece of text.
type Classifier interface {
	Classify(text string) (models.SentimentLabel, error)
}

type Aggregator struct {
	classifier Classifier
}

func NewAggregator(classifier Classifier) *Aggregator {
	return &Aggregator{classifier: classifier}
}

// Aggregate classifies each title in order and counts labels. A title whose
// classification fails is logged and skipped, so the counts always sum to the
// number of successfully classified titles.
func (a *Aggregator) Aggregate(titles []string) models.SentimentCounts {
	counts := models.NewSentimentCounts()

	for _, title := range titles {
		label, err := a.classifier.Classify(title)
		if err != nil {
			slog.Warn("[Aggregator] Classification failed, skipping title",
				slog.String("error", err.Error()))
			continue
		}
		counts[label]++
	}

	return counts
}
