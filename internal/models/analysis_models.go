package models

type SentimentLabel string

const (
	LabelPositive SentimentLabel = "POSITIVE"
	LabelNegative SentimentLabel = "NEGATIVE"
	LabelNeutral  SentimentLabel = "NEUTRAL"
)

// AllLabels returns the labels in a stable order for charting and output.
func AllLabels() []SentimentLabel {
	return []SentimentLabel{LabelPositive, LabelNegative, LabelNeutral}
}

type SentimentCounts map[SentimentLabel]int

func NewSentimentCounts() SentimentCounts {
	return SentimentCounts{
		LabelPositive: 0,
		LabelNegative: 0,
		LabelNeutral:  0,
	}
}

func (c SentimentCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

func (c SentimentCounts) AllZero() bool {
	return c.Total() == 0
}

const (
	DefaultTopN        = 25
	DefaultTemperature = 0.5
	DefaultMaxTokens   = 150
)

type AnalysisRequest struct {
	Subreddit   string   `json:"subreddit"`
	TopN        int      `json:"top_n"`
	Temperature *float64 `json:"temperature"`
	MaxTokens   int      `json:"max_tokens"`
	Stream      bool     `json:"stream"`
}

// ApplyDefaults fills omitted fields in place. Temperature is a pointer so an
// explicit 0 survives.
func (r *AnalysisRequest) ApplyDefaults() {
	if r.TopN <= 0 {
		r.TopN = DefaultTopN
	}
	if r.Temperature == nil {
		t := DefaultTemperature
		r.Temperature = &t
	}
	if r.MaxTokens <= 0 {
		r.MaxTokens = DefaultMaxTokens
	}
}

type AnalysisResponse struct {
	Summary         string          `json:"summary"`
	SentimentGraph  *string         `json:"sentiment_graph"`
	SentimentCounts SentimentCounts `json:"sentiment_counts"`
}
