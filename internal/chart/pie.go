package chart

import (
	"bytes"
	"fmt"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/spacesedan/moodstream/internal/models"
)

var sentimentColors = map[models.SentimentLabel]drawing.Color{
	models.LabelPositive: drawing.ColorFromHex("15FF00"),
	models.LabelNegative: drawing.ColorFromHex("ff4500"),
	models.LabelNeutral:  drawing.ColorFromHex("FBBF24"),
}

type PieRenderer struct{}

func NewPieRenderer() *PieRenderer {
	return &PieRenderer{}
}

// RenderPie draws the sentiment distribution as a PNG. Zero-count labels are
// excluded; when every count is zero it returns nil bytes and no error.
func (p *PieRenderer) RenderPie(counts models.SentimentCounts, subreddit string, topN int) ([]byte, error) {
	var values []gochart.Value
	for _, label := range models.AllLabels() {
		n := counts[label]
		if n == 0 {
			continue
		}
		values = append(values, gochart.Value{
			Value: float64(n),
			Label: fmt.Sprintf("%s (%d)", label, n),
			Style: gochart.Style{
				FillColor:   sentimentColors[label],
				StrokeColor: drawing.ColorBlack,
				StrokeWidth: 1,
			},
		})
	}
	if len(values) == 0 {
		return nil, nil
	}

	pie := gochart.PieChart{
		Title:  fmt.Sprintf("Sentiment Analysis of /r/%s (last %d posts)", subreddit, topN),
		Width:  512,
		Height: 512,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("[PieRenderer] failed to render chart: %w", err)
	}
	return buf.Bytes(), nil
}
