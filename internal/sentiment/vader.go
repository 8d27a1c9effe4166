package sentiment

import (
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"

	"github.com/spacesedan/moodstream/internal/models"
)

// Compound-score cutoffs for mapping VADER output onto the three labels.
const (
	positiveThreshold = 0.20
	negativeThreshold = -0.20
)

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

func ConvertMarkdownToText(input string) string {
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plainText := strings.Join(strings.Fields(string(output)), " ")

	return RemoveLinks(plainText)
}

// VADERClassifier scores text with govader. It is the default classifier and
// never fails.
type VADERClassifier struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVADERClassifier() *VADERClassifier {
	return &VADERClassifier{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (c *VADERClassifier) Classify(text string) (models.SentimentLabel, error) {
	plainText := ConvertMarkdownToText(text)

	sentiment := c.analyzer.PolarityScores(plainText)
	score := sentiment.Compound

	switch {
	case score >= positiveThreshold:
		return models.LabelPositive, nil
	case score <= negativeThreshold:
		return models.LabelNegative, nil
	default:
		return models.LabelNeutral, nil
	}
}
