package sentiment

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/spacesedan/moodstream/internal/models"
)

// Predictions below this score are treated as NEUTRAL; binary SST-style
// models never emit a neutral class on their own.
const neutralConfidenceFloor = 0.65

type transformerPrediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// TransformerClassifier runs a local ONNX text-classification model through
// hugot. Selected when SENTIMENT_MODEL_PATH is set.
type TransformerClassifier struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
}

func NewTransformerClassifier(modelPath string) (*TransformerClassifier, error) {
	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("[TransformerClassifier] failed to initialize Hugot session: %w", err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "sentimentClassificationPipeline",
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("[TransformerClassifier] failed to initialize pipeline: %w", err)
	}

	slog.Info("[TransformerClassifier] Loaded sentiment model",
		slog.String("path", modelPath))

	return &TransformerClassifier{session: session, pipeline: pipeline}, nil
}

func (c *TransformerClassifier) Classify(text string) (models.SentimentLabel, error) {
	output, err := c.pipeline.RunPipeline([]string{ConvertMarkdownToText(text)})
	if err != nil {
		return "", fmt.Errorf("[TransformerClassifier] inference failed: %w", err)
	}

	outputs := output.GetOutput()
	if len(outputs) == 0 {
		return "", fmt.Errorf("[TransformerClassifier] model produced no output")
	}

	raw, ok := outputs[0].(string)
	if !ok {
		return "", fmt.Errorf("[TransformerClassifier] unexpected output format from Hugot")
	}

	var prediction transformerPrediction
	if err := json.Unmarshal([]byte(raw), &prediction); err != nil {
		return "", fmt.Errorf("[TransformerClassifier] failed to decode prediction: %w", err)
	}

	if prediction.Score < neutralConfidenceFloor {
		return models.LabelNeutral, nil
	}
	switch strings.ToUpper(prediction.Label) {
	case "POSITIVE", "LABEL_1":
		return models.LabelPositive, nil
	case "NEGATIVE", "LABEL_0":
		return models.LabelNegative, nil
	default:
		return models.LabelNeutral, nil
	}
}

func (c *TransformerClassifier) Close() {
	c.session.Destroy()
}
