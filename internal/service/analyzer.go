package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"

	"github.com/spacesedan/moodstream/internal/clients"
	"github.com/spacesedan/moodstream/internal/models"
	"github.com/spacesedan/moodstream/internal/sentiment"
	"github.com/spacesedan/moodstream/internal/streams"
)

// ErrInvalidSubreddit is returned before any fetch when the requested
// subreddit name is empty or contains whitespace.
var ErrInvalidSubreddit = errors.New("invalid subreddit name or URL")

const promptTemplate = "IN exactly 3 short sentences summarise the overall sentiment of the following reddit posts :\n%s."

type FeedClient interface {
	FetchSubredditTitles(ctx context.Context, subreddit string, limit int) ([]string, error)
}

type ChartRenderer interface {
	RenderPie(counts models.SentimentCounts, subreddit string, topN int) ([]byte, error)
}

type Summarizer interface {
	Generate(ctx context.Context, prompt string, opts clients.GenerationOptions) (string, error)
}

// StreamingSummarizer is implemented by backends that can deliver the summary
// incrementally. Backends without it fall back to one blocking generation.
type StreamingSummarizer interface {
	Summarizer
	GenerateStream(ctx context.Context, prompt string, opts clients.GenerationOptions) (io.ReadCloser, error)
}

type Analyzer struct {
	feed       FeedClient
	aggregator *sentiment.Aggregator
	chart      ChartRenderer
	summarizer Summarizer
}

func NewAnalyzer(feed FeedClient, aggregator *sentiment.Aggregator, chart ChartRenderer, summarizer Summarizer) *Analyzer {
	return &Analyzer{
		feed:       feed,
		aggregator: aggregator,
		chart:      chart,
		summarizer: summarizer,
	}
}

// Analysis is the classified, prompt-ready state of one request: everything
// up to (but not including) the generation call.
type Analysis struct {
	Subreddit string
	TopN      int
	Titles    []string
	Counts    models.SentimentCounts
	Prompt    string
	Options   clients.GenerationOptions
}

// Prepare validates the request, fetches the titles, and classifies them.
// Validation and fetch failures short-circuit here, before any generation
// cost is spent.
func (a *Analyzer) Prepare(ctx context.Context, req models.AnalysisRequest) (*Analysis, error) {
	subreddit := strings.TrimSpace(req.Subreddit)
	if subreddit == "" || strings.IndexFunc(subreddit, unicode.IsSpace) >= 0 {
		return nil, ErrInvalidSubreddit
	}

	titles, err := a.feed.FetchSubredditTitles(ctx, subreddit, req.TopN)
	if err != nil {
		return nil, err
	}

	temperature := models.DefaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	counts := a.aggregator.Aggregate(titles)
	slog.Info("[Analyzer] Classified subreddit titles",
		slog.String("subreddit", subreddit),
		slog.Int("titles", len(titles)),
		slog.Int("positive", counts[models.LabelPositive]),
		slog.Int("negative", counts[models.LabelNegative]),
		slog.Int("neutral", counts[models.LabelNeutral]))

	return &Analysis{
		Subreddit: subreddit,
		TopN:      req.TopN,
		Titles:    titles,
		Counts:    counts,
		Prompt:    fmt.Sprintf(promptTemplate, strings.Join(titles, " ")),
		Options: clients.GenerationOptions{
			Temperature: temperature,
			MaxTokens:   req.MaxTokens,
		},
	}, nil
}

// Summarize produces the aggregated payload: chart plus blocking summary.
// A degraded backend is not a failure; its description becomes the summary
// text and the sentiment payload stays intact.
func (a *Analyzer) Summarize(ctx context.Context, an *Analysis) *models.AnalysisResponse {
	resp := &models.AnalysisResponse{SentimentCounts: an.Counts}

	chartBytes, err := a.chart.RenderPie(an.Counts, an.Subreddit, an.TopN)
	if err != nil {
		slog.Warn("[Analyzer] Chart rendering failed",
			slog.String("error", err.Error()))
	} else if chartBytes != nil {
		encoded := base64.StdEncoding.EncodeToString(chartBytes)
		resp.SentimentGraph = &encoded
	}

	summary, err := a.summarizer.Generate(ctx, an.Prompt, an.Options)
	if err != nil {
		summary = degradationText(err)
	}
	resp.Summary = summary
	return resp
}

// StreamSummary relays the summary to out sentence by sentence, in arrival
// order. On backend failure it emits a single error-description line and
// returns. Cancelling ctx closes the backend body, releasing the connection.
func (a *Analyzer) StreamSummary(ctx context.Context, an *Analysis, out chan<- string) error {
	streamer, ok := a.summarizer.(StreamingSummarizer)
	if !ok {
		summary, err := a.summarizer.Generate(ctx, an.Prompt, an.Options)
		if err != nil {
			summary = degradationText(err)
		}
		return emit(ctx, out, summary)
	}

	body, err := streamer.GenerateStream(ctx, an.Prompt, an.Options)
	if err != nil {
		return emit(ctx, out, degradationText(err))
	}
	defer body.Close()

	return streams.NewStreamDecoder().Decode(ctx, body, out)
}

// degradationText turns a generation failure into the user-visible summary
// replacement. BackendError already embeds status and body.
func degradationText(err error) string {
	var backendErr *clients.BackendError
	if errors.As(err, &backendErr) {
		return backendErr.Error()
	}
	return fmt.Sprintf("Error: %s", err.Error())
}

func emit(ctx context.Context, out chan<- string, line string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case out <- line:
		return nil
	}
}
