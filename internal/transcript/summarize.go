package transcript

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"salon-agent/internal/ai"
	"salon-agent/internal/config"
	"salon-agent/internal/logging"
)

var ErrSummarize = errors.New("transcript summarization failed")

const summarizePrompt = "Resume la siguiente llamada telefónica en UN SOLO PÁRRAFO breve. " +
	"No uses listas ni encabezados. " +
	"Describe la intención del cliente y cómo terminó la llamada.\n\n"

type Summarizer struct {
	Generator ai.TextGenerator
}

func NewSummarizer(generator ai.TextGenerator) *Summarizer {
	return &Summarizer{Generator: generator}
}

// Summarize condenses a transcript into one short paragraph. Any failure of
// the underlying generation step is wrapped in ErrSummarize.
func (s *Summarizer) Summarize(ctx context.Context, items []Item) (string, error) {
	line := ToSingleLine(items)

	logging.Logger.Info("Summarizing transcript",
		zap.String("model", config.Conf.SummaryModel),
		zap.Int("utterances", len(items)),
	)

	summary, err := s.Generator.GenerateText(ctx, config.Conf.SummaryModel, summarizePrompt+line)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSummarize, err)
	}

	return summary, nil
}
