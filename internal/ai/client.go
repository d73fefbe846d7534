package ai

import (
	"context"
	"time"

	"github.com/avast/retry-go"
	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"salon-agent/internal/config"
	"salon-agent/internal/logging"
	"salon-agent/internal/metrics"
)

// TextGenerator is the boundary to the text-interpretation service. The
// resolver and the summarizer only ever see this interface.
type TextGenerator interface {
	GenerateText(ctx context.Context, model, prompt string) (string, error)
}

type Client struct {
	Client         *openai.Client
	CircuitBreaker *gobreaker.CircuitBreaker[string]
}

func NewClient() *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(config.Conf.OpenAIAPIKey),
		option.WithRequestTimeout(time.Duration(config.Conf.AITimeout) * time.Second),
	}

	if config.Conf.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.Conf.OpenAIBaseURL))
	}

	client := openai.NewClient(opts...)

	return &Client{
		Client:         &client,
		CircuitBreaker: newCircuitBreaker(),
	}
}

func newCircuitBreaker() *gobreaker.CircuitBreaker[string] {
	settings := gobreaker.Settings{
		Name:     "openai",
		Interval: time.Duration(config.Conf.AIIntervalCB) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.Conf.AIConsecutiveFailuresCB
		},
		OnStateChange: func(name string, fromState, toState gobreaker.State) {
			logging.Logger.Warn("Circuit state changed",
				zap.String("service", name),
				zap.String("from", fromState.String()),
				zap.String("to", toState.String()),
			)

			if toState == gobreaker.StateOpen {
				metrics.CircuitOpen.WithLabelValues(name).Inc()
			}
		},
	}

	return gobreaker.NewCircuitBreaker[string](settings)
}

// GenerateText sends one prompt to the configured model and returns the first
// plain-text block of the answer.
func (c *Client) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	requestID := uuid.NewString()

	logging.Logger.Debug("Starting text generation request",
		zap.String("request_id", requestID),
		zap.String("model", model),
		zap.Int("prompt_length", len(prompt)),
	)

	return c.CircuitBreaker.Execute(func() (string, error) {
		return c.doRequest(ctx, model, prompt, requestID)
	})
}

func (c *Client) doRequest(ctx context.Context, model, prompt, requestID string) (string, error) {
	timer := prometheus.NewTimer(metrics.AIRequestDuration.WithLabelValues(model))
	defer timer.ObserveDuration()

	var result string

	if ctx.Err() != nil {
		logging.Logger.Warn("[doRequest] Context already canceled before starting request",
			zap.String("request_id", requestID),
			zap.Error(ctx.Err()),
		)

		return "", ctx.Err()
	}

	err := retry.Do(
		func() error {
			if ctx.Err() != nil {
				logging.Logger.Warn("[doRequest] Context canceled during retry",
					zap.String("request_id", requestID),
					zap.Error(ctx.Err()),
				)

				return ctx.Err()
			}

			resp, err := c.Client.Responses.New(ctx, responses.ResponseNewParams{
				Model: shared.ResponsesModel(model),
				Input: responses.ResponseNewParamsInputUnion{OfString: openai.String(prompt)},
			}, option.WithHeader("x-request-id", requestID))
			if err != nil {
				logging.Logger.Error("Text generation request failed",
					zap.String("request_id", requestID),
					zap.String("model", model),
					zap.String("error", err.Error()),
				)

				return err
			}

			result = extractText(resp)

			logging.Logger.Debug("Text generation completed successfully",
				zap.String("request_id", requestID),
				zap.Int("text_length", len(result)),
			)

			return nil
		},
		retry.Attempts(config.Conf.AIRetryMaxAttempts),
		retry.DelayType(retry.BackOffDelay),
		retry.Delay(time.Duration(config.Conf.AIRetryMinBackoff)*time.Second),
		retry.MaxDelay(time.Duration(config.Conf.AIRetryMaxBackoff)*time.Second),
	)
	if err != nil {
		logging.Logger.Error("Text generation failed after all retry attempts",
			zap.String("request_id", requestID),
			zap.String("error", err.Error()),
		)

		return "", err
	}

	return result, nil
}
