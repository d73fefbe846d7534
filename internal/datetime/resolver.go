package datetime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"salon-agent/internal/ai"
	"salon-agent/internal/config"
	"salon-agent/internal/logging"
	"salon-agent/internal/utils"
)

const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Static errors for hard validation failures. A value that does not match
// the strict formats aborts the resolution, it never degrades to a guess.
var (
	ErrInvalidDate = errors.New("resolved date does not match YYYY-MM-DD")
	ErrInvalidTime = errors.New("resolved time does not match HH:MM")
)

// Normalized is a validated, timezone-explicit date/time. Date, Time and
// ISODateTime are all derived from one combined instant and never disagree.
type Normalized struct {
	Date        string `json:"visit_date"`
	Time        string `json:"visit_time"`
	ISODateTime string `json:"visit_datetime_iso"`
	Timezone    string `json:"timezone"`
	Confidence  string `json:"confidence"`
}

type Resolver struct {
	Generator ai.TextGenerator
}

func NewResolver(generator ai.TextGenerator) *Resolver {
	return &Resolver{Generator: generator}
}

// Resolve turns a pair of free-text date/time expressions into a Normalized
// value. The reference instant anchors relative expressions like "mañana por
// la tarde" so they resolve deterministically. Confidence is passed through
// from the interpretation step; a missing confidence field counts as low.
func (r *Resolver) Resolve(ctx context.Context, rawDate, rawTime string, reference time.Time) (*Normalized, error) {
	prompt := buildPrompt(rawDate, rawTime, reference)

	answer, err := r.Generator.GenerateText(ctx, config.Conf.ResolveModel, prompt)
	if err != nil {
		return nil, fmt.Errorf("datetime interpretation request failed: %w", err)
	}

	var payload struct {
		Date       string `json:"date"`
		Time       string `json:"time"`
		Confidence string `json:"confidence"`
	}

	err = json.Unmarshal([]byte(answer), &payload)
	if err != nil {
		return nil, fmt.Errorf("failed to parse datetime interpretation answer: %w", err)
	}

	_, err = time.Parse(dateLayout, payload.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, payload.Date)
	}

	_, err = time.Parse(timeLayout, payload.Time)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTime, payload.Time)
	}

	combined, err := time.ParseInLocation(
		dateLayout+" "+timeLayout,
		payload.Date+" "+payload.Time,
		utils.Location(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to combine resolved date and time: %w", err)
	}

	confidence := payload.Confidence
	if confidence == "" {
		confidence = ConfidenceLow
	}

	logging.Logger.Info("Resolved visit datetime",
		zap.String("raw_date", rawDate),
		zap.String("raw_time", rawTime),
		zap.String("resolved", combined.Format(time.RFC3339)),
		zap.String("confidence", confidence),
	)

	return &Normalized{
		Date:        combined.Format(dateLayout),
		Time:        combined.Format(timeLayout),
		ISODateTime: combined.Format(time.RFC3339),
		Timezone:    utils.TimezoneName,
		Confidence:  confidence,
	}, nil
}

func buildPrompt(rawDate, rawTime string, reference time.Time) string {
	return fmt.Sprintf(`Resuelve fecha y hora a valores explícitos usando la referencia dada.

REGLAS:
- Devuelve SOLO JSON válido
- No formatees para humanos
- No inventes valores
- Indica confidence si hay duda

Referencia (ISO):
%s

Entrada:
fecha: %q
hora: %q

Formato EXACTO:
{
"date": "YYYY-MM-DD",
"time": "HH:MM",
"confidence": "high|medium|low"
}`, reference.Format(time.RFC3339), rawDate, rawTime)
}
