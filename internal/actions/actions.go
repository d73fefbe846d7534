package actions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"salon-agent/internal/datetime"
	"salon-agent/internal/logging"
	"salon-agent/internal/session"
	"salon-agent/internal/utils"
)

// ClarifyDateTimeMessage is returned whenever a booking attempt cannot rely
// on the resolved date/time, either because confidence was not high or
// because resolution failed outright.
const ClarifyDateTimeMessage = "No quedó clara la fecha u hora. ¿Me la puedes confirmar?"

const (
	quoteBasePrice     = 5000
	quotePricePerGuest = 350

	weddingSurcharge   = 1.2
	corporateSurcharge = 1.1
)

// Resolver normalizes free-text date/time expressions.
type Resolver interface {
	Resolve(ctx context.Context, rawDate, rawTime string, reference time.Time) (*datetime.Normalized, error)
}

// Actions implements the tools the dialogue layer can invoke during a call.
type Actions struct {
	Resolver Resolver
}

func New(resolver Resolver) *Actions {
	return &Actions{Resolver: resolver}
}

func (a *Actions) MultiplyNumbers(callID string, number1, number2 int) string {
	result := number1 * number2

	logging.Logger.Info("multiply_numbers",
		zap.String("call_id", callID),
		zap.Int("n1", number1),
		zap.Int("n2", number2),
		zap.Int("result", result),
	)

	return fmt.Sprintf("The product of %d and %d is %d", number1, number2, result)
}

// ScheduleResult is the outcome of a booking attempt. ConfirmedVisit is nil
// when the attempt did not pass the confidence gate.
type ScheduleResult struct {
	Message        string
	ConfirmedVisit *session.ConfirmedVisit
}

// ScheduleVisit resolves the requested date/time and, only on high
// confidence, confirms the visit. Availability checking is simulated: every
// resolved slot is available. A hard resolution failure propagates to the
// caller, which must ask the user to clarify instead of booking.
func (a *Actions) ScheduleVisit(
	ctx context.Context,
	callID, name, rawDate, rawTime, purpose string,
) (*ScheduleResult, error) {
	logging.Logger.Info("schedule_visit_raw",
		zap.String("call_id", callID),
		zap.String("name", name),
		zap.String("date", rawDate),
		zap.String("time", rawTime),
		zap.String("purpose", purpose),
	)

	normalized, err := a.Resolver.Resolve(ctx, rawDate, rawTime, time.Now().In(utils.Location()))
	if err != nil {
		return nil, err
	}

	if normalized.Confidence != datetime.ConfidenceHigh {
		logging.Logger.Info("schedule_visit_low_confidence",
			zap.String("call_id", callID),
			zap.String("confidence", normalized.Confidence),
		)

		return &ScheduleResult{Message: ClarifyDateTimeMessage}, nil
	}

	visit := &session.ConfirmedVisit{
		Name:      name,
		Purpose:   purpose,
		VisitDate: normalized.Date,
		VisitTime: normalized.Time,
	}

	logging.Logger.Info("schedule_visit_confirmed",
		zap.String("call_id", callID),
		zap.String("date", visit.VisitDate),
		zap.String("time", visit.VisitTime),
	)

	return &ScheduleResult{
		Message: fmt.Sprintf(
			"Perfecto %s. Tu visita quedó agendada para el %s a las %s.",
			name, visit.VisitDate, visit.VisitTime,
		),
		ConfirmedVisit: visit,
	}, nil
}

// QuoteEvent estimates the price of an event in MXN.
func (a *Actions) QuoteEvent(callID, eventType, tentativeDate string, guestCount int) string {
	logging.Logger.Info("quote_event",
		zap.String("call_id", callID),
		zap.String("event_type", eventType),
		zap.String("tentative_date", tentativeDate),
		zap.Int("guests", guestCount),
	)

	quote := float64(quoteBasePrice + guestCount*quotePricePerGuest)

	switch strings.ToLower(eventType) {
	case "boda", "wedding":
		quote *= weddingSurcharge
	case "conferencia", "corporativo":
		quote *= corporateSurcharge
	}

	return fmt.Sprintf(
		"Para un %s con aproximadamente %d invitados, la cotización estimada es de %d MXN.",
		eventType, guestCount, int(quote),
	)
}
