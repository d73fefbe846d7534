package aftercall

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"salon-agent/internal/logging"
	"salon-agent/internal/metrics"
	"salon-agent/internal/record"
	"salon-agent/internal/session"
	"salon-agent/internal/transcript"
	"salon-agent/internal/utils"
)

// Summarizer condenses a transcript into one short paragraph.
type Summarizer interface {
	Summarize(ctx context.Context, items []transcript.Item) (string, error)
}

// Recorder persists the derived records to both sinks without ever failing
// the caller.
type Recorder interface {
	Persist(callRec record.CallRecord, bookingRec *record.BookingRecord)
}

// Pipeline converts a finished call into durable records. It is the terminal
// handler of call teardown and by contract always returns normally.
type Pipeline struct {
	Summarizer Summarizer
	Recorder   Recorder
}

func NewPipeline(summarizer Summarizer, recorder Recorder) *Pipeline {
	return &Pipeline{
		Summarizer: summarizer,
		Recorder:   recorder,
	}
}

// Run persists the call record, and the booking record when a visit was
// confirmed. Summarization failures degrade to an empty summary, sink
// failures are isolated inside the recorder, and anything unexpected is
// caught at this boundary so the caller never sees an error.
func (p *Pipeline) Run(ctx context.Context, snap session.Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			logging.Logger.Error("panic in after-call pipeline",
				zap.String("call_id", snap.CallID),
				zap.Any("recover", r),
			)
		}
	}()

	timer := prometheus.NewTimer(metrics.PipelineDuration)
	defer timer.ObserveDuration()

	endedAt := time.Now().In(utils.Location())
	duration := int(endedAt.Sub(snap.StartedAt).Seconds())

	var summary string

	if len(snap.Transcript) > 0 {
		var err error

		summary, err = p.Summarizer.Summarize(ctx, snap.Transcript)
		if err != nil {
			logging.Logger.Error("Summarization failed, storing record without summary",
				zap.String("call_id", snap.CallID),
				zap.String("error", err.Error()),
			)

			summary = ""
		}
	}

	callRec := record.CallRecord{
		CreatedAt:       endedAt,
		StartedAt:       snap.StartedAt,
		EndedAt:         endedAt,
		DurationSeconds: duration,
		Transcript:      transcript.ToSingleLine(snap.Transcript),
		Summary:         summary,
		CallID:          snap.CallID,
	}

	var bookingRec *record.BookingRecord

	if snap.ConfirmedVisit != nil {
		bookingRec = &record.BookingRecord{
			CreatedAt: endedAt,
			Name:      snap.ConfirmedVisit.Name,
			Purpose:   snap.ConfirmedVisit.Purpose,
			VisitDate: snap.ConfirmedVisit.VisitDate,
			VisitTime: snap.ConfirmedVisit.VisitTime,
			CallID:    snap.CallID,
		}
	}

	p.Recorder.Persist(callRec, bookingRec)

	logging.Logger.Info("After-call pipeline completed",
		zap.String("call_id", snap.CallID),
		zap.Int("duration_seconds", duration),
		zap.Bool("booking", bookingRec != nil),
	)
}
