package recorder

import (
	"context"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	"salon-agent/internal/config"
	"salon-agent/internal/logging"
	"salon-agent/internal/metrics"
	"salon-agent/internal/record"
)

const (
	sinkLocal  = "local"
	sinkRemote = "remote"

	kindCall    = "call"
	kindBooking = "booking"
)

// LocalSink is the append-only CSV log boundary.
type LocalSink interface {
	Append(path string, header, row []string) error
}

// RemoteSink is the tabular-store boundary.
type RemoteSink interface {
	AppendRow(ctx context.Context, sheetName string, row []string) error
}

// Recorder persists records to two independent sinks under a never-raise
// contract: every sink failure is logged and swallowed, a failure in one
// sink never suppresses the write to the other.
type Recorder struct {
	Local      LocalSink
	Remote     RemoteSink
	WorkerPool *ants.Pool
}

func NewRecorder(local LocalSink, remote RemoteSink, workerPool *ants.Pool) *Recorder {
	return &Recorder{
		Local:      local,
		Remote:     remote,
		WorkerPool: workerPool,
	}
}

// Persist writes the call record and, when present, its booking record to
// both sinks. Local appends run synchronously; the remote appends for one
// call are dispatched as a single pooled task so the booking row can never
// land before its parent call row, and the caller never waits for them.
func (r *Recorder) Persist(callRec record.CallRecord, bookingRec *record.BookingRecord) {
	r.appendLocal(config.Conf.CallsCSVPath, record.CallHeaders, callRec.Row(), kindCall, callRec.CallID)

	if bookingRec != nil {
		r.appendLocal(config.Conf.ScheduleCSVPath, record.BookingHeaders, bookingRec.Row(), kindBooking, bookingRec.CallID)
	}

	r.dispatchRemote(callRec, bookingRec)
}

func (r *Recorder) appendLocal(path string, header, row []string, kind, callID string) {
	err := r.Local.Append(path, header, row)
	if err != nil {
		logging.Logger.Error("Local sink append failed",
			zap.String("destination", path),
			zap.String("record_kind", kind),
			zap.String("call_id", callID),
			zap.String("error", err.Error()),
		)
		metrics.SinkFailures.WithLabelValues(sinkLocal, kind).Inc()

		return
	}

	logging.Logger.Debug("Local row appended",
		zap.String("destination", path),
		zap.String("record_kind", kind),
		zap.String("call_id", callID),
	)
}

func (r *Recorder) dispatchRemote(callRec record.CallRecord, bookingRec *record.BookingRecord) {
	err := r.WorkerPool.Submit(func() {
		r.appendRemote(record.SheetCalls, callRec.Row(), kindCall, callRec.CallID)

		if bookingRec != nil {
			r.appendRemote(record.SheetBookings, bookingRec.Row(), kindBooking, bookingRec.CallID)
		}
	})
	if err != nil {
		logging.Logger.Error("Failed to submit remote append to worker pool",
			zap.String("call_id", callRec.CallID),
			zap.String("error", err.Error()),
		)
		metrics.SinkFailures.WithLabelValues(sinkRemote, kindCall).Inc()

		if bookingRec != nil {
			metrics.SinkFailures.WithLabelValues(sinkRemote, kindBooking).Inc()
		}
	}
}

// appendRemote is the error boundary of the background dispatch: each append
// carries its own bounded timeout and its failure is logged and swallowed.
func (r *Recorder) appendRemote(sheetName string, row []string, kind, callID string) {
	ctx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(config.Conf.SheetsTimeout)*time.Second,
	)
	defer cancel()

	err := r.Remote.AppendRow(ctx, sheetName, row)
	if err != nil {
		logging.Logger.Error("Remote sink append failed",
			zap.String("destination", sheetName),
			zap.String("record_kind", kind),
			zap.String("call_id", callID),
			zap.String("error", err.Error()),
		)
		metrics.SinkFailures.WithLabelValues(sinkRemote, kind).Inc()

		return
	}

	logging.Logger.Debug("Remote row appended",
		zap.String("destination", sheetName),
		zap.String("record_kind", kind),
		zap.String("call_id", callID),
	)
}
