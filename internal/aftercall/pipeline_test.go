package aftercall

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"salon-agent/internal/record"
	"salon-agent/internal/session"
	"salon-agent/internal/transcript"
	"salon-agent/internal/utils"
)

type fakeSummarizer struct {
	summary string
	err     error
	panics  bool

	calls int
}

func (f *fakeSummarizer) Summarize(_ context.Context, _ []transcript.Item) (string, error) {
	f.calls++

	if f.panics {
		panic("summarizer exploded")
	}

	return f.summary, f.err
}

type fakeRecorder struct {
	panics bool

	callRec    *record.CallRecord
	bookingRec *record.BookingRecord
	calls      int
}

func (f *fakeRecorder) Persist(callRec record.CallRecord, bookingRec *record.BookingRecord) {
	f.calls++

	if f.panics {
		panic("recorder exploded")
	}

	f.callRec = &callRec
	f.bookingRec = bookingRec
}

func sampleSnapshot(confirmed *session.ConfirmedVisit) session.Snapshot {
	return session.Snapshot{
		CallID:    "call_20260120190000_ab12cd34",
		StartedAt: time.Date(2026, 1, 20, 19, 0, 0, 0, utils.Location()),
		Transcript: []transcript.Item{
			{Role: "user", Content: "Quiero una cita"},
			{Role: "assistant", Content: "¿Para cuándo?"},
		},
		ConfirmedVisit: confirmed,
	}
}

func TestRunWritesCallRecordWithoutBooking(t *testing.T) {
	summarizer := &fakeSummarizer{summary: "El cliente pidió una cita."}
	recorder := &fakeRecorder{}
	pipeline := NewPipeline(summarizer, recorder)

	pipeline.Run(context.Background(), sampleSnapshot(nil))

	require.Equal(t, 1, recorder.calls)
	require.NotNil(t, recorder.callRec)
	require.Nil(t, recorder.bookingRec)

	require.Equal(t, "call_20260120190000_ab12cd34", recorder.callRec.CallID)
	require.Equal(t, "USER: Quiero una cita | ASSISTANT: ¿Para cuándo?", recorder.callRec.Transcript)
	require.Equal(t, "El cliente pidió una cita.", recorder.callRec.Summary)
	require.Equal(t, recorder.callRec.CreatedAt, recorder.callRec.EndedAt)
}

func TestRunWritesBookingWithSharedCreatedAt(t *testing.T) {
	summarizer := &fakeSummarizer{summary: "Cita confirmada."}
	recorder := &fakeRecorder{}
	pipeline := NewPipeline(summarizer, recorder)

	confirmed := &session.ConfirmedVisit{Name: "Ana", Purpose: "boda", VisitDate: "2026-02-14", VisitTime: "18:00"}
	pipeline.Run(context.Background(), sampleSnapshot(confirmed))

	require.NotNil(t, recorder.bookingRec)
	require.Equal(t, "Ana", recorder.bookingRec.Name)
	require.Equal(t, "boda", recorder.bookingRec.Purpose)
	require.Equal(t, recorder.callRec.CallID, recorder.bookingRec.CallID)
	require.Equal(t, recorder.callRec.CreatedAt, recorder.bookingRec.CreatedAt)
}

func TestRunSkipsSummarizationOnEmptyTranscript(t *testing.T) {
	summarizer := &fakeSummarizer{summary: "should not be used"}
	recorder := &fakeRecorder{}
	pipeline := NewPipeline(summarizer, recorder)

	snap := sampleSnapshot(nil)
	snap.Transcript = nil
	pipeline.Run(context.Background(), snap)

	require.Equal(t, 0, summarizer.calls)
	require.Equal(t, "", recorder.callRec.Summary)
	require.Equal(t, "", recorder.callRec.Transcript)
}

func TestRunContinuesWhenSummarizationFails(t *testing.T) {
	summarizer := &fakeSummarizer{err: errors.New("model unavailable")}
	recorder := &fakeRecorder{}
	pipeline := NewPipeline(summarizer, recorder)

	pipeline.Run(context.Background(), sampleSnapshot(nil))

	require.Equal(t, 1, recorder.calls)
	require.Equal(t, "", recorder.callRec.Summary)
	require.NotEmpty(t, recorder.callRec.Transcript)
}

func TestRunNegativeDurationPassesThrough(t *testing.T) {
	summarizer := &fakeSummarizer{summary: "ok"}
	recorder := &fakeRecorder{}
	pipeline := NewPipeline(summarizer, recorder)

	snap := sampleSnapshot(nil)
	snap.StartedAt = time.Now().In(utils.Location()).Add(90 * time.Second)
	pipeline.Run(context.Background(), snap)

	require.Less(t, recorder.callRec.DurationSeconds, 0)
}

func TestRunNeverPanics(t *testing.T) {
	cases := []struct {
		name       string
		summarizer *fakeSummarizer
		recorder   *fakeRecorder
	}{
		{name: "summarizer panics", summarizer: &fakeSummarizer{panics: true}, recorder: &fakeRecorder{}},
		{name: "recorder panics", summarizer: &fakeSummarizer{summary: "ok"}, recorder: &fakeRecorder{panics: true}},
		{name: "both panic", summarizer: &fakeSummarizer{panics: true}, recorder: &fakeRecorder{panics: true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pipeline := NewPipeline(tc.summarizer, tc.recorder)

			require.NotPanics(t, func() {
				pipeline.Run(context.Background(), sampleSnapshot(nil))
			})
		})
	}
}
