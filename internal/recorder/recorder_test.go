package recorder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/require"
	"salon-agent/internal/config"
	"salon-agent/internal/record"
)

type localCall struct {
	path   string
	header []string
	row    []string
}

type fakeLocal struct {
	mu    sync.Mutex
	calls []localCall
	err   error
}

func (f *fakeLocal) Append(path string, header, row []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, localCall{path: path, header: header, row: row})

	return f.err
}

func (f *fakeLocal) snapshot() []localCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]localCall(nil), f.calls...)
}

type remoteCall struct {
	sheet string
	row   []string
}

type fakeRemote struct {
	mu    sync.Mutex
	calls []remoteCall
	err   error
}

func (f *fakeRemote) AppendRow(_ context.Context, sheetName string, row []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, remoteCall{sheet: sheetName, row: row})

	return f.err
}

func (f *fakeRemote) snapshot() []remoteCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]remoteCall(nil), f.calls...)
}

func newTestRecorder(t *testing.T, local *fakeLocal, remote *fakeRemote) *Recorder {
	t.Helper()

	pool, err := ants.NewPool(2)
	require.NoError(t, err)

	t.Cleanup(pool.Release)

	return NewRecorder(local, remote, pool)
}

func sampleRecords() (record.CallRecord, *record.BookingRecord) {
	created := time.Date(2026, 1, 20, 19, 5, 42, 0, time.UTC)

	callRec := record.CallRecord{
		CreatedAt:       created,
		StartedAt:       created.Add(-342 * time.Second),
		EndedAt:         created,
		DurationSeconds: 342,
		Transcript:      "USER: Quiero una cita",
		CallID:          "call-1",
	}

	bookingRec := &record.BookingRecord{
		CreatedAt: created,
		Name:      "Ana",
		Purpose:   "boda",
		VisitDate: "2026-02-14",
		VisitTime: "18:00",
		CallID:    "call-1",
	}

	return callRec, bookingRec
}

func TestPersistWritesBothSinksInOrder(t *testing.T) {
	local := &fakeLocal{}
	remote := &fakeRemote{}
	rec := newTestRecorder(t, local, remote)

	callRec, bookingRec := sampleRecords()
	rec.Persist(callRec, bookingRec)

	localCalls := local.snapshot()
	require.Len(t, localCalls, 2)
	require.Equal(t, config.Conf.CallsCSVPath, localCalls[0].path)
	require.Equal(t, record.CallHeaders, localCalls[0].header)
	require.Equal(t, config.Conf.ScheduleCSVPath, localCalls[1].path)
	require.Equal(t, record.BookingHeaders, localCalls[1].header)

	require.Eventually(t, func() bool {
		return len(remote.snapshot()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	remoteCalls := remote.snapshot()
	require.Equal(t, record.SheetCalls, remoteCalls[0].sheet)
	require.Equal(t, callRec.Row(), remoteCalls[0].row)
	require.Equal(t, record.SheetBookings, remoteCalls[1].sheet)
	require.Equal(t, bookingRec.Row(), remoteCalls[1].row)
}

func TestPersistWithoutBookingWritesNoBookingRow(t *testing.T) {
	local := &fakeLocal{}
	remote := &fakeRemote{}
	rec := newTestRecorder(t, local, remote)

	callRec, _ := sampleRecords()
	rec.Persist(callRec, nil)

	require.Len(t, local.snapshot(), 1)

	require.Eventually(t, func() bool {
		return len(remote.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.Equal(t, record.SheetCalls, remote.snapshot()[0].sheet)
}

func TestPersistSwallowsLocalFailure(t *testing.T) {
	local := &fakeLocal{err: errors.New("disk full")}
	remote := &fakeRemote{}
	rec := newTestRecorder(t, local, remote)

	callRec, bookingRec := sampleRecords()

	require.NotPanics(t, func() {
		rec.Persist(callRec, bookingRec)
	})

	// remote attempt is not suppressed by the local failure
	require.Eventually(t, func() bool {
		return len(remote.snapshot()) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPersistSwallowsRemoteFailure(t *testing.T) {
	local := &fakeLocal{}
	remote := &fakeRemote{err: errors.New("quota exceeded")}
	rec := newTestRecorder(t, local, remote)

	callRec, bookingRec := sampleRecords()

	require.NotPanics(t, func() {
		rec.Persist(callRec, bookingRec)
	})

	require.Len(t, local.snapshot(), 2)

	// the booking append is still attempted after the call append failed
	require.Eventually(t, func() bool {
		return len(remote.snapshot()) == 2
	}, 2*time.Second, 10*time.Millisecond)
}
