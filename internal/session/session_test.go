package session

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCallIDFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^call_\d{14}_[0-9a-f]{8}$`)

	first := NewCallID()
	second := NewCallID()

	require.Regexp(t, pattern, first)
	require.Regexp(t, pattern, second)
	require.NotEqual(t, first, second)
}

func TestConfirmVisitSetOnce(t *testing.T) {
	s := New()

	require.NoError(t, s.ConfirmVisit(ConfirmedVisit{Name: "Ana", Purpose: "boda", VisitDate: "2026-02-14", VisitTime: "18:00"}))

	err := s.ConfirmVisit(ConfirmedVisit{Name: "Luis"})
	require.ErrorIs(t, err, ErrVisitAlreadyConfirmed)

	snap := s.Snapshot()
	require.NotNil(t, snap.ConfirmedVisit)
	require.Equal(t, "Ana", snap.ConfirmedVisit.Name)
}

func TestSnapshotIsIsolatedFromLaterMutations(t *testing.T) {
	s := New()
	s.AppendUtterance("user", "Quiero una cita")

	snap := s.Snapshot()
	require.Len(t, snap.Transcript, 1)
	require.Nil(t, snap.ConfirmedVisit)

	s.AppendUtterance("assistant", "¿Para cuándo?")
	require.NoError(t, s.ConfirmVisit(ConfirmedVisit{Name: "Ana"}))

	require.Len(t, snap.Transcript, 1)
	require.Nil(t, snap.ConfirmedVisit)
}

func TestSnapshotCarriesIdentityAndStart(t *testing.T) {
	s := New()
	snap := s.Snapshot()

	require.Equal(t, s.CallID(), snap.CallID)
	require.Equal(t, s.StartedAt(), snap.StartedAt)
}

func TestStoreTrackReturnsSameSession(t *testing.T) {
	store := NewStore()

	first := store.Track("call_1")
	second := store.Track("call_1")
	other := store.Track("call_2")

	require.Same(t, first, second)
	require.NotSame(t, first, other)
	require.Equal(t, "call_1", first.CallID())
}

func TestStoreLookupAndRemove(t *testing.T) {
	store := NewStore()

	_, ok := store.Lookup("call_1")
	require.False(t, ok)

	tracked := store.Track("call_1")
	require.NoError(t, tracked.ConfirmVisit(ConfirmedVisit{Name: "Ana"}))

	found, ok := store.Lookup("call_1")
	require.True(t, ok)
	require.NotNil(t, found.Snapshot().ConfirmedVisit)

	store.Remove("call_1")

	_, ok = store.Lookup("call_1")
	require.False(t, ok)
}
