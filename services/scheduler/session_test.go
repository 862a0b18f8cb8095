package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"giftmeet/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openReadySession(t *testing.T, svc *DefaultSchedulerService, recipientID string) *models.BookingSession {
	t.Helper()
	session, err := svc.OpenSession(context.Background(), "camp-1", recipientID)
	require.NoError(t, err)
	require.Equal(t, models.PhaseReady, session.Phase)
	return session
}

func TestOpenSession_Ready(t *testing.T) {
	svc := newTestService(newFakeScheduleStore(testCampaign()))

	session, err := svc.OpenSession(context.Background(), "camp-1", "r1")
	require.NoError(t, err)

	assert.NotEmpty(t, session.SessionID)
	assert.Equal(t, models.PhaseReady, session.Phase)
	assert.Equal(t, "Spring Gifting", session.CampaignName)
	assert.Equal(t, models.HostFilterAll, session.HostFilter)
	assert.Len(t, session.Hosts, 2)
	assert.Nil(t, session.ExistingBooking)

	// The cursor lands on the month of the first scheduled date.
	assert.Equal(t, models.MonthCursor{Year: 2025, Month: time.June}, session.ViewedMonth)

	// The session is retrievable by its id.
	loaded, err := svc.GetSession(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, session.SessionID, loaded.SessionID)
}

func TestOpenSession_AlreadyBooked(t *testing.T) {
	// r9 already holds Bob's 11:00 slot on 2025-06-11.
	svc := newTestService(newFakeScheduleStore(testCampaign()))

	session, err := svc.OpenSession(context.Background(), "camp-1", "r9")
	require.NoError(t, err)

	assert.Equal(t, models.PhaseAlreadyBooked, session.Phase)
	require.NotNil(t, session.ExistingBooking)
	assert.Equal(t, "bob", session.ExistingBooking.HostID)
	assert.Equal(t, "b2", session.ExistingBooking.SlotID)
	assert.Equal(t, "2025-06-11", session.ExistingBooking.Date)
	assert.Equal(t, models.MonthCursor{Year: 2025, Month: time.June}, session.ViewedMonth)

	// The booking surface stays suppressed: no selection is accepted.
	_, err = svc.SelectDate(context.Background(), session.SessionID, "2025-06-10")
	assert.ErrorIs(t, err, ErrInvalidPhase)
	_, _, err = svc.ConfirmBooking(context.Background(), session.SessionID)
	assert.ErrorIs(t, err, ErrInvalidPhase)
}

func TestOpenSession_LoadError(t *testing.T) {
	store := newFakeScheduleStore(testCampaign())
	store.getErr = errors.New("mongo: connection reset")
	svc := newTestService(store)

	session, err := svc.OpenSession(context.Background(), "camp-1", "r1")
	require.NoError(t, err, "a fetch failure is session state, not an error")

	assert.Equal(t, models.PhaseLoadError, session.Phase)
	assert.NotEmpty(t, session.LastError)
	assert.Empty(t, session.Hosts)

	// Closing is safe from loadError.
	require.NoError(t, svc.CloseSession(context.Background(), session.SessionID))
	_, err = svc.GetSession(context.Background(), session.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestOpenSession_BookingRecordOutsideSnapshot(t *testing.T) {
	// The booking record exists in the store but the fetched schedule does
	// not show the slot booked yet. The store record wins.
	store := newFakeScheduleStore(testCampaign())
	store.existingBooking = &models.ExistingBooking{
		HostID:    "alice",
		HostName:  "Alice",
		SlotID:    "a1",
		Date:      "2025-06-10",
		StartTime: "10:00",
		EndTime:   "10:30",
	}
	svc := newTestService(store)

	session, err := svc.OpenSession(context.Background(), "camp-1", "r1")
	require.NoError(t, err)

	assert.Equal(t, models.PhaseAlreadyBooked, session.Phase)
	require.NotNil(t, session.ExistingBooking)
	assert.Equal(t, "a1", session.ExistingBooking.SlotID)
}

func TestOpenSession_FreshSessionPerOpen(t *testing.T) {
	svc := newTestService(newFakeScheduleStore(testCampaign()))

	first, err := svc.OpenSession(context.Background(), "camp-1", "r1")
	require.NoError(t, err)
	second, err := svc.OpenSession(context.Background(), "camp-1", "r1")
	require.NoError(t, err)

	assert.NotEqual(t, first.SessionID, second.SessionID)
}

func TestSetHostFilter_ClearsSelection(t *testing.T) {
	svc := newTestService(newFakeScheduleStore(testCampaign()))
	session := openReadySession(t, svc, "r1")
	ctx := context.Background()

	_, err := svc.SelectDate(ctx, session.SessionID, "2025-06-10")
	require.NoError(t, err)
	_, err = svc.SelectSlot(ctx, session.SessionID, "alice", "a1")
	require.NoError(t, err)

	updated, err := svc.SetHostFilter(ctx, session.SessionID, "bob")
	require.NoError(t, err)

	assert.Equal(t, "bob", updated.HostFilter)
	assert.Empty(t, updated.SelectedDate)
	assert.Empty(t, updated.SelectedSlotID)
	assert.Empty(t, updated.SelectedHostID)
}

func TestSetHostFilter_SameValueStillClears(t *testing.T) {
	svc := newTestService(newFakeScheduleStore(testCampaign()))
	session := openReadySession(t, svc, "r1")
	ctx := context.Background()

	_, err := svc.SetHostFilter(ctx, session.SessionID, "alice")
	require.NoError(t, err)
	_, err = svc.SelectDate(ctx, session.SessionID, "2025-06-10")
	require.NoError(t, err)

	updated, err := svc.SetHostFilter(ctx, session.SessionID, "alice")
	require.NoError(t, err)
	assert.Empty(t, updated.SelectedDate)
}

func TestSetHostFilter_UnknownHostRejected(t *testing.T) {
	svc := newTestService(newFakeScheduleStore(testCampaign()))
	session := openReadySession(t, svc, "r1")

	_, err := svc.SetHostFilter(context.Background(), session.SessionID, "mallory")
	var schedErr *SchedulerError
	require.ErrorAs(t, err, &schedErr)
	assert.Equal(t, "invalidSelection", schedErr.Code)
}

func TestSelectDate_ChangeClearsSlot(t *testing.T) {
	svc := newTestService(newFakeScheduleStore(testCampaign()))
	session := openReadySession(t, svc, "r1")
	ctx := context.Background()

	_, err := svc.SelectDate(ctx, session.SessionID, "2025-06-10")
	require.NoError(t, err)
	_, err = svc.SelectSlot(ctx, session.SessionID, "alice", "a1")
	require.NoError(t, err)

	updated, err := svc.SelectDate(ctx, session.SessionID, "2025-06-12")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-12", updated.SelectedDate)
	assert.Empty(t, updated.SelectedSlotID)
	assert.Empty(t, updated.SelectedHostID)

	// Re-selecting the same date keeps the slot.
	_, err = svc.SelectSlot(ctx, session.SessionID, "alice", "a3")
	require.NoError(t, err)
	updated, err = svc.SelectDate(ctx, session.SessionID, "2025-06-12")
	require.NoError(t, err)
	assert.Equal(t, "a3", updated.SelectedSlotID)
}

func TestSelectDate_Validation(t *testing.T) {
	svc := newTestService(newFakeScheduleStore(testCampaign()))
	session := openReadySession(t, svc, "r1")
	ctx := context.Background()

	_, err := svc.SelectDate(ctx, session.SessionID, "06/10/2025")
	assert.Error(t, err)

	// Empty clears the whole selection.
	_, err = svc.SelectDate(ctx, session.SessionID, "2025-06-10")
	require.NoError(t, err)
	updated, err := svc.SelectDate(ctx, session.SessionID, "")
	require.NoError(t, err)
	assert.Empty(t, updated.SelectedDate)
}

func TestSelectSlot_Guards(t *testing.T) {
	svc := newTestService(newFakeScheduleStore(testCampaign()))
	session := openReadySession(t, svc, "r1")
	ctx := context.Background()

	// No date selected yet.
	_, err := svc.SelectSlot(ctx, session.SessionID, "alice", "a1")
	assert.Error(t, err)

	_, err = svc.SelectDate(ctx, session.SessionID, "2025-06-11")
	require.NoError(t, err)

	// Booked slots are not selectable.
	_, err = svc.SelectSlot(ctx, session.SessionID, "bob", "b2")
	assert.Error(t, err)

	// A slot from another date is not found.
	_, err = svc.SelectSlot(ctx, session.SessionID, "alice", "a1")
	assert.Error(t, err)

	updated, err := svc.SelectSlot(ctx, session.SessionID, "bob", "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", updated.SelectedSlotID)
	assert.Equal(t, "bob", updated.SelectedHostID)
	assert.True(t, updated.HasSelection())
}

func TestSelectSlot_RespectsHostFilter(t *testing.T) {
	svc := newTestService(newFakeScheduleStore(testCampaign()))
	session := openReadySession(t, svc, "r1")
	ctx := context.Background()

	_, err := svc.SetHostFilter(ctx, session.SessionID, "alice")
	require.NoError(t, err)
	_, err = svc.SelectDate(ctx, session.SessionID, "2025-06-11")
	require.NoError(t, err)

	_, err = svc.SelectSlot(ctx, session.SessionID, "bob", "b1")
	assert.Error(t, err)
}

func TestNavigateMonth(t *testing.T) {
	svc := newTestService(newFakeScheduleStore(testCampaign()))
	session := openReadySession(t, svc, "r1")
	ctx := context.Background()

	updated, err := svc.NavigateMonth(ctx, session.SessionID, "next")
	require.NoError(t, err)
	assert.Equal(t, models.MonthCursor{Year: 2025, Month: time.July}, updated.ViewedMonth)

	updated, err = svc.NavigateMonth(ctx, session.SessionID, "prev")
	require.NoError(t, err)
	assert.Equal(t, models.MonthCursor{Year: 2025, Month: time.June}, updated.ViewedMonth)

	_, err = svc.NavigateMonth(ctx, session.SessionID, "sideways")
	assert.Error(t, err)
}

func TestNavigateMonth_AllowedWhenAlreadyBooked(t *testing.T) {
	svc := newTestService(newFakeScheduleStore(testCampaign()))

	session, err := svc.OpenSession(context.Background(), "camp-1", "r9")
	require.NoError(t, err)
	require.Equal(t, models.PhaseAlreadyBooked, session.Phase)

	updated, err := svc.NavigateMonth(context.Background(), session.SessionID, "next")
	require.NoError(t, err)
	assert.Equal(t, models.MonthCursor{Year: 2025, Month: time.July}, updated.ViewedMonth)
}

func TestConfirmBooking_RequiresSelection(t *testing.T) {
	svc := newTestService(newFakeScheduleStore(testCampaign()))
	session := openReadySession(t, svc, "r1")

	_, _, err := svc.ConfirmBooking(context.Background(), session.SessionID)
	var schedErr *SchedulerError
	require.ErrorAs(t, err, &schedErr)
	assert.Equal(t, "invalidSelection", schedErr.Code)
}

func TestConfirmBooking_Success(t *testing.T) {
	store := newFakeScheduleStore(testCampaign())
	svc := newTestService(store)
	session := openReadySession(t, svc, "r1")
	ctx := context.Background()

	_, err := svc.SelectDate(ctx, session.SessionID, "2025-06-10")
	require.NoError(t, err)
	_, err = svc.SelectSlot(ctx, session.SessionID, "alice", "a1")
	require.NoError(t, err)

	updated, confirmation, err := svc.ConfirmBooking(ctx, session.SessionID)
	require.NoError(t, err)
	require.NotNil(t, confirmation)

	assert.Equal(t, models.PhaseBookingSuccess, updated.Phase)
	assert.Equal(t, "alice", confirmation.HostID)
	assert.Equal(t, "a1", confirmation.SlotID)
	assert.Equal(t, "r1", confirmation.RecipientID)

	require.NotNil(t, updated.ExistingBooking)
	assert.Equal(t, "a1", updated.ExistingBooking.SlotID)

	// The snapshot merged the booked slot.
	_, slot := FindSlot(updated.Hosts, "alice", "2025-06-10", "a1")
	require.NotNil(t, slot)
	assert.True(t, slot.IsBooked)
	assert.Equal(t, "r1", slot.RecipientID)

	assert.Equal(t, 1, store.bookCalls)
}

func TestConfirmBooking_RejectedWhileInFlight(t *testing.T) {
	svc := newTestService(newFakeScheduleStore(testCampaign()))
	session := openReadySession(t, svc, "r1")
	ctx := context.Background()

	_, err := svc.SelectDate(ctx, session.SessionID, "2025-06-10")
	require.NoError(t, err)
	_, err = svc.SelectSlot(ctx, session.SessionID, "alice", "a1")
	require.NoError(t, err)

	// Force the persisted in-flight marker a crashed attempt would leave.
	inflight, err := svc.GetSession(ctx, session.SessionID)
	require.NoError(t, err)
	inflight.Phase = models.PhaseBooking
	require.NoError(t, svc.Sessions.Save(ctx, inflight))

	_, _, err = svc.ConfirmBooking(ctx, session.SessionID)
	assert.ErrorIs(t, err, ErrBookingInFlight)
	_, err = svc.SelectDate(ctx, session.SessionID, "2025-06-12")
	assert.ErrorIs(t, err, ErrBookingInFlight)
}

func TestConfirmBooking_SecondBookingRejected(t *testing.T) {
	store := newFakeScheduleStore(testCampaign())
	svc := newTestService(store)
	ctx := context.Background()

	// Two live sessions for the same recipient, opened before any booking.
	active := openReadySession(t, svc, "r1")
	stale := openReadySession(t, svc, "r1")

	_, err := svc.SelectDate(ctx, active.SessionID, "2025-06-10")
	require.NoError(t, err)
	_, err = svc.SelectSlot(ctx, active.SessionID, "alice", "a1")
	require.NoError(t, err)
	_, _, err = svc.ConfirmBooking(ctx, active.SessionID)
	require.NoError(t, err)

	// The stale session's snapshot still shows every slot open, so the
	// single-booking guard has to come from the store.
	_, err = svc.SelectDate(ctx, stale.SessionID, "2025-06-11")
	require.NoError(t, err)
	_, err = svc.SelectSlot(ctx, stale.SessionID, "bob", "b1")
	require.NoError(t, err)

	_, _, err = svc.ConfirmBooking(ctx, stale.SessionID)
	var schedErr *SchedulerError
	require.ErrorAs(t, err, &schedErr)
	assert.Equal(t, "bookingFailed", schedErr.Code)
	assert.False(t, schedErr.Retryable, "a duplicate booking is not retryable")

	// The first booking stands, b1 stays open, and reopening lands in
	// alreadyBooked pointing at it.
	campaign, err := store.GetCampaignSchedule(ctx, "camp-1")
	require.NoError(t, err)
	_, b1 := FindSlot(campaign.MeetingHosts, "bob", "2025-06-11", "b1")
	require.NotNil(t, b1)
	assert.False(t, b1.IsBooked)

	reopened, err := svc.OpenSession(ctx, "camp-1", "r1")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseAlreadyBooked, reopened.Phase)
	require.NotNil(t, reopened.ExistingBooking)
	assert.Equal(t, "a1", reopened.ExistingBooking.SlotID)
}

func TestConfirmBooking_NotifiesHost(t *testing.T) {
	store := newFakeScheduleStore(testCampaign())
	recorder := &recordingNotificationService{}
	svc := newTestService(store)
	svc.NotificationSvc = recorder
	ctx := context.Background()

	session := openReadySession(t, svc, "r1")
	_, err := svc.SelectDate(ctx, session.SessionID, "2025-06-10")
	require.NoError(t, err)
	_, err = svc.SelectSlot(ctx, session.SessionID, "alice", "a1")
	require.NoError(t, err)
	_, _, err = svc.ConfirmBooking(ctx, session.SessionID)
	require.NoError(t, err)

	require.Len(t, recorder.hosts, 1)
	assert.Equal(t, "alice", recorder.hosts[0].HostID)
	assert.Equal(t, "a1", recorder.confirmations[0].SlotID)
}

func TestNotifyHost_ResolvesHostWithoutBookedDay(t *testing.T) {
	// When the optimistic merge missed, the snapshot lacks the booked day
	// entirely. The notification still has to reach the host.
	recorder := &recordingNotificationService{}
	svc := newTestService(newFakeScheduleStore(testCampaign()))
	svc.NotificationSvc = recorder

	staleHosts := testHosts()
	staleHosts[0].Schedule = staleHosts[0].Schedule[:1]
	session := &models.BookingSession{
		SessionID:   "s1",
		CampaignID:  "camp-1",
		RecipientID: "r1",
		Hosts:       staleHosts,
	}
	confirmation := &models.BookingConfirmation{
		BookingID:   "bk-1",
		CampaignID:  "camp-1",
		HostID:      "alice",
		HostName:    "Alice",
		SlotID:      "a3",
		Date:        "2025-06-12",
		StartTime:   "09:00",
		EndTime:     "09:30",
		RecipientID: "r1",
	}

	svc.notifyHost(context.Background(), session, confirmation)

	require.Len(t, recorder.hosts, 1)
	assert.Equal(t, "alice", recorder.hosts[0].HostID)
}

func TestCloseSession_LeavesStoreUntouched(t *testing.T) {
	store := newFakeScheduleStore(testCampaign())
	svc := newTestService(store)
	session := openReadySession(t, svc, "r1")
	ctx := context.Background()

	_, err := svc.SelectDate(ctx, session.SessionID, "2025-06-10")
	require.NoError(t, err)
	_, err = svc.SelectSlot(ctx, session.SessionID, "alice", "a1")
	require.NoError(t, err)

	require.NoError(t, svc.CloseSession(ctx, session.SessionID))

	_, err = svc.GetSession(ctx, session.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Zero(t, store.bookCalls)

	// The slot stayed open for everyone else.
	campaign, err := store.GetCampaignSchedule(ctx, "camp-1")
	require.NoError(t, err)
	_, slot := FindSlot(campaign.MeetingHosts, "alice", "2025-06-10", "a1")
	require.NotNil(t, slot)
	assert.False(t, slot.IsBooked)
}
