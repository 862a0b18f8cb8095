package scheduler

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	scheduleRepo "giftmeet/database/repository/schedule"
	"giftmeet/models"
	"giftmeet/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func init() {
	// The service logs through the package-global logger, whose default
	// construction reads the loaded app config. Tests run without one.
	utils.Logger = zap.NewNop()
}

func testLogger() *zap.Logger { return zap.NewNop() }

// memorySessionStore is an in-memory SessionStore. Sessions round-trip
// through JSON so tests exercise the same serialization as Redis.
type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: make(map[string][]byte)}
}

func (s *memorySessionStore) Save(_ context.Context, session *models.BookingSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.SessionID] = data
	return nil
}

func (s *memorySessionStore) Get(_ context.Context, sessionID string) (*models.BookingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	var session models.BookingSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *memorySessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// fakeScheduleStore behaves like the mongo store: booking re-validates the
// slot and the single-booking invariant against its own state, so tests see
// real first-write-wins conflicts.
type fakeScheduleStore struct {
	mu        sync.Mutex
	campaign  *models.Campaign
	getErr    error
	bookErr   error
	bookCalls int

	// existingBooking, when set, is what FindBookingForRecipient reports
	// regardless of the campaign snapshot. Simulates a booking record the
	// embedded schedule does not show yet.
	existingBooking *models.ExistingBooking
}

func newFakeScheduleStore(campaign *models.Campaign) *fakeScheduleStore {
	return &fakeScheduleStore{campaign: campaign}
}

func (f *fakeScheduleStore) GetCampaignSchedule(_ context.Context, campaignID string) (*models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.campaign == nil || f.campaign.ID != campaignID {
		return nil, scheduleRepo.ErrCampaignNotFound
	}
	return copyCampaign(f.campaign), nil
}

func (f *fakeScheduleStore) BookSlot(_ context.Context, campaignID string, req models.BookingRequest) (*models.BookingConfirmation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookCalls++

	if f.bookErr != nil {
		return nil, f.bookErr
	}
	if f.campaign == nil || f.campaign.ID != campaignID {
		return nil, scheduleRepo.ErrCampaignNotFound
	}

	for _, host := range f.campaign.MeetingHosts {
		for _, day := range host.Schedule {
			for _, slot := range day.Slots {
				if slot.IsBooked && slot.RecipientID == req.RecipientID {
					return nil, scheduleRepo.ErrAlreadyBooked
				}
			}
		}
	}

	for i := range f.campaign.MeetingHosts {
		host := &f.campaign.MeetingHosts[i]
		if host.HostID != req.HostID {
			continue
		}
		for j := range host.Schedule {
			if host.Schedule[j].Date != req.Date {
				continue
			}
			for k := range host.Schedule[j].Slots {
				slot := &host.Schedule[j].Slots[k]
				if slot.SlotID != req.SlotID {
					continue
				}
				if slot.IsBooked {
					return nil, scheduleRepo.ErrSlotTaken
				}
				bookedAt := time.Now().UTC()
				slot.IsBooked = true
				slot.RecipientID = req.RecipientID
				slot.BookedAt = &bookedAt
				return &models.BookingConfirmation{
					BookingID:   uuid.New().String(),
					CampaignID:  campaignID,
					HostID:      host.HostID,
					HostName:    host.Name,
					SlotID:      slot.SlotID,
					Date:        req.Date,
					StartTime:   slot.StartTime,
					EndTime:     slot.EndTime,
					RecipientID: req.RecipientID,
					BookedAt:    bookedAt,
				}, nil
			}
		}
	}
	return nil, scheduleRepo.ErrSlotNotFound
}

func (f *fakeScheduleStore) UpsertCampaign(_ context.Context, campaign *models.Campaign) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.campaign = copyCampaign(campaign)
	return nil
}

func (f *fakeScheduleStore) ReplaceHosts(_ context.Context, campaignID string, hosts []models.Host) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.campaign == nil || f.campaign.ID != campaignID {
		return scheduleRepo.ErrCampaignNotFound
	}
	f.campaign.MeetingHosts = hosts
	return nil
}

func (f *fakeScheduleStore) FindBookingForRecipient(_ context.Context, campaignID, recipientID string) (*models.ExistingBooking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existingBooking != nil {
		return f.existingBooking, nil
	}
	if f.campaign == nil || f.campaign.ID != campaignID {
		return nil, scheduleRepo.ErrCampaignNotFound
	}
	return FindExistingBooking(f.campaign.MeetingHosts, recipientID), nil
}

// recordingNotificationService captures booking-confirmed notifications.
type recordingNotificationService struct {
	mu            sync.Mutex
	hosts         []models.Host
	confirmations []models.BookingConfirmation
}

func (r *recordingNotificationService) NotifyBookingConfirmed(_ context.Context, host models.Host, confirmation models.BookingConfirmation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hosts = append(r.hosts, host)
	r.confirmations = append(r.confirmations, confirmation)
	return nil
}

func copyCampaign(campaign *models.Campaign) *models.Campaign {
	data, _ := json.Marshal(campaign)
	var out models.Campaign
	_ = json.Unmarshal(data, &out)
	return &out
}

// testHosts builds the Alice/Bob schedule used across the scheduler tests:
// Alice offers slots on 2025-06-10 and 2025-06-12, Bob on 2025-06-11.
func testHosts() []models.Host {
	return []models.Host{
		{
			HostID: "alice",
			Name:   "Alice",
			Email:  "alice@example.com",
			Schedule: []models.ScheduleDay{
				{
					Date: "2025-06-10",
					Slots: []models.Slot{
						{SlotID: "a1", StartTime: "10:00", EndTime: "10:30"},
						{SlotID: "a2", StartTime: "14:00", EndTime: "14:30"},
					},
				},
				{
					Date: "2025-06-12",
					Slots: []models.Slot{
						{SlotID: "a3", StartTime: "09:00", EndTime: "09:30"},
					},
				},
			},
			Preferences: models.HostPreferences{SlotDurationMinutes: 30, Active: true},
		},
		{
			HostID: "bob",
			Name:   "Bob",
			Email:  "bob@example.com",
			Schedule: []models.ScheduleDay{
				{
					Date: "2025-06-11",
					Slots: []models.Slot{
						{SlotID: "b1", StartTime: "09:30", EndTime: "10:00"},
						{SlotID: "b2", StartTime: "11:00", EndTime: "11:30", IsBooked: true, RecipientID: "r9"},
					},
				},
			},
			Preferences: models.HostPreferences{SlotDurationMinutes: 30, Active: true},
		},
	}
}

func testCampaign() *models.Campaign {
	return &models.Campaign{
		ID:           "camp-1",
		Name:         "Spring Gifting",
		MeetingHosts: testHosts(),
	}
}

func newTestService(store scheduleRepo.ScheduleStore) *DefaultSchedulerService {
	return &DefaultSchedulerService{
		Store:    store,
		Sessions: newMemorySessionStore(),
		Executor: &BookingExecutor{Store: store, Logger: testLogger()},
	}
}
