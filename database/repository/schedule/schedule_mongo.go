package scheduleRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"giftmeet/config"
	"giftmeet/database"
	"giftmeet/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoScheduleStore implements ScheduleStore using MongoDB. Each campaign
// is one document with the full meetingHosts array embedded.
type MongoScheduleStore struct {
	campaignColl *mongo.Collection
	bookingColl  *mongo.Collection
}

// NewMongoScheduleStore constructs a new instance of MongoScheduleStore.
func NewMongoScheduleStore() ScheduleStore {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoScheduleStore{
		campaignColl: db.Collection("campaigns"),
		bookingColl:  db.Collection("bookings"),
	}
}

// EnsureIndexes creates the indexes the store relies on.
func (repo *MongoScheduleStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := repo.campaignColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "meetingHosts.hostId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "meetingHosts.schedule.slots.recipientId", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create campaign indexes: %w", err)
	}

	_, err = repo.bookingColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "campaignId", Value: 1}, {Key: "recipientId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create booking index: %w", err)
	}
	return nil
}

// GetCampaignSchedule retrieves a campaign document with its embedded host
// schedules.
func (repo *MongoScheduleStore) GetCampaignSchedule(ctx context.Context, campaignID string) (*models.Campaign, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var campaign models.Campaign
	filter := bson.M{"id": campaignID}
	if err := repo.campaignColl.FindOne(ctx, filter).Decode(&campaign); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("error fetching campaign with id %s: %w", campaignID, err)
	}
	return &campaign, nil
}

// UpsertCampaign creates or replaces a campaign document.
func (repo *MongoScheduleStore) UpsertCampaign(ctx context.Context, campaign *models.Campaign) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": campaign.ID}
	opts := options.Replace().SetUpsert(true)
	if _, err := repo.campaignColl.ReplaceOne(ctx, filter, campaign, opts); err != nil {
		return fmt.Errorf("error upserting campaign %s: %w", campaign.ID, err)
	}
	return nil
}

// ReplaceHosts replaces the full meetingHosts array of a campaign.
func (repo *MongoScheduleStore) ReplaceHosts(ctx context.Context, campaignID string, hosts []models.Host) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": campaignID}
	update := bson.M{"$set": bson.M{"meetingHosts": hosts}}
	res, err := repo.campaignColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error replacing hosts for campaign %s: %w", campaignID, err)
	}
	if res.MatchedCount == 0 {
		return ErrCampaignNotFound
	}
	return nil
}

// FindBookingForRecipient looks the recipient's booking up directly on the
// bookings collection, using the unique (campaignId, recipientId) index.
// Returns (nil, nil) when the recipient holds no booking.
func (repo *MongoScheduleStore) FindBookingForRecipient(ctx context.Context, campaignID, recipientID string) (*models.ExistingBooking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"campaignId": campaignID, "recipientId": recipientID}
	var confirmation models.BookingConfirmation
	if err := repo.bookingColl.FindOne(ctx, filter).Decode(&confirmation); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error looking up booking for recipient %s: %w", recipientID, err)
	}

	bookedAt := confirmation.BookedAt
	return &models.ExistingBooking{
		HostID:    confirmation.HostID,
		HostName:  confirmation.HostName,
		SlotID:    confirmation.SlotID,
		Date:      confirmation.Date,
		StartTime: confirmation.StartTime,
		EndTime:   confirmation.EndTime,
		BookedAt:  &bookedAt,
	}, nil
}
