package scheduleRepo

import (
	"context"
	"fmt"
	"time"

	"giftmeet/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BookSlot reserves a slot for a recipient. Both preconditions the session
// already checked are re-validated here under a transaction: the slot must
// still be unbooked, and the recipient must hold no other booking in the
// campaign. The unique (campaignId, recipientId) index on the bookings
// collection arbitrates concurrent attempts; first write wins.
func (repo *MongoScheduleStore) BookSlot(
	ctx context.Context,
	campaignID string,
	req models.BookingRequest,
) (*models.BookingConfirmation, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := repo.campaignColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	bookedAt := time.Now().UTC()

	txnFn := func(sc mongo.SessionContext) (interface{}, error) {
		// Locate the campaign and the target slot for the confirmation echo.
		var campaign models.Campaign
		if err := repo.campaignColl.FindOne(sc, bson.M{"id": campaignID}).Decode(&campaign); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, ErrCampaignNotFound
			}
			return nil, fmt.Errorf("fetch campaign failed: %w", err)
		}

		var host *models.Host
		var slot *models.Slot
		for i := range campaign.MeetingHosts {
			h := &campaign.MeetingHosts[i]
			if h.HostID != req.HostID {
				continue
			}
			host = h
			for _, day := range h.Schedule {
				if day.Date != req.Date {
					continue
				}
				for j := range day.Slots {
					if day.Slots[j].SlotID == req.SlotID {
						slot = &day.Slots[j]
					}
				}
			}
		}
		if host == nil || slot == nil {
			return nil, ErrSlotNotFound
		}
		if slot.IsBooked {
			return nil, ErrSlotTaken
		}

		// One booking per recipient per campaign.
		for _, h := range campaign.MeetingHosts {
			for _, day := range h.Schedule {
				for _, s := range day.Slots {
					if s.IsBooked && s.RecipientID == req.RecipientID {
						return nil, ErrAlreadyBooked
					}
				}
			}
		}

		confirmation := &models.BookingConfirmation{
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
		}

		// The unique index rejects a second booking racing in from another
		// transaction for the same recipient.
		if _, err := repo.bookingColl.InsertOne(sc, confirmation); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, ErrAlreadyBooked
			}
			return nil, fmt.Errorf("insert booking failed: %w", err)
		}

		// Flip the slot only if it is still unbooked.
		filter := bson.M{"id": campaignID}
		update := bson.M{"$set": bson.M{
			"meetingHosts.$[h].schedule.$[d].slots.$[s].isBooked":    true,
			"meetingHosts.$[h].schedule.$[d].slots.$[s].recipientId": req.RecipientID,
			"meetingHosts.$[h].schedule.$[d].slots.$[s].bookedAt":    bookedAt,
		}}
		opts := options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{
				bson.M{"h.hostId": req.HostID},
				bson.M{"d.date": req.Date},
				bson.M{"s.slotId": req.SlotID, "s.isBooked": false},
			},
		})

		res, err := repo.campaignColl.UpdateOne(sc, filter, update, opts)
		if err != nil {
			return nil, fmt.Errorf("mark slot booked failed: %w", err)
		}
		if res.ModifiedCount == 0 {
			return nil, ErrSlotTaken
		}

		return confirmation, nil
	}

	result, err := sess.WithTransaction(ctx, txnFn)
	if err != nil {
		return nil, err
	}
	return result.(*models.BookingConfirmation), nil
}
