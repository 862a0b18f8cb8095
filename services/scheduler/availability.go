package scheduler

import (
	"sort"

	"giftmeet/models"
)

// The availability resolver derives read-only views from a host list
// without mutating it. All functions are total over well-formed input; a
// host with an empty schedule simply contributes nothing.

func hostMatches(host models.Host, hostFilter string) bool {
	return hostFilter == models.HostFilterAll || host.HostID == hostFilter
}

// ScheduledDates returns the union of all dates that appear in the schedule
// of every host matching the filter, sorted ascending.
func ScheduledDates(hosts []models.Host, hostFilter string) []string {
	seen := make(map[string]bool)
	for _, host := range hosts {
		if !hostMatches(host, hostFilter) {
			continue
		}
		for _, day := range host.Schedule {
			seen[day.Date] = true
		}
	}

	dates := make([]string, 0, len(seen))
	for date := range seen {
		dates = append(dates, date)
	}
	// ISO dates sort correctly as strings.
	sort.Strings(dates)
	return dates
}

// OpenDates returns the sorted dates that still have at least one unbooked
// slot under the filter. Used to mark bookable calendar cells.
func OpenDates(hosts []models.Host, hostFilter string) []string {
	seen := make(map[string]bool)
	for _, host := range hosts {
		if !hostMatches(host, hostFilter) {
			continue
		}
		for _, day := range host.Schedule {
			for _, slot := range day.Slots {
				if !slot.IsBooked {
					seen[day.Date] = true
					break
				}
			}
		}
	}

	dates := make([]string, 0, len(seen))
	for date := range seen {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// AvailableSlotsForDate collects every unbooked slot on the given date from
// matching hosts, sorted ascending by start time. Ties between hosts at the
// same time keep their insertion order.
func AvailableSlotsForDate(hosts []models.Host, hostFilter, date string) []models.HostSlot {
	return slotsForDate(hosts, hostFilter, date, false)
}

// AllSlotsForDate is AvailableSlotsForDate including booked slots, for
// rendering a date's full state.
func AllSlotsForDate(hosts []models.Host, hostFilter, date string) []models.HostSlot {
	return slotsForDate(hosts, hostFilter, date, true)
}

func slotsForDate(hosts []models.Host, hostFilter, date string, includeBooked bool) []models.HostSlot {
	var result []models.HostSlot
	for _, host := range hosts {
		if !hostMatches(host, hostFilter) {
			continue
		}
		for _, day := range host.Schedule {
			if day.Date != date {
				continue
			}
			for _, slot := range day.Slots {
				if slot.IsBooked && !includeBooked {
					continue
				}
				result = append(result, models.HostSlot{
					HostID:   host.HostID,
					HostName: host.Name,
					Slot:     slot,
				})
			}
		}
	}

	// Fixed HH:MM format makes lexicographic compare time order.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Slot.StartTime < result[j].Slot.StartTime
	})
	return result
}

// HostAggregates computes per-host open-slot and scheduled-day counts for
// display.
func HostAggregates(hosts []models.Host) []models.HostAggregate {
	aggregates := make([]models.HostAggregate, 0, len(hosts))
	for _, host := range hosts {
		agg := models.HostAggregate{
			HostID:        host.HostID,
			HostName:      host.Name,
			ScheduledDays: len(host.Schedule),
		}
		for _, day := range host.Schedule {
			for _, slot := range day.Slots {
				if !slot.IsBooked {
					agg.OpenSlots++
				}
			}
		}
		aggregates = append(aggregates, agg)
	}
	return aggregates
}

// FindExistingBooking scans all hosts, days, and slots for one already
// booked by the recipient.
func FindExistingBooking(hosts []models.Host, recipientID string) *models.ExistingBooking {
	for _, host := range hosts {
		for _, day := range host.Schedule {
			for _, slot := range day.Slots {
				if slot.IsBooked && slot.RecipientID == recipientID {
					return &models.ExistingBooking{
						HostID:    host.HostID,
						HostName:  host.Name,
						SlotID:    slot.SlotID,
						Date:      day.Date,
						StartTime: slot.StartTime,
						EndTime:   slot.EndTime,
						BookedAt:  slot.BookedAt,
					}
				}
			}
		}
	}
	return nil
}

// FindSlot locates a specific (host, date, slot) triple in the host list.
func FindSlot(hosts []models.Host, hostID, date, slotID string) (*models.Host, *models.Slot) {
	for i := range hosts {
		if hosts[i].HostID != hostID {
			continue
		}
		for _, day := range hosts[i].Schedule {
			if day.Date != date {
				continue
			}
			for j := range day.Slots {
				if day.Slots[j].SlotID == slotID {
					return &hosts[i], &day.Slots[j]
				}
			}
		}
	}
	return nil, nil
}
