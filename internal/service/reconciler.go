package service

import (
	"time"

	"parklot-service/internal/domain/parking"
	"parklot-service/internal/utils"
)

// Reconcile computes the shift report for a closed window. entryEvents
// and exitEvents must already be filtered to [windowStart, windowEnd).
//
// Occupancy is a set difference on plate identity, not chronological
// pairing: a plate seen in both sets is treated as gone regardless of
// event order or count. A vehicle that enters, exits, and re-enters
// within one window is therefore not counted as present. This mirrors
// the behavior the reports were always built on.
func Reconcile(entryEvents, exitEvents []parking.RecognitionEvent, windowEnd time.Time, policy parking.BillingPolicy) parking.ShiftReport {
	report := parking.ShiftReport{
		EntryCount: len(entryEvents),
		ExitCount:  len(exitEvents),
	}

	exitPlates := make(map[string]struct{}, len(exitEvents))
	for _, e := range exitEvents {
		exitPlates[utils.NormalizePlate(e.PlateNumber)] = struct{}{}
	}

	entryPlates := make(map[string]struct{}, len(entryEvents))
	for _, e := range entryEvents {
		entryPlates[utils.NormalizePlate(e.PlateNumber)] = struct{}{}
	}

	for plate := range entryPlates {
		if _, left := exitPlates[plate]; !left {
			report.CurrentOccupancy++
		}
	}

	// Bill each still-present entry for the whole-minute duration until
	// window end; partial buckets are not charged.
	var totalParkingMinutes int64
	for _, e := range entryEvents {
		if _, left := exitPlates[utils.NormalizePlate(e.PlateNumber)]; left {
			continue
		}
		parked := windowEnd.Sub(e.CapturedAt)
		if parked <= 0 {
			continue
		}
		totalParkingMinutes += int64(parked / time.Minute)
	}

	if policy.Valid() {
		buckets := totalParkingMinutes / int64(policy.IntervalMinutes)
		report.TotalFee = buckets * policy.FeePerInterval
	}

	return report
}
