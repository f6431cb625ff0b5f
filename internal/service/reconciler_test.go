package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"parklot-service/internal/domain/parking"
)

var testPolicy = parking.BillingPolicy{FeePerInterval: 100, IntervalMinutes: 10}

func entryEvent(plate string, at time.Time) parking.RecognitionEvent {
	return parking.RecognitionEvent{
		PlateNumber:  plate,
		Direction:    parking.DirectionEntry,
		VehicleClass: parking.ClassNormal,
		CapturedAt:   at,
	}
}

func exitEvent(plate string, at time.Time) parking.RecognitionEvent {
	return parking.RecognitionEvent{
		PlateNumber:  plate,
		Direction:    parking.DirectionExit,
		VehicleClass: parking.ClassNormal,
		CapturedAt:   at,
	}
}

func TestReconcileEmptyWindow(t *testing.T) {
	report := Reconcile(nil, nil, time.Now(), testPolicy)

	require.Zero(t, report.EntryCount)
	require.Zero(t, report.ExitCount)
	require.Zero(t, report.CurrentOccupancy)
	require.Zero(t, report.TotalFee)
}

func TestReconcileMatchedEntryExit(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	t1 := t0.Add(30 * time.Minute)
	windowEnd := t0.Add(time.Hour)

	report := Reconcile(
		[]parking.RecognitionEvent{entryEvent("1234", t0)},
		[]parking.RecognitionEvent{exitEvent("1234", t1)},
		windowEnd,
		testPolicy,
	)

	require.Equal(t, 1, report.EntryCount)
	require.Equal(t, 1, report.ExitCount)
	require.Equal(t, 0, report.CurrentOccupancy)
	require.EqualValues(t, 0, report.TotalFee)
}

func TestReconcileBillsFullBucketsOnly(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	windowEnd := t0.Add(25 * time.Minute)

	report := Reconcile(
		[]parking.RecognitionEvent{entryEvent("5678", t0)},
		nil,
		windowEnd,
		testPolicy,
	)

	require.Equal(t, 1, report.EntryCount)
	require.Equal(t, 1, report.CurrentOccupancy)
	// 25 minutes = two full 10-minute buckets, remainder unbilled.
	require.EqualValues(t, 200, report.TotalFee)
}

func TestReconcileMixedShift(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	windowEnd := t0.Add(time.Hour)

	report := Reconcile(
		[]parking.RecognitionEvent{
			entryEvent("1111", t0),
			entryEvent("2222", t0.Add(10*time.Minute)),
		},
		[]parking.RecognitionEvent{
			exitEvent("1111", t0.Add(20*time.Minute)),
		},
		windowEnd,
		testPolicy,
	)

	require.Equal(t, 2, report.EntryCount)
	require.Equal(t, 1, report.ExitCount)
	require.Equal(t, 1, report.CurrentOccupancy)
	// Only 2222 is billed: 50 minutes parked, five buckets.
	require.EqualValues(t, 500, report.TotalFee)
}

func TestReconcileSetSemanticsIgnoreOrderAndRepeats(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	windowEnd := t0.Add(time.Hour)

	// Exit recorded before the entry and a duplicate entry: the plate is
	// still treated as gone. Re-entry inside a window is a known
	// limitation of the set-difference model.
	report := Reconcile(
		[]parking.RecognitionEvent{
			entryEvent("3333", t0.Add(5*time.Minute)),
			entryEvent("3333", t0.Add(40*time.Minute)),
		},
		[]parking.RecognitionEvent{
			exitEvent("3333", t0.Add(1*time.Minute)),
		},
		windowEnd,
		testPolicy,
	)

	require.Equal(t, 2, report.EntryCount)
	require.Equal(t, 1, report.ExitCount)
	require.Equal(t, 0, report.CurrentOccupancy)
	require.EqualValues(t, 0, report.TotalFee)
}

func TestReconcileNormalizesPlatesBeforeMatching(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	windowEnd := t0.Add(time.Hour)

	report := Reconcile(
		[]parking.RecognitionEvent{entryEvent("12가 3456", t0)},
		[]parking.RecognitionEvent{exitEvent("12가3456", t0.Add(30*time.Minute))},
		windowEnd,
		testPolicy,
	)

	require.Equal(t, 0, report.CurrentOccupancy)
	require.EqualValues(t, 0, report.TotalFee)
}
