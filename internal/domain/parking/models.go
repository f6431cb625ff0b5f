package parking

import (
	"time"

	"gorm.io/datatypes"
)

// UnknownPlate is the sentinel stored when OCR yields no usable text.
const UnknownPlate = "Unknown"

// Direction is the entry/exit axis of a recognition event.
type Direction string

const (
	DirectionEntry   Direction = "entry"
	DirectionExit    Direction = "exit"
	DirectionUnknown Direction = "unknown"
)

// VehicleClass is the vehicle-class axis, independent of direction.
type VehicleClass string

const (
	ClassNormal   VehicleClass = "normal"
	ClassLight    VehicleClass = "light"
	ClassDisabled VehicleClass = "disabled"
	ClassIllegal  VehicleClass = "illegal"
)

// Category is the legacy five-way capture label. The legacy schemas
// conflated direction and vehicle class into this one enum; CategorySpec
// maps each label back onto the two orthogonal axes.
type Category string

const (
	CategoryEntry           Category = "entry"
	CategoryExit            Category = "exit"
	CategoryLightVehicle    Category = "light_vehicle"
	CategoryDisabledVehicle Category = "disabled_vehicle"
	CategoryIllegalParking  Category = "illegal_parking"
)

// Categories lists all valid capture categories in a fixed order.
var Categories = []Category{
	CategoryEntry,
	CategoryExit,
	CategoryLightVehicle,
	CategoryDisabledVehicle,
	CategoryIllegalParking,
}

type categorySpec struct {
	Direction Direction
	Class     VehicleClass
}

var categorySpecs = map[Category]categorySpec{
	CategoryEntry:           {Direction: DirectionEntry, Class: ClassNormal},
	CategoryExit:            {Direction: DirectionExit, Class: ClassNormal},
	CategoryLightVehicle:    {Direction: DirectionUnknown, Class: ClassLight},
	CategoryDisabledVehicle: {Direction: DirectionUnknown, Class: ClassDisabled},
	CategoryIllegalParking:  {Direction: DirectionUnknown, Class: ClassIllegal},
}

// CategorySpec resolves a capture category to its direction and vehicle
// class. ok is false for labels outside the closed set.
func CategorySpec(c Category) (Direction, VehicleClass, bool) {
	spec, ok := categorySpecs[c]
	if !ok {
		return "", "", false
	}
	return spec.Direction, spec.Class, true
}

// RecognitionEvent is one detected-vehicle record. Rows are append-only:
// no component mutates or deletes an event after Append.
type RecognitionEvent struct {
	ID            int64          `json:"id"`
	PlateNumber   string         `json:"plate_number"`
	Direction     Direction      `json:"direction"`
	VehicleClass  VehicleClass   `json:"vehicle_class"`
	CapturedAt    time.Time      `json:"captured_at"`
	ImageRef      *string        `json:"image_ref,omitempty"`
	PhoneNumber   *string        `json:"phone_number,omitempty"`
	RawDetections datatypes.JSON `json:"raw_detections,omitempty"`
	CreatedAt     time.Time      `json:"-"`
}

// EventFilter selects events for queries and reconciliation. Zero-value
// fields are not applied; the time window is half-open [From, To).
type EventFilter struct {
	Direction     Direction
	VehicleClass  VehicleClass
	From          time.Time
	To            time.Time
	PlateContains string
}

// WorkSession is one operator's attendance window. EndedAt nil means the
// session is open; the counters and fee stay zero until reconciliation
// fills them at close time.
type WorkSession struct {
	ID               int64      `json:"id"`
	OperatorID       string     `json:"operator_id"`
	StartedAt        time.Time  `json:"started_at"`
	EndedAt          *time.Time `json:"ended_at,omitempty"`
	EntryCount       int        `json:"entry_count"`
	ExitCount        int        `json:"exit_count"`
	CurrentOccupancy int        `json:"current_occupancy"`
	TotalFee         int64      `json:"total_fee"`
	CreatedAt        time.Time  `json:"-"`
}

// Open reports whether the session has not been closed yet.
func (s *WorkSession) Open() bool {
	return s.EndedAt == nil
}

// ShiftReport is the reconciler output applied to a session at close.
type ShiftReport struct {
	EntryCount       int   `json:"entry_count"`
	ExitCount        int   `json:"exit_count"`
	CurrentOccupancy int   `json:"current_occupancy"`
	TotalFee         int64 `json:"total_fee"`
}

// BillingPolicy quantizes parking duration into fee buckets. Supplied by
// configuration; the reconciler treats it as read-only.
type BillingPolicy struct {
	FeePerInterval  int64
	IntervalMinutes int
}

// Valid reports whether both policy values are positive.
func (p BillingPolicy) Valid() bool {
	return p.FeePerInterval > 0 && p.IntervalMinutes > 0
}
