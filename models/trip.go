// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

const (
	TripTypeName      = "Trip"
	OperationTypeName = "Operation"
)

// Trip is a fishing trip observed on board. It is the root data entity of
// the offline workflow.
type Trip struct {
	Base

	ProgramLabel        string       `json:"programLabel"`
	VesselID            *int64       `json:"vesselId,omitempty"`
	DepartureDateTime   *time.Time   `json:"departureDateTime,omitempty"`
	ReturnDateTime      *time.Time   `json:"returnDateTime,omitempty"`
	DepartureLocationID *int64       `json:"departureLocationId,omitempty"`
	ReturnLocationID    *int64       `json:"returnLocationId,omitempty"`
	Comments            string       `json:"comments,omitempty"`
	RecorderPersonID    *int64       `json:"recorderPersonId,omitempty"`
	ObserverIDs         []int64      `json:"observerIds,omitempty"`
	SyncStatus          SyncStatus   `json:"synchronizationStatus,omitempty"`
	Gears               []TripGear   `json:"gears,omitempty"`
	Operations          []*Operation `json:"operations,omitempty"`
}

// TripGear is a physical gear used during a trip.
type TripGear struct {
	Rank   int    `json:"rank"`
	GearID int64  `json:"gearId"`
	Label  string `json:"label,omitempty"`
}

// TypeName implements [Entity].
func (t *Trip) TypeName() string { return TripTypeName }

// SynchronizationStatus implements [RootEntity].
func (t *Trip) SynchronizationStatus() SyncStatus { return t.SyncStatus }

// SetSynchronizationStatus implements [RootEntity].
func (t *Trip) SetSynchronizationStatus(status SyncStatus) { t.SyncStatus = status }

// Children implements [RootEntity].
func (t *Trip) Children() []Entity {
	children := make([]Entity, 0, len(t.Operations))
	for _, op := range t.Operations {
		if op != nil {
			children = append(children, op)
		}
	}
	return children
}

// Summary implements [Summarizer]. The summary drops operations, gears and
// comments.
func (t *Trip) Summary() Entity {
	return &TripSummary{
		Base:              t.Base,
		ProgramLabel:      t.ProgramLabel,
		VesselID:          t.VesselID,
		DepartureDateTime: t.DepartureDateTime,
		ReturnDateTime:    t.ReturnDateTime,
		SyncStatus:        t.SyncStatus,
		OperationCount:    len(t.Operations),
	}
}

// TripSummary is the light projection of a [Trip] used by list screens.
type TripSummary struct {
	Base

	ProgramLabel      string     `json:"programLabel"`
	VesselID          *int64     `json:"vesselId,omitempty"`
	DepartureDateTime *time.Time `json:"departureDateTime,omitempty"`
	ReturnDateTime    *time.Time `json:"returnDateTime,omitempty"`
	SyncStatus        SyncStatus `json:"synchronizationStatus,omitempty"`
	OperationCount    int        `json:"operationCount"`
}

// TypeName implements [Entity].
func (t *TripSummary) TypeName() string { return TripTypeName }

// SynchronizationStatus returns the status of the summarized trip.
func (t *TripSummary) SynchronizationStatus() SyncStatus { return t.SyncStatus }

// Operation is a fishing operation of a trip.
type Operation struct {
	Base

	TripID         *int64     `json:"tripId,omitempty"`
	RankOrder      int        `json:"rankOrderOnPeriod"`
	StartDateTime  *time.Time `json:"startDateTime,omitempty"`
	EndDateTime    *time.Time `json:"endDateTime,omitempty"`
	PhysicalGearID *int64     `json:"physicalGearId,omitempty"`
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
	Comments       string     `json:"comments,omitempty"`
}

// TypeName implements [Entity].
func (o *Operation) TypeName() string { return OperationTypeName }
