// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

const (
	VesselTypeName   = "Vessel"
	PersonTypeName   = "Person"
	ProgramTypeName  = "Program"
	LocationTypeName = "Location"
	GearTypeName     = "Gear"
	TaxonTypeName    = "Taxon"
)

// Vessel is a fishing vessel known to the server.
type Vessel struct {
	Base

	Name             string `json:"name"`
	ExteriorMarking  string `json:"exteriorMarking,omitempty"`
	RegistrationCode string `json:"registrationCode,omitempty"`
	StatusID         int    `json:"statusId"`
}

// TypeName implements [Entity].
func (v *Vessel) TypeName() string { return VesselTypeName }

// Person is an observer, recorder or any user of the application.
type Person struct {
	Base

	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department,omitempty"`
	StatusID   int    `json:"statusId"`
}

// TypeName implements [Entity].
func (p *Person) TypeName() string { return PersonTypeName }

// Program is a data collection program; trips belong to one program.
type Program struct {
	Base

	Label      string            `json:"label"`
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties,omitempty"`
}

// TypeName implements [Entity].
func (p *Program) TypeName() string { return ProgramTypeName }

// Referential is a generic reference-data item (location, gear, taxon...).
// Its kind is carried by EntityName.
type Referential struct {
	Base

	EntityName  string `json:"entityName"`
	Label       string `json:"label"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	LevelID     *int64 `json:"levelId,omitempty"`
	StatusID    int    `json:"statusId"`
}

// NewReferential returns an empty referential item of the given kind.
func NewReferential(entityName string) *Referential {
	return &Referential{EntityName: entityName}
}

// TypeName implements [Entity].
func (r *Referential) TypeName() string { return r.EntityName }
