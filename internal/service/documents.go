// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"fmt"

	"github.com/fishobs/fieldsync/internal/cache"
	"github.com/fishobs/fieldsync/models"
)

// Documents are the remote operations of one entity kind. List documents
// alias the list as "data" and the count as "total".
type Documents struct {
	// LoadAll is the list query, also used as the watched query.
	LoadAll cache.Query
	// Load reads one record by $id.
	Load cache.Query
	// Save saves $data and returns the saved record.
	Save cache.Query
	// Delete deletes the records with $ids.
	Delete cache.Query
	// Terminate validates the records with $ids on the server. Root data
	// only.
	Terminate cache.Query
	// Variables are merged into every request, e.g. the referential entity
	// name.
	Variables map[string]any
}

// variables merges vars over the kind variables.
func (d Documents) variables(vars map[string]any) map[string]any {
	merged := make(map[string]any, len(d.Variables)+len(vars))
	for k, v := range d.Variables {
		merged[k] = v
	}
	for k, v := range vars {
		merged[k] = v
	}
	return merged
}

func (d Documents) request(q cache.Query, vars map[string]any) models.RemoteRequest {
	return models.RemoteRequest{Operation: q.Name, Query: q.Document, Variables: d.variables(vars)}
}

func loadVariables(opts models.LoadOptions) map[string]any {
	vars := map[string]any{
		"offset": opts.Offset,
		"size":   opts.Size,
	}
	if opts.SortBy != "" {
		vars["sortBy"] = opts.SortBy
		vars["sortDirection"] = string(opts.SortDirection)
	}
	return vars
}

// DocumentSet maps kind names to their documents.
type DocumentSet map[string]Documents

func (s DocumentSet) of(typeName string, pick func(Documents) cache.Query) (Documents, error) {
	d, ok := s[typeName]
	if !ok || pick(d).Document == "" {
		return Documents{}, fmt.Errorf("%w: %s", ErrNoDocuments, typeName)
	}
	return d, nil
}

func loadAllDoc(d Documents) cache.Query   { return d.LoadAll }
func loadDoc(d Documents) cache.Query      { return d.Load }
func saveDoc(d Documents) cache.Query      { return d.Save }
func deleteDoc(d Documents) cache.Query    { return d.Delete }
func terminateDoc(d Documents) cache.Query { return d.Terminate }

const (
	tripFields      = "id updateDate programLabel vesselId departureDateTime returnDateTime departureLocationId returnLocationId comments recorderPersonId observerIds synchronizationStatus gears { rank gearId label } operations { id updateDate tripId rankOrderOnPeriod startDateTime endDateTime physicalGearId latitude longitude comments }"
	vesselFields    = "id updateDate name exteriorMarking registrationCode statusId"
	personFields    = "id updateDate firstName lastName email department statusId"
	programFields   = "id updateDate label name properties"
	referentialFlds = "id updateDate entityName label name description levelId statusId"
)

func listQuery(name, field, fields string) cache.Query {
	return cache.Query{
		Name: name,
		Document: fmt.Sprintf(
			"query %s($offset: Int, $size: Int, $sortBy: String, $sortDirection: String) "+
				"{ data: %s(offset: $offset, size: $size, sortBy: $sortBy, sortDirection: $sortDirection) { %s __typename } total: %sCount }",
			name, field, fields, field),
	}
}

func loadQuery(name, field, fields string) cache.Query {
	return cache.Query{
		Name:     name,
		Document: fmt.Sprintf("query %s($id: Int!) { data: %s(id: $id) { %s __typename } }", name, field, fields),
	}
}

func saveMutation(name, field, input, fields string) cache.Query {
	return cache.Query{
		Name:     name,
		Document: fmt.Sprintf("mutation %s($data: %s) { data: %s(data: $data) { %s __typename } }", name, input, field, fields),
	}
}

func idsMutation(name, field string) cache.Query {
	return cache.Query{
		Name:     name,
		Document: fmt.Sprintf("mutation %s($ids: [Int]) { %s(ids: $ids) }", name, field),
	}
}

func referentialDocuments(entityName string) Documents {
	return Documents{
		LoadAll: cache.Query{
			Name: "LoadReferentials",
			Document: "query LoadReferentials($entityName: String, $offset: Int, $size: Int, $sortBy: String, $sortDirection: String) " +
				"{ data: referentials(entityName: $entityName, offset: $offset, size: $size, sortBy: $sortBy, sortDirection: $sortDirection) { " +
				referentialFlds + " __typename } total: referentialsCount(entityName: $entityName) }",
		},
		Load: cache.Query{
			Name:     "LoadReferential",
			Document: "query LoadReferential($entityName: String, $id: Int!) { data: referential(entityName: $entityName, id: $id) { " + referentialFlds + " __typename } }",
		},
		Variables: map[string]any{"entityName": entityName},
	}
}

// DefaultDocuments returns the documents of [models.DefaultKinds].
func DefaultDocuments() DocumentSet {
	return DocumentSet{
		models.TripTypeName: {
			LoadAll:   listQuery("LoadTrips", "trips", tripFields),
			Load:      loadQuery("LoadTrip", "trip", tripFields),
			Save:      saveMutation("SaveTrip", "saveTrip", "TripVOInput", tripFields),
			Delete:    idsMutation("DeleteTrips", "deleteTrips"),
			Terminate: idsMutation("TerminateTrips", "terminateTrips"),
		},
		models.VesselTypeName: {
			LoadAll: listQuery("LoadVessels", "vessels", vesselFields),
			Load:    loadQuery("LoadVessel", "vessel", vesselFields),
			Save:    saveMutation("SaveVessel", "saveVessel", "VesselVOInput", vesselFields),
			Delete:  idsMutation("DeleteVessels", "deleteVessels"),
		},
		models.PersonTypeName: {
			LoadAll: listQuery("LoadPersons", "persons", personFields),
			Load:    loadQuery("LoadPerson", "person", personFields),
		},
		models.ProgramTypeName: {
			LoadAll: listQuery("LoadPrograms", "programs", programFields),
			Load:    loadQuery("LoadProgram", "program", programFields),
		},
		models.LocationTypeName: referentialDocuments(models.LocationTypeName),
		models.GearTypeName:     referentialDocuments(models.GearTypeName),
		models.TaxonTypeName:    referentialDocuments(models.TaxonTypeName),
	}
}
