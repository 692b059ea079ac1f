// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "strconv"

// Persistence medium keys.
const (
	storeIndexKey   = "entities.stores"
	entityKeyPrefix = "entity."
	settingsPrefix  = "settings."
	sequencePrefix  = "sequence."
)

func blobKey(storeName string) string {
	return entityKeyPrefix + storeName
}

func idsKey(storeName string) string {
	return entityKeyPrefix + storeName + ".ids"
}

func recordKey(storeName string, id int64) string {
	return entityKeyPrefix + storeName + "." + strconv.FormatInt(id, 10)
}

func sequenceKey(storeName string) string {
	return sequencePrefix + storeName
}

func settingsKey(key string) string {
	return settingsPrefix + key
}
