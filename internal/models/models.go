// Package models holds the persisted billing records.
package models

import "github.com/google/uuid"

// All lists every model in migration order.
func All() []any {
	return []any{&Student{}, &FeeStructureItem{}, &Invoice{}, &Payment{}, &Waiver{}}
}

// assignID fills an empty primary key with a fresh UUID.
func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
