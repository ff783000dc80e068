// Package entity holds the row types of the exam desk schema. Each type
// describes its own table mapping so the generic repository can load and
// store it without reflection.
package entity

// Entity is a row with a numeric primary key "id".
type Entity interface {
	Table() string
	// Columns lists the non-id columns in the order of Values.
	Columns() []string
	Values() []any
	// ScanTargets returns pointers for "id" followed by Columns.
	ScanTargets() []any
	GetID() int64
	SetID(id int64)
}

// ClaimWaitYears is how long an exam topic stays locked after its exam.
const ClaimWaitYears = 3

// StatusClearance labels the status appended when a key question is handed
// over for clearance.
const StatusClearance = "clearance"
