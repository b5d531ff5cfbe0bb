package entity

import "time"

// Transfer solicitud de traspaso de una asignación entre oficinas.
type Transfer struct {
	ID                 string
	ProductID          string
	FromOfficeID       string
	ToOfficeID         string
	SourceAssignmentID string
	TargetAssignmentID string
	Quantity           int
	Reason             string
	State              ResolutionState
	RequestedBy        string
	ResolvedBy         string
	Resolution         string
	CreatedAt          time.Time
	ResolvedAt         *time.Time
}
