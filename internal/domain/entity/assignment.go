package entity

import "time"

// AssignmentState estado de una asignación producto -> oficina.
type AssignmentState string

const (
	AssignmentAssigned    AssignmentState = "ASIGNADO"
	AssignmentReturned    AssignmentState = "DEVUELTO"
	AssignmentTransferred AssignmentState = "TRASPASADO"
	AssignmentWrittenOff  AssignmentState = "DADO_DE_BAJA"
)

var assignmentTransitions = map[AssignmentState][]AssignmentState{
	AssignmentAssigned: {AssignmentReturned, AssignmentTransferred},
	AssignmentReturned: {AssignmentWrittenOff},
}

// CanTransition indica si el paso s -> next está permitido.
func (s AssignmentState) CanTransition(next AssignmentState) bool {
	for _, t := range assignmentTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Assignment vincula una cantidad de un producto corporativo a una oficina.
type Assignment struct {
	ID             string
	ProductID      string
	OfficeID       string
	Quantity       int
	State          AssignmentState
	AssignedUserID string
	AssignedBy     string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Holding indica si la asignación retiene unidades fuera del stock del producto.
func (a *Assignment) Holding() bool {
	return a.IsActive && a.State == AssignmentAssigned
}
