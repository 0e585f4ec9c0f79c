package model

// ApprovalStatus is the state of anything that passes through administrative
// review: courses, room requests and course registrations.
//
//	PENDING ──approve──▶ APPROVED
//	   └─────reject────▶ REJECTED
//
// APPROVED and REJECTED are terminal.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "PENDING"
	StatusApproved ApprovalStatus = "APPROVED"
	StatusRejected ApprovalStatus = "REJECTED"
)

// Terminal reports whether no further transition is allowed from s.
func (s ApprovalStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}
