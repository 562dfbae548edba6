package entity

import (
	"time"
)

// DisputeStatus is the lifecycle state of a dispute. Only the transitions in
// the workflow table produce these values; nothing else writes Status.
type DisputeStatus string

const (
	DisputeStatusOpen        DisputeStatus = "open"
	DisputeStatusAssigned    DisputeStatus = "assigned"
	DisputeStatusUnderReview DisputeStatus = "under_review"
	DisputeStatusResolved    DisputeStatus = "resolved"
	DisputeStatusEscalated   DisputeStatus = "escalated"
	DisputeStatusClosed      DisputeStatus = "closed"
)

// AllDisputeStatuses lists every lifecycle state, used for zero-filled stats.
var AllDisputeStatuses = []DisputeStatus{
	DisputeStatusOpen,
	DisputeStatusAssigned,
	DisputeStatusUnderReview,
	DisputeStatusResolved,
	DisputeStatusEscalated,
	DisputeStatusClosed,
}

func (s DisputeStatus) Valid() bool {
	switch s {
	case DisputeStatusOpen, DisputeStatusAssigned, DisputeStatusUnderReview,
		DisputeStatusResolved, DisputeStatusEscalated, DisputeStatusClosed:
		return true
	}
	return false
}

type DisputeType string

const (
	DisputeTypeServiceNotDelivered DisputeType = "service_not_delivered"
	DisputeTypePoorQuality         DisputeType = "poor_quality"
	DisputeTypeLateArrival         DisputeType = "late_arrival"
	DisputeTypeNoShow              DisputeType = "no_show"
	DisputeTypePropertyDamage      DisputeType = "property_damage"
	DisputeTypePaymentIssue        DisputeType = "payment_issue"
	DisputeTypeCommunicationIssue  DisputeType = "communication_issue"
	DisputeTypeSafetyConcern       DisputeType = "safety_concern"
	DisputeTypeOther               DisputeType = "other"
)

func (t DisputeType) Valid() bool {
	switch t {
	case DisputeTypeServiceNotDelivered, DisputeTypePoorQuality, DisputeTypeLateArrival,
		DisputeTypeNoShow, DisputeTypePropertyDamage, DisputeTypePaymentIssue,
		DisputeTypeCommunicationIssue, DisputeTypeSafetyConcern, DisputeTypeOther:
		return true
	}
	return false
}

// ResolutionType is the terminal financial decision recorded on a dispute.
type ResolutionType string

const (
	ResolutionFullRefundCustomer ResolutionType = "full_refund_customer"
	ResolutionPartialRefund      ResolutionType = "partial_refund"
	ResolutionNoRefund           ResolutionType = "no_refund"
	ResolutionSplitFunds         ResolutionType = "split_funds"
	ResolutionProviderPenalty    ResolutionType = "provider_penalty"
	ResolutionCustomerWarning    ResolutionType = "customer_warning"
	ResolutionMutualCancellation ResolutionType = "mutual_cancellation"
	ResolutionEscalateToLegal    ResolutionType = "escalate_to_legal"
)

func (r ResolutionType) Valid() bool {
	switch r {
	case ResolutionFullRefundCustomer, ResolutionPartialRefund, ResolutionNoRefund,
		ResolutionSplitFunds, ResolutionProviderPenalty, ResolutionCustomerWarning,
		ResolutionMutualCancellation, ResolutionEscalateToLegal:
		return true
	}
	return false
}

type Dispute struct {
	ID        string `json:"id" firestore:"id"`
	BookingID string `json:"booking_id" firestore:"bookingId"`

	// Classification. Priority is caller-supplied at filing and immutable.
	Type     DisputeType `json:"type" firestore:"type"`
	Priority int         `json:"priority" firestore:"priority"` // 1-5

	// Narrative, immutable after filing
	Title        string   `json:"title" firestore:"title"`
	Description  string   `json:"description" firestore:"description"`
	EvidenceURLs []string `json:"evidence_urls,omitempty" firestore:"evidenceUrls,omitempty"`

	// Parties, always distinct
	FiledBy      string `json:"filed_by" firestore:"filedBy"`
	FiledAgainst string `json:"filed_against" firestore:"filedAgainst"`

	Status DisputeStatus `json:"status" firestore:"status"`

	// Assignment
	AssignedTo string     `json:"assigned_to,omitempty" firestore:"assignedTo,omitempty"`
	AssignedAt *time.Time `json:"assigned_at,omitempty" firestore:"assignedAt,omitempty"`

	// Resolution, only populated once resolved. RefundPercent is set iff
	// Resolution is partial_refund.
	Resolution      ResolutionType `json:"resolution,omitempty" firestore:"resolution,omitempty"`
	ResolutionNotes string         `json:"resolution_notes,omitempty" firestore:"resolutionNotes,omitempty"`
	RefundPercent   *int           `json:"refund_percent,omitempty" firestore:"refundPercent,omitempty"`
	ResolvedAt      *time.Time     `json:"resolved_at,omitempty" firestore:"resolvedAt,omitempty"`

	// Escalation, only populated if escalated
	EscalationReason string     `json:"escalation_reason,omitempty" firestore:"escalationReason,omitempty"`
	EscalatedAt      *time.Time `json:"escalated_at,omitempty" firestore:"escalatedAt,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`

	// Version is the optimistic-concurrency token, incremented on every write
	Version int64 `json:"version" firestore:"version"`
}

// IsParty reports whether userID filed the dispute or is the accused party.
func (d *Dispute) IsParty(userID string) bool {
	return d.FiledBy == userID || d.FiledAgainst == userID
}

type DisputeMessage struct {
	ID             string    `json:"id" firestore:"id"`
	DisputeID      string    `json:"dispute_id" firestore:"disputeId"`
	Author         string    `json:"author" firestore:"author"`
	Content        string    `json:"content" firestore:"content"`
	IsInternal     bool      `json:"is_internal" firestore:"isInternal"`
	AttachmentURLs []string  `json:"attachment_urls,omitempty" firestore:"attachmentUrls,omitempty"`
	CreatedAt      time.Time `json:"created_at" firestore:"createdAt"`
}

// SettlementInstruction is handed to the payment/escrow collaborator after a
// dispute reaches resolved. It never moves money itself.
type SettlementInstruction struct {
	DisputeID      string         `json:"dispute_id"`
	BookingID      string         `json:"booking_id"`
	ResolutionType ResolutionType `json:"resolution_type"`
	RefundPercent  *int           `json:"refund_percent,omitempty"`
	ComputedAt     time.Time      `json:"computed_at"`
}

// DisputeLog is the audit trail entry appended on every successful transition
type DisputeLog struct {
	ID         string        `json:"id" firestore:"id"`
	DisputeID  string        `json:"dispute_id" firestore:"disputeId"`
	Actor      string        `json:"actor" firestore:"actor"`
	FromStatus DisputeStatus `json:"from_status" firestore:"fromStatus"`
	ToStatus   DisputeStatus `json:"to_status" firestore:"toStatus"`
	Notes      string        `json:"notes,omitempty" firestore:"notes,omitempty"`
	CreatedAt  time.Time     `json:"created_at" firestore:"createdAt"`
}
