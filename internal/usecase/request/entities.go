package request

import (
	"time"

	"github.com/d1ma11/deposit-service/internal/domain/deposit"
	domainRequest "github.com/d1ma11/deposit-service/internal/domain/request"

	"github.com/shopspring/decimal"
)

// RejectionReason explains every insufficient-funds outcome.
const RejectionReason = "insufficient funds to open deposit"

type OpenInput struct {
	CustomerID int64
	Terms      deposit.Terms
}

type OpenResult struct {
	RequestID   string               `json:"request_id"`
	RequestDate time.Time            `json:"request_date"`
	Status      domainRequest.Status `json:"status"`
}

// ConfirmOpenInput carries the terms again; amount and customer always come
// from the stored request.
type ConfirmOpenInput struct {
	RequestID string
	Code      string
	Terms     deposit.Terms
}

type RefillInput struct {
	RequestID string
	Amount    decimal.Decimal
	Code      string
}

type CloseInput struct {
	RequestID string
	Code      string
}

type Outcome string

const (
	OutcomeApproved Outcome = "APPROVED"
	OutcomeRejected Outcome = "REJECTED"
)

// Response is the result of a confirmation: one of ApprovedOpen, RejectedOpen,
// ApprovedRefill or RejectedRefill.
type Response interface {
	Outcome() Outcome
}

type ApprovedOpen struct {
	RequestID   string          `json:"request_id"`
	DepositType deposit.Type    `json:"deposit_type"`
	Amount      decimal.Decimal `json:"amount"`
	RequestDate time.Time       `json:"request_date"`
	Rate        decimal.Decimal `json:"rate"`
}

// RejectedOpen reports the live account balance as Amount.
type RejectedOpen struct {
	Amount      decimal.Decimal `json:"amount"`
	RequestDate time.Time       `json:"request_date"`
	Reason      string          `json:"reason"`
}

// ApprovedRefill reports the new deposit balance.
type ApprovedRefill struct {
	Amount decimal.Decimal `json:"amount"`
	At     time.Time       `json:"timestamp"`
}

// RejectedRefill reports the requested refill amount.
type RejectedRefill struct {
	Amount decimal.Decimal `json:"amount"`
	At     time.Time       `json:"timestamp"`
	Reason string          `json:"reason"`
}

func (ApprovedOpen) Outcome() Outcome   { return OutcomeApproved }
func (RejectedOpen) Outcome() Outcome   { return OutcomeRejected }
func (ApprovedRefill) Outcome() Outcome { return OutcomeApproved }
func (RejectedRefill) Outcome() Outcome { return OutcomeRejected }

// Summary is a customer's live deposits and rejected requests.
type Summary struct {
	Deposits []deposit.Deposit       `json:"deposits"`
	Rejected []domainRequest.Request `json:"rejected_requests"`
}

// History is a request with its status trail, oldest first.
type History struct {
	Request domainRequest.Request       `json:"request"`
	Current domainRequest.Status        `json:"status"`
	Entries []domainRequest.StatusEntry `json:"history"`
}
