package services

import "errors"

// Failure taxonomy surfaced by the service layer. Controllers map these onto
// HTTP statuses and the response envelope.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidAmount     = errors.New("donation amount must be greater than zero")
	ErrCampaignNotActive = errors.New("campaign is not accepting donations")
	ErrInvalidTransition = errors.New("campaign status does not allow this action")
	ErrMissingReason     = errors.New("a rejection reason is required")
	ErrPaymentFailed     = errors.New("payment was declined")
)
