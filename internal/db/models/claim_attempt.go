package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Verification methods recorded on claim attempts
const (
	VerificationMethodProviderAPI = "provider_api"
)

// Failure reasons recorded on unsuccessful claim attempts
const (
	ReasonInsufficientPermissions = "insufficient_permissions"
)

// ClaimAttempt is one append-only record of a verification attempt, successful or not.
type ClaimAttempt struct {
	ID                  uuid.UUID       `db:"id" json:"id"`
	ProjectID           string          `db:"project_id" json:"project_id"`
	UserID              string          `db:"user_id" json:"user_id"`
	Success             bool            `db:"success" json:"success"`
	VerificationMethod  string          `db:"verification_method" json:"verification_method"`
	VerificationDetails json.RawMessage `db:"verification_details" json:"verification_details"`
	ErrorReason         *string         `db:"error_reason" json:"error_reason,omitempty"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
}

// VerificationDetails is the evidence stored with a claim attempt.
type VerificationDetails struct {
	VerifiedIdentity string `json:"verified_identity"`
	RepositoryOwner  string `json:"repository_owner"`
	OwnerType        string `json:"owner_type"`
	OwnershipType    string `json:"ownership_type,omitempty"`
	RepositoryURL    string `json:"repository_url,omitempty"`
	Reason           string `json:"reason,omitempty"`
}
