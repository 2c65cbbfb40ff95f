// Package models defines the persisted records of the project directory.
package models

import "time"

// Project is a directory entry that may be claimed by exactly one user.
// OwnerID stays nil until a claim succeeds and is never overwritten afterwards.
type Project struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	RepositoryURL *string   `db:"repository_url" json:"repository_url,omitempty"`
	OwnerID       *string   `db:"owner_id" json:"owner_id,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// IsClaimed reports whether the project has an owner.
func (p *Project) IsClaimed() bool {
	return p.OwnerID != nil
}
