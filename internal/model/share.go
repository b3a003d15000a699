package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusUploaded Status = "uploaded"
	StatusDeleted  Status = "deleted"
)

// transitions lists the only edges of the share lifecycle. Deleted is terminal.
var transitions = map[Status]map[Status]bool{
	StatusPending:  {StatusUploaded: true, StatusDeleted: true},
	StatusUploaded: {StatusDeleted: true},
	StatusDeleted:  {},
}

// CanTransition reports whether from -> to is a valid lifecycle edge.
func CanTransition(from, to Status) bool {
	return transitions[from][to]
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

type ShareRecord struct {
	ID                    string     `db:"id" json:"id"`
	OwnerID               string     `db:"owner_id" json:"ownerId"`
	OwnerEmail            string     `db:"owner_email" json:"-"`
	StorageKey            string     `db:"storage_key" json:"storageKey,omitempty"`
	Folder                string     `db:"folder" json:"folder"`
	FileName              string     `db:"file_name" json:"fileName"`
	FileType              string     `db:"file_type" json:"fileType"`
	FileSize              int64      `db:"file_size" json:"fileSize"`
	Status                Status     `db:"status" json:"status"`
	AccessCode            *int64     `db:"access_code" json:"accessCode,omitempty"` // nil = no code required
	TargetRecipients      Recipients `db:"target_recipients" json:"targetUserEmails"`
	ExpiryDurationMinutes int        `db:"expiry_duration_minutes" json:"expiryDurationMinutes"`
	CreatedAt             time.Time  `db:"created_at" json:"createdAt"`
	ExpiresAt             time.Time  `db:"expires_at" json:"expiresAt"`
	FirstAccessedAt       *time.Time `db:"first_accessed_at" json:"firstAccessedAt,omitempty"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updatedAt"`
}

func (r *ShareRecord) IsOwner(userID string) bool {
	return r.OwnerID == userID
}

func (r *ShareRecord) WasAccessed() bool {
	return r.FirstAccessedAt != nil
}

// Recipients is the allow-list of recipient emails, stored as a JSON array.
// An empty list means the share is open to any authenticated requester.
type Recipients []string

func (r Recipients) Contains(email string) bool {
	return slices.Contains(r, email)
}

func (r Recipients) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(r))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (r *Recipients) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*r = Recipients{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("recipients: unsupported type %T", src)
	}

	var list []string
	err := json.Unmarshal(raw, &list)
	if err != nil {
		return fmt.Errorf("recipients: %w", err)
	}
	if list == nil {
		list = []string{}
	}
	*r = list
	return nil
}
