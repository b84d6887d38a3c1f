package service

import (
	"github.com/google/uuid"
)

// Confirmation is the tagged envelope carried by sensitive mutation requests.
// It keeps the change reason and re-verification credentials out of the
// persisted-field payload: nothing in here is ever forwarded to an ORM write.
type Confirmation struct {
	Reason      string `json:"reason"`
	ConfirmName string `json:"confirm_name"`
	Password    string `json:"password"`
	AdminEmail  string `json:"admin_email,omitempty"`
}

// MutationContext carries the request-scoped actor and client details that
// end up on the audit record.
type MutationContext struct {
	ActorID   *uuid.UUID
	IP        string
	UserAgent string
}
