package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"backoffice/internal/model"
	"backoffice/internal/repository"
	ws "backoffice/internal/websocket"
)

// AuditEntry is one change to record. Old and New are marshalled to JSON;
// Reason and the capture timestamp are embedded into the new-value payload.
type AuditEntry struct {
	CompanyID  uuid.UUID
	EntityType string
	EntityID   string
	Action     string
	Old        any
	New        any
	Reason     string
	Context    MutationContext
}

type AuditLogResponse struct {
	ID         string `json:"id"`
	ActorID    string `json:"actor_id"`
	ActorName  string `json:"actor_name"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Action     string `json:"action"`
	OldValue   string `json:"old_value"`
	NewValue   string `json:"new_value"`
	IP         string `json:"ip"`
	CreatedAt  string `json:"created_at"`
}

// AuditService writes and reads the append-only audit trail.
type AuditService interface {
	// Record is best-effort: it runs after the primary mutation has
	// committed, and a failure is logged and swallowed. The primary
	// business state is never held hostage by the audit subsystem.
	Record(ctx context.Context, entry AuditEntry)
	List(ctx context.Context, companyID uuid.UUID, entityType, entityID string, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
	hub  *ws.Hub
	log  *logrus.Logger
}

// NewAuditService creates a new AuditService instance. hub may be nil.
func NewAuditService(repo repository.AuditRepository, hub *ws.Hub, log *logrus.Logger) AuditService {
	return &auditService{repo: repo, hub: hub, log: log}
}

func (s *auditService) Record(ctx context.Context, entry AuditEntry) {
	oldJSON := marshalSnapshot(entry.Old, "", time.Time{})
	newJSON := marshalSnapshot(entry.New, entry.Reason, time.Now().UTC())

	record := &model.AuditLog{
		CompanyID:  entry.CompanyID,
		ActorID:    entry.Context.ActorID,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Action:     entry.Action,
		OldValue:   oldJSON,
		NewValue:   newJSON,
		IP:         entry.Context.IP,
		UserAgent:  entry.Context.UserAgent,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"entity_type": entry.EntityType,
			"entity_id":   entry.EntityID,
			"action":      entry.Action,
		}).Error("audit write failed")
		return
	}

	if s.hub != nil {
		event, err := json.Marshal(map[string]any{
			"type":        "audit",
			"entity_type": entry.EntityType,
			"entity_id":   entry.EntityID,
			"action":      entry.Action,
		})
		if err == nil {
			select {
			case s.hub.Broadcast <- event:
			default:
			}
		}
	}
}

// marshalSnapshot serializes an entity snapshot, embedding the change reason
// and capture time when present.
func marshalSnapshot(value any, reason string, at time.Time) string {
	if value == nil {
		return ""
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	if reason == "" {
		return string(raw)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return string(raw)
	}
	payload["change_reason"] = reason
	payload["changed_at"] = at.Format(time.RFC3339)
	out, err := json.Marshal(payload)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

func (s *auditService) List(ctx context.Context, companyID uuid.UUID, entityType, entityID string, page, limit int) ([]AuditLogResponse, int64, error) {
	logs, total, err := s.repo.List(ctx, companyID, entityType, entityID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		actorName := "System"
		actorID := ""
		if l.Actor != nil {
			actorName = l.Actor.FullName
		}
		if l.ActorID != nil {
			actorID = l.ActorID.String()
		}
		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			ActorID:    actorID,
			ActorName:  actorName,
			EntityType: l.EntityType,
			EntityID:   l.EntityID,
			Action:     l.Action,
			OldValue:   l.OldValue,
			NewValue:   l.NewValue,
			IP:         l.IP,
			CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return res, total, nil
}
