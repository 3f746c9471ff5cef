package mapper

import (
	"time"

	"pin-support-be/internal/entity"
	"pin-support-be/internal/model"
	"pin-support-be/pkg/retrieval"

	"gorm.io/datatypes"
)

type SupportMapper struct{}

func NewSupportMapper() *SupportMapper {
	return &SupportMapper{}
}

// Session Mappers

func (m *SupportMapper) SessionToEntity(s *model.SupportSession) *entity.SupportSession {
	if s == nil {
		return nil
	}

	return &entity.SupportSession{
		Id:             s.Id,
		OrgId:          s.OrgId,
		UserId:         s.UserId,
		Turns:          s.Turns,
		Category:       s.Category,
		Status:         entity.SessionStatus(s.Status),
		Collected:      mapOrEmpty(s.Collected),
		StepsAttempted: sliceOrEmpty(s.StepsAttempted),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      timePtr(s.UpdatedAt),
	}
}

func (m *SupportMapper) SessionToModel(s *entity.SupportSession) *model.SupportSession {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.SupportSession{
		Id:             s.Id,
		OrgId:          s.OrgId,
		UserId:         s.UserId,
		Turns:          s.Turns,
		Category:       s.Category,
		Status:         string(s.Status),
		Collected:      datatypes.JSONMap(mapOrEmpty(s.Collected)),
		StepsAttempted: datatypes.JSONSlice[string](sliceOrEmpty(s.StepsAttempted)),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

// Message Mappers

func (m *SupportMapper) MessageToEntity(msg *model.SupportMessage) *entity.SupportMessage {
	if msg == nil {
		return nil
	}
	return &entity.SupportMessage{
		Id:        msg.Id,
		SessionId: msg.SessionId,
		Role:      msg.Role,
		Content:   msg.Content,
		Citations: sliceOrEmpty(msg.Citations),
		CreatedAt: msg.CreatedAt,
	}
}

func (m *SupportMapper) MessageToModel(msg *entity.SupportMessage) *model.SupportMessage {
	if msg == nil {
		return nil
	}
	return &model.SupportMessage{
		Id:        msg.Id,
		SessionId: msg.SessionId,
		Role:      msg.Role,
		Content:   msg.Content,
		Citations: datatypes.JSONSlice[retrieval.Citation](sliceOrEmpty(msg.Citations)),
		CreatedAt: msg.CreatedAt,
	}
}

func (m *SupportMapper) MessagesToEntities(msgs []*model.SupportMessage) []*entity.SupportMessage {
	out := make([]*entity.SupportMessage, len(msgs))
	for i, msg := range msgs {
		out[i] = m.MessageToEntity(msg)
	}
	return out
}

// Ticket Mappers

func (m *SupportMapper) TicketToEntity(t *model.Ticket) *entity.Ticket {
	if t == nil {
		return nil
	}
	return &entity.Ticket{
		Id:               t.Id,
		OrgId:            t.OrgId,
		UserId:           t.UserId,
		SessionId:        t.SessionId,
		Summary:          t.Summary,
		Category:         t.Category,
		Impact:           t.Impact,
		Urgency:          t.Urgency,
		Status:           entity.TicketStatus(t.Status),
		EscalationReason: t.EscalationReason,
		RenderedText:     t.RenderedText,
		ErrorText:        t.ErrorText,
		User:             mapOrEmpty(t.User),
		Device:           mapOrEmpty(t.Device),
		Diagnostics:      mapOrEmpty(t.Diagnostics),
		StepsAttempted:   sliceOrEmpty(t.StepsAttempted),
		Citations:        sliceOrEmpty(t.Citations),
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        timePtr(t.UpdatedAt),
		ClosedAt:         t.ClosedAt,
	}
}

func (m *SupportMapper) TicketToModel(t *entity.Ticket) *model.Ticket {
	if t == nil {
		return nil
	}

	var updatedAt time.Time
	if t.UpdatedAt != nil {
		updatedAt = *t.UpdatedAt
	}

	return &model.Ticket{
		Id:               t.Id,
		OrgId:            t.OrgId,
		UserId:           t.UserId,
		SessionId:        t.SessionId,
		Summary:          t.Summary,
		Category:         t.Category,
		Impact:           t.Impact,
		Urgency:          t.Urgency,
		Status:           string(t.Status),
		EscalationReason: t.EscalationReason,
		RenderedText:     t.RenderedText,
		ErrorText:        t.ErrorText,
		User:             datatypes.JSONMap(mapOrEmpty(t.User)),
		Device:           datatypes.JSONMap(mapOrEmpty(t.Device)),
		Diagnostics:      datatypes.JSONMap(mapOrEmpty(t.Diagnostics)),
		StepsAttempted:   datatypes.JSONSlice[string](sliceOrEmpty(t.StepsAttempted)),
		Citations:        datatypes.JSONSlice[retrieval.Citation](sliceOrEmpty(t.Citations)),
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        updatedAt,
		ClosedAt:         t.ClosedAt,
	}
}

func (m *SupportMapper) TicketsToEntities(tickets []*model.Ticket) []*entity.Ticket {
	out := make([]*entity.Ticket, len(tickets))
	for i, t := range tickets {
		out[i] = m.TicketToEntity(t)
	}
	return out
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func mapOrEmpty[M ~map[string]any](in M) map[string]any {
	if in == nil {
		return map[string]any{}
	}
	return map[string]any(in)
}

func sliceOrEmpty[S ~[]E, E any](in S) []E {
	if in == nil {
		return []E{}
	}
	return []E(in)
}
