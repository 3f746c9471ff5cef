package entity

import "time"

type SessionStatus string

const (
	SessionStatusOpen      SessionStatus = "open"
	SessionStatusEscalated SessionStatus = "escalated"
	SessionStatusClosed    SessionStatus = "closed"
)

// SupportSession is the per-conversation record threaded through every turn.
type SupportSession struct {
	Id             string
	OrgId          string
	UserId         string
	Turns          int
	Category       *string
	Status         SessionStatus
	Collected      map[string]any
	StepsAttempted []string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

func NewSupportSession(id, orgId, userId string) *SupportSession {
	return &SupportSession{
		Id:             id,
		OrgId:          orgId,
		UserId:         userId,
		Status:         SessionStatusOpen,
		Collected:      map[string]any{},
		StepsAttempted: []string{},
		CreatedAt:      time.Now(),
	}
}

// IsTerminal reports whether the session no longer accepts messages.
func (s *SupportSession) IsTerminal() bool {
	return s.Status != SessionStatusOpen
}

// SetCategory assigns the category the first time only.
func (s *SupportSession) SetCategory(category string) {
	if s.Category != nil {
		return
	}
	s.Category = &category
}

func (s *SupportSession) CategoryOrEmpty() string {
	if s.Category == nil {
		return ""
	}
	return *s.Category
}

// AddSteps appends steps not recorded yet, preserving order.
func (s *SupportSession) AddSteps(steps []string) {
	seen := make(map[string]bool, len(s.StepsAttempted))
	for _, st := range s.StepsAttempted {
		seen[st] = true
	}
	for _, st := range steps {
		if st == "" || seen[st] {
			continue
		}
		seen[st] = true
		s.StepsAttempted = append(s.StepsAttempted, st)
	}
}
