package emergency

import (
	"time"

	"github.com/roamsafe/alertkit/pkg/notification"
)

// Status is the lifecycle state of a broadcast.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusSending   Status = "sending"
	StatusSent      Status = "sent"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the broadcast can change state again.
func (s Status) Terminal() bool {
	return s == StatusSent || s == StatusCancelled || s == StatusFailed
}

// Audience selects who a broadcast reaches.
type Audience string

const (
	// AudienceAll reaches every registered profile.
	AudienceAll Audience = "all"
	// AudienceTourists reaches tourist profiles only.
	AudienceTourists Audience = "tourists"
	// AudienceAuthorities reaches staff, responders and the tourism
	// department.
	AudienceAuthorities Audience = "authorities"
	// AudienceEmergencyContacts reaches emergency responders only.
	AudienceEmergencyContacts Audience = "emergency_contacts"
	// AudienceGeo reaches profiles inside the criteria zones.
	AudienceGeo Audience = "geo"
)

// Valid reports whether the audience is a known selector.
func (a Audience) Valid() bool {
	switch a {
	case AudienceAll, AudienceTourists, AudienceAuthorities, AudienceEmergencyContacts, AudienceGeo:
		return true
	}
	return false
}

// Criteria narrows an audience. Zones are required for AudienceGeo;
// Languages, when set, restricts to profiles with those preferences.
type Criteria struct {
	Zones     []string `json:"zones,omitempty"`
	Languages []string `json:"languages,omitempty"`
}

// Content is one localized rendering of the broadcast message.
type Content struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Broadcast is a mass notification to an audience over multiple channels.
// Content is keyed by BCP 47 language tag; each recipient gets the variant
// closest to their preferred language, falling back to DefaultLanguage.
type Broadcast struct {
	ID              string                   `json:"id"`
	Audience        Audience                 `json:"audience"`
	Criteria        Criteria                 `json:"criteria"`
	Channels        []notification.Channel   `json:"channels"`
	DefaultLanguage string                   `json:"default_language"`
	Content         map[string]Content       `json:"content"`
	Priority        notification.Priority    `json:"priority"`
	Status          Status                   `json:"status"`
	CreatedBy       string                   `json:"created_by,omitempty"`
	ScheduledAt     *time.Time               `json:"scheduled_at,omitempty"`
	ExecutedAt      *time.Time               `json:"executed_at,omitempty"`
	RecipientCount  int                      `json:"recipient_count"`
	Error           string                   `json:"error,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// Languages returns the broadcast's supported content languages with the
// default first, for language matching.
func (b Broadcast) Languages() []string {
	out := make([]string, 0, len(b.Content))
	if _, ok := b.Content[b.DefaultLanguage]; ok {
		out = append(out, b.DefaultLanguage)
	}
	for lang := range b.Content {
		if lang != b.DefaultLanguage {
			out = append(out, lang)
		}
	}
	return out
}

// ContentFor returns the variant for a matched language tag, falling back
// to the default.
func (b Broadcast) ContentFor(lang string) Content {
	if c, ok := b.Content[lang]; ok {
		return c
	}
	return b.Content[b.DefaultLanguage]
}
