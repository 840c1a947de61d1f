package entity

import (
	"strings"
	"time"
)

// Registration é o único "registro" do sistema. Não existe tabela: ele viaja
// como JSON entre o formulário, a mensagem do Telegram e o payload base64.
type Registration struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Company         string `json:"company,omitempty"`
	LinkedInProfile string `json:"linkedinProfile,omitempty"`
	HasExperience   bool   `json:"hasExperience"`
	ToolsUsed       string `json:"toolsUsed,omitempty"`
	ProjectIdea     string `json:"projectIdea"`
	Reference       string `json:"reference"`
	Timestamp       string `json:"timestamp"`
}

// FormData is the intake submission as posted by the signup form.
type FormData struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Company         string `json:"company,omitempty"`
	LinkedInProfile string `json:"linkedinProfile,omitempty"`
	HasExperience   bool   `json:"hasExperience"`
	ToolsUsed       string `json:"toolsUsed,omitempty"`
	ProjectIdea     string `json:"projectIdea"`

	CaptchaID     string `json:"captchaId,omitempty"`
	CaptchaAnswer string `json:"captcha,omitempty"`
}

// Status labels. They only appear in messages and outbound events, nothing
// enforces transitions between them.
const (
	StatusPending  = "pending"
	StatusPaid     = "paid"
	StatusRejected = "rejected"
)

func NewRegistration(form FormData, reference string, now time.Time) *Registration {
	return &Registration{
		Name:            strings.TrimSpace(form.Name),
		Email:           strings.TrimSpace(form.Email),
		Phone:           strings.TrimSpace(form.Phone),
		Company:         strings.TrimSpace(form.Company),
		LinkedInProfile: strings.TrimSpace(form.LinkedInProfile),
		HasExperience:   form.HasExperience,
		ToolsUsed:       strings.TrimSpace(form.ToolsUsed),
		ProjectIdea:     strings.TrimSpace(form.ProjectIdea),
		Reference:       reference,
		Timestamp:       now.UTC().Format(time.RFC3339),
	}
}

// HasEmail reports whether the registration carries a deliverable address.
// Registrations recovered from a bare reference may not.
func (r *Registration) HasEmail() bool {
	return strings.Contains(r.Email, "@")
}

// DisplayName falls back to a generic salutation for partial registrations.
func (r *Registration) DisplayName() string {
	if strings.TrimSpace(r.Name) == "" {
		return "Participant"
	}
	return r.Name
}

// RegistrationEvent is what gets published to the event sink (vibing webhook).
type RegistrationEvent struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Company          string `json:"company"`
	RegistrationTime string `json:"registration_time"`
	EventTitle       string `json:"event_title"`
	EventDate        string `json:"event_date"`
	PaymentStatus    string `json:"payment_status"`
}

func NewRegistrationEvent(r *Registration, eventTitle, eventDate, status string) RegistrationEvent {
	company := r.Company
	if company == "" {
		company = "Not specified"
	}
	return RegistrationEvent{
		ID:               r.Reference,
		Name:             r.Name,
		Email:            r.Email,
		Phone:            r.Phone,
		Company:          company,
		RegistrationTime: r.Timestamp,
		EventTitle:       eventTitle,
		EventDate:        eventDate,
		PaymentStatus:    status,
	}
}
