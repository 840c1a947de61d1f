package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/xavierca1/vibe-registration/internal/entity"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	phonePattern = regexp.MustCompile(`^[+]?[\d\s\-()]{8,}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

func ValidateRegistration(form entity.FormData) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(form.Name) == "" {
		errors = append(errors, ValidationError{"name", "is required"})
	} else if tooLong(form.Name, 100) {
		errors = append(errors, ValidationError{"name", "must not exceed 100 characters"})
	}

	if strings.TrimSpace(form.Email) == "" {
		errors = append(errors, ValidationError{"email", "is required"})
	} else if tooLong(form.Email, 255) {
		errors = append(errors, ValidationError{"email", "must not exceed 255 characters"})
	} else if !isValidEmail(form.Email) {
		errors = append(errors, ValidationError{"email", "is invalid"})
	}

	if strings.TrimSpace(form.Phone) == "" {
		errors = append(errors, ValidationError{"phone", "is required"})
	} else if tooLong(form.Phone, 20) {
		errors = append(errors, ValidationError{"phone", "must not exceed 20 characters"})
	} else if !phonePattern.MatchString(strings.TrimSpace(form.Phone)) {
		errors = append(errors, ValidationError{"phone", "must be a valid phone number"})
	}

	if strings.TrimSpace(form.ProjectIdea) == "" {
		errors = append(errors, ValidationError{"projectIdea", "is required"})
	} else if tooLong(form.ProjectIdea, 1000) {
		errors = append(errors, ValidationError{"projectIdea", "must not exceed 1000 characters"})
	}

	if tooLong(form.Company, 100) {
		errors = append(errors, ValidationError{"company", "must not exceed 100 characters"})
	}
	if tooLong(form.LinkedInProfile, 200) {
		errors = append(errors, ValidationError{"linkedinProfile", "must not exceed 200 characters"})
	}
	if tooLong(form.ToolsUsed, 200) {
		errors = append(errors, ValidationError{"toolsUsed", "must not exceed 200 characters"})
	}

	return errors
}

func isValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func tooLong(s string, max int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) > max
}

// fieldErrors flattens validation errors into the response shape.
func fieldErrors(errs []ValidationError) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Field] = e.Message
	}
	return out
}
