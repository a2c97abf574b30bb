// Package contact accepts enquiries from the contact form.
package contact

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	MinMessage = 10
	MaxMessage = 5000
	MaxName    = 200

	DefaultSubject = "general"
)

// Subjects are the form's subject options.
var Subjects = map[string]string{
	"general": "General Inquiry",
	"buying":  "Buying Property",
	"selling": "Selling Property",
	"rental":  "Rental Inquiry",
}

var (
	reEmail    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	rePhone    = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
	phoneNoise = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "\t", "")
)

type Request struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ValidationError maps field names to problems.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid enquiry: " + strings.Join(parts, "; ")
}

// Normalize trims every field, lowercases email and subject and defaults
// the subject.
func (r Request) Normalize() Request {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Subject = strings.ToLower(strings.TrimSpace(r.Subject))
	if r.Subject == "" {
		r.Subject = DefaultSubject
	}
	r.Message = strings.TrimSpace(r.Message)
	return r
}

// Validate checks a normalized request. The error is a *ValidationError.
func (r Request) Validate() error {
	fields := map[string]string{}
	switch {
	case r.Name == "":
		fields["name"] = "required"
	case utf8.RuneCountInString(r.Name) > MaxName:
		fields["name"] = "too long"
	}
	switch {
	case r.Email == "":
		fields["email"] = "required"
	case !reEmail.MatchString(r.Email):
		fields["email"] = "invalid email address"
	}
	if r.Phone != "" && !rePhone.MatchString(phoneNoise.Replace(r.Phone)) {
		fields["phone"] = "invalid phone number"
	}
	if _, ok := Subjects[r.Subject]; !ok {
		fields["subject"] = "unknown subject"
	}
	switch n := utf8.RuneCountInString(r.Message); {
	case n == 0:
		fields["message"] = "required"
	case n < MinMessage:
		fields["message"] = "too short"
	case n > MaxMessage:
		fields["message"] = "too long"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
