package student

import "strings"

// RegistrationInput is the student self-registration form.
type RegistrationInput struct {
	PreferredLanguage      string `json:"preferredLanguage" validate:"required"`
	AdhaarNumber           string `json:"adhaarNumber" validate:"omitempty,aadhaar"`
	FirstName              string `json:"firstName" validate:"required"`
	MiddleName             string `json:"middleName"`
	LastName               string `json:"lastName" validate:"required"`
	Password               string `json:"password" validate:"required,min=6"`
	DateOfBirth            string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	Gender                 string `json:"gender" validate:"required"`
	SchoolNameAndAddress   string `json:"schoolNameAndAddress" validate:"required"`
	SchoolEnrollmentNumber string `json:"schoolEnrollmentNumber"`
	Class                  string `json:"class" validate:"required"`
	Board                  string `json:"board" validate:"required"`
	AddressLine1           string `json:"addressLine1" validate:"required"`
	AddressLine2           string `json:"addressLine2"`
	City                   string `json:"city" validate:"required"`
	State                  string `json:"state" validate:"required"`
	Country                string `json:"country" validate:"required"`
	Pincode                string `json:"pincode" validate:"required,len=6,numeric"`
	Email                  string `json:"email" validate:"required,email"`
	Mobile                 string `json:"mobile" validate:"required,len=10,numeric"`
}

// Record is a stored student profile. The password never leaves the input; it
// lives only as a bcrypt hash on the login user.
type Record struct {
	ID                     string `json:"id"`
	CreatedAt              string `json:"createdAt"`
	PreferredLanguage      string `json:"preferredLanguage"`
	AdhaarNumber           string `json:"adhaarNumber,omitempty"`
	FirstName              string `json:"firstName"`
	MiddleName             string `json:"middleName,omitempty"`
	LastName               string `json:"lastName"`
	DateOfBirth            string `json:"dateOfBirth"`
	Gender                 string `json:"gender"`
	SchoolNameAndAddress   string `json:"schoolNameAndAddress"`
	SchoolEnrollmentNumber string `json:"schoolEnrollmentNumber,omitempty"`
	Class                  string `json:"class"`
	Board                  string `json:"board"`
	AddressLine1           string `json:"addressLine1"`
	AddressLine2           string `json:"addressLine2,omitempty"`
	City                   string `json:"city"`
	State                  string `json:"state"`
	Country                string `json:"country"`
	Pincode                string `json:"pincode"`
	Email                  string `json:"email"`
	Mobile                 string `json:"mobile"`
}

// DisplayName joins the non-empty name parts.
func (r Record) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.FirstName, r.MiddleName, r.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
