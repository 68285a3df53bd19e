package domain

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
)

const dateOfBirthLayout = "2006-01-02"

var countryCodeRegexp = regexp.MustCompile(`^[A-Z]{2}$`)

type Address struct {
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	// Country is the ISO 3166-1 alpha-2 country code, ie. GB
	Country  string `json:"country"`
	PostCode string `json:"postCode"`
	PostTown string `json:"postTown"`
}

func (a Address) Validate() error {
	if len(strings.TrimSpace(a.AddressLine1)) <= 0 {
		return ErrInvalidArgument.WithMessage("missing address line")
	}
	if !countryCodeRegexp.MatchString(a.Country) {
		return ErrInvalidArgument.WithMessage(
			"country %q must be an ISO 3166-1 alpha-2 code", a.Country,
		)
	}
	if len(strings.TrimSpace(a.PostCode)) <= 0 {
		return ErrInvalidArgument.WithMessage("missing post code")
	}
	if len(strings.TrimSpace(a.PostTown)) <= 0 {
		return ErrInvalidArgument.WithMessage("missing post town")
	}
	return nil
}

// FiatCustomerData are the personal details required to onboard the user
// as customer of the fiat rails of a network
type FiatCustomerData struct {
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName,omitempty"`
	LastName   string `json:"lastName"`
	// DateOfBirth is formatted as YYYY-MM-DD
	DateOfBirth string  `json:"dateOfBirth"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	Address     Address `json:"address"`
}

func (d FiatCustomerData) Validate() error {
	if len(strings.TrimSpace(d.FirstName)) <= 0 {
		return ErrInvalidArgument.WithMessage("missing first name")
	}
	if len(strings.TrimSpace(d.LastName)) <= 0 {
		return ErrInvalidArgument.WithMessage("missing last name")
	}
	if _, err := time.Parse(dateOfBirthLayout, d.DateOfBirth); err != nil {
		return ErrInvalidArgument.WithMessage(
			"date of birth %q must be formatted as YYYY-MM-DD", d.DateOfBirth,
		)
	}
	if _, err := mail.ParseAddress(d.Email); err != nil {
		return ErrInvalidArgument.WithMessage("invalid email %q", d.Email)
	}
	if len(strings.TrimSpace(d.Phone)) <= 0 {
		return ErrInvalidArgument.WithMessage("missing phone number")
	}
	return d.Address.Validate()
}
