// Package registration holds the doctor and hospital onboarding wizards and
// the service that stores their pending applications.
package registration

import (
	"net/mail"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jwalitptl/booking-api/pkg/security"
)

const (
	minNameLength     = 2
	minPhoneDigits    = 9
	minPasswordLength = 8
)

type DoctorForm struct {
	FirstName         string   `json:"first_name"`
	LastName          string   `json:"last_name"`
	Email             string   `json:"email"`
	Phone             string   `json:"phone"`
	Specialty         string   `json:"specialty"`
	LicenseNumber     string   `json:"license_number"`
	YearsOfExperience string   `json:"years_of_experience"`
	ConsultationFee   string   `json:"consultation_fee"`
	Bio               string   `json:"bio"`
	Languages         []string `json:"languages"`
	DiplomaURL        string   `json:"diploma_url"`
	LicenseURL        string   `json:"license_url"`
}

type HospitalForm struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	City          string `json:"city"`
	Address       string `json:"address"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Website       string `json:"website"`
	AdminName     string `json:"admin_name"`
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
}

func validName(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= minNameLength
}

func validEmail(s string) bool {
	s = strings.TrimSpace(s)
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return strings.Contains(s[at+1:], ".")
}

func validPhone(s string) bool {
	digits := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits >= minPhoneDigits
}

func parseYears(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil && n >= 0
}

func parseFee(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	return f, err == nil && f >= 0
}

func ValidPersonal(f DoctorForm) bool {
	return validName(f.FirstName) && validName(f.LastName) &&
		validEmail(f.Email) && validPhone(f.Phone)
}

func ValidProfessional(f DoctorForm) bool {
	if strings.TrimSpace(f.Specialty) == "" || strings.TrimSpace(f.LicenseNumber) == "" {
		return false
	}
	if _, ok := parseYears(f.YearsOfExperience); !ok {
		return false
	}
	_, ok := parseFee(f.ConsultationFee)
	return ok
}

func ValidDocuments(f DoctorForm) bool {
	return strings.TrimSpace(f.DiplomaURL) != "" && strings.TrimSpace(f.LicenseURL) != ""
}

func ValidHospital(f HospitalForm) bool {
	return validName(f.Name) && strings.TrimSpace(f.Type) != "" &&
		validName(f.City) && strings.TrimSpace(f.Address) != ""
}

func ValidContact(f HospitalForm) bool {
	return validEmail(f.Email) && validPhone(f.Phone)
}

func ValidAdmin(f HospitalForm) bool {
	return validName(f.AdminName) && validEmail(f.AdminEmail) &&
		utf8.RuneCountInString(f.AdminPassword) >= minPasswordLength &&
		len(f.AdminPassword) <= security.MaxPasswordBytes
}
