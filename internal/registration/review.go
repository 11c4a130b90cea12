package registration

import "strings"

// DoctorReview is what the review step shows: every entered field as typed,
// except years and fee which are parsed.
type DoctorReview struct {
	FirstName         string   `json:"first_name"`
	LastName          string   `json:"last_name"`
	Email             string   `json:"email"`
	Phone             string   `json:"phone"`
	Specialty         string   `json:"specialty"`
	LicenseNumber     string   `json:"license_number"`
	YearsOfExperience int      `json:"years_of_experience"`
	ConsultationFee   float64  `json:"consultation_fee"`
	Bio               string   `json:"bio"`
	Languages         []string `json:"languages"`
	DiplomaURL        string   `json:"diploma_url"`
	LicenseURL        string   `json:"license_url"`
}

type HospitalReview struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	City       string `json:"city"`
	Address    string `json:"address"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Website    string `json:"website"`
	AdminName  string `json:"admin_name"`
	AdminEmail string `json:"admin_email"`
	// Masked; the password itself never reaches the review step.
	AdminPassword string `json:"admin_password"`
}

func ReviewDoctor(f DoctorForm) DoctorReview {
	years, _ := parseYears(f.YearsOfExperience)
	fee, _ := parseFee(f.ConsultationFee)
	return DoctorReview{
		FirstName:         f.FirstName,
		LastName:          f.LastName,
		Email:             f.Email,
		Phone:             f.Phone,
		Specialty:         f.Specialty,
		LicenseNumber:     f.LicenseNumber,
		YearsOfExperience: years,
		ConsultationFee:   fee,
		Bio:               f.Bio,
		Languages:         append([]string(nil), f.Languages...),
		DiplomaURL:        f.DiplomaURL,
		LicenseURL:        f.LicenseURL,
	}
}

func ReviewHospital(f HospitalForm) HospitalReview {
	return HospitalReview{
		Name:          f.Name,
		Type:          f.Type,
		City:          f.City,
		Address:       f.Address,
		Email:         f.Email,
		Phone:         f.Phone,
		Website:       f.Website,
		AdminName:     f.AdminName,
		AdminEmail:    f.AdminEmail,
		AdminPassword: strings.Repeat("*", len([]rune(f.AdminPassword))),
	}
}

// Review returns the review-step view of the wizard's form. It is only
// available once the wizard reached review.
func (w *Wizard[F]) Review() (interface{}, bool) {
	if !w.AtReview() {
		return nil, false
	}
	switch f := any(w.Form).(type) {
	case DoctorForm:
		return ReviewDoctor(f), true
	case HospitalForm:
		return ReviewHospital(f), true
	}
	return w.Form, true
}
