package registration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDoctorForm() DoctorForm {
	return DoctorForm{
		FirstName:         "Leyla",
		LastName:          "Məmmədova",
		Email:             "leyla@clinic.az",
		Phone:             "+994 50 123 45 67",
		Specialty:         "Cardiology",
		LicenseNumber:     "AZ-12345",
		YearsOfExperience: "12",
		ConsultationFee:   "45.50",
		Bio:               "Interventional cardiologist",
		Languages:         []string{"az", "ru", " "},
		DiplomaURL:        "https://files.example.com/diploma.pdf",
		LicenseURL:        "https://files.example.com/license.pdf",
	}
}

func validHospitalForm() HospitalForm {
	return HospitalForm{
		Name:          "Mərkəzi Klinika",
		Type:          "private",
		City:          "Bakı",
		Address:       "Nizami küç. 10",
		Email:         "info@merkezi.az",
		Phone:         "012 555 44 33",
		Website:       "https://merkezi.az",
		AdminName:     "Rauf Əliyev",
		AdminEmail:    "rauf@merkezi.az",
		AdminPassword: "s3cret-pass",
	}
}

func TestDoctorWizardReachesReview(t *testing.T) {
	w := NewDoctorWizard()
	w.Form = validDoctorForm()

	assert.Equal(t, "personal", w.Step())
	require.NoError(t, w.Next())
	assert.Equal(t, "professional", w.Step())
	require.NoError(t, w.Next())
	assert.Equal(t, "documents", w.Step())
	require.NoError(t, w.Next())
	assert.True(t, w.AtReview())
	assert.ErrorIs(t, w.Next(), ErrAtReview)
}

func TestDoctorReviewShowsEnteredFields(t *testing.T) {
	w := NewDoctorWizard()
	w.Form = validDoctorForm()
	require.NoError(t, Walk(w))

	v, ok := w.Review()
	require.True(t, ok)
	review := v.(DoctorReview)

	f := w.Form
	assert.Equal(t, f.FirstName, review.FirstName)
	assert.Equal(t, f.LastName, review.LastName)
	assert.Equal(t, f.Email, review.Email)
	assert.Equal(t, f.Phone, review.Phone)
	assert.Equal(t, f.Specialty, review.Specialty)
	assert.Equal(t, f.LicenseNumber, review.LicenseNumber)
	assert.Equal(t, f.Bio, review.Bio)
	assert.Equal(t, f.DiplomaURL, review.DiplomaURL)
	assert.Equal(t, f.LicenseURL, review.LicenseURL)
	assert.Equal(t, 12, review.YearsOfExperience)
	assert.Equal(t, 45.5, review.ConsultationFee)
	assert.Equal(t, []string{"az", "ru"}, review.Languages)
}

func TestDoctorReviewKeepsLanguagesAsTyped(t *testing.T) {
	w := NewDoctorWizard()
	w.Form = validDoctorForm()
	w.Form.Languages = []string{" az ", "", "ru"}
	require.NoError(t, Walk(w))

	v, _ := w.Review()
	assert.Equal(t, []string{" az ", "", "ru"}, v.(DoctorReview).Languages)
}

func TestHospitalReviewMasksPassword(t *testing.T) {
	w := NewHospitalWizard()
	w.Form = validHospitalForm()
	require.NoError(t, Walk(w))

	v, ok := w.Review()
	require.True(t, ok)
	review := v.(HospitalReview)
	assert.Equal(t, w.Form.Name, review.Name)
	assert.Equal(t, w.Form.City, review.City)
	assert.Equal(t, w.Form.AdminEmail, review.AdminEmail)
	assert.Equal(t, "***********", review.AdminPassword)
}

func TestEmptySpecialtyNeverReachesReview(t *testing.T) {
	w := NewDoctorWizard()
	w.Form = validDoctorForm()
	w.Form.Specialty = ""

	require.NoError(t, w.Next())
	assert.False(t, w.CanAdvance())
	assert.ErrorIs(t, w.Next(), ErrStepInvalid)
	assert.Equal(t, "professional", w.Step())

	_, ok := w.Review()
	assert.False(t, ok)

	err := Walk(w)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "professional")
	assert.False(t, w.AtReview())
}

func TestWizardBack(t *testing.T) {
	w := NewHospitalWizard()
	w.Form = validHospitalForm()

	assert.ErrorIs(t, w.Back(), ErrAtStart)
	require.NoError(t, w.Next())
	require.NoError(t, w.Back())
	assert.Equal(t, "hospital", w.Step())
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DoctorForm)
		check  func(DoctorForm) bool
		want   bool
	}{
		{"valid personal", func(*DoctorForm) {}, ValidPersonal, true},
		{"one letter name", func(f *DoctorForm) { f.FirstName = "L" }, ValidPersonal, false},
		{"email without at", func(f *DoctorForm) { f.Email = "leyla.clinic.az" }, ValidPersonal, false},
		{"email without domain dot", func(f *DoctorForm) { f.Email = "leyla@clinic" }, ValidPersonal, false},
		{"short phone", func(f *DoctorForm) { f.Phone = "12345678" }, ValidPersonal, false},
		{"negative years", func(f *DoctorForm) { f.YearsOfExperience = "-1" }, ValidProfessional, false},
		{"years not a number", func(f *DoctorForm) { f.YearsOfExperience = "ten" }, ValidProfessional, false},
		{"fee with comma", func(f *DoctorForm) { f.ConsultationFee = "45,5" }, ValidProfessional, true},
		{"fee empty", func(f *DoctorForm) { f.ConsultationFee = "" }, ValidProfessional, true},
		{"negative fee", func(f *DoctorForm) { f.ConsultationFee = "-3" }, ValidProfessional, false},
		{"missing license doc", func(f *DoctorForm) { f.LicenseURL = " " }, ValidDocuments, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validDoctorForm()
			tt.mutate(&f)
			assert.Equal(t, tt.want, tt.check(f))
		})
	}
}

func TestHospitalAdminPasswordLength(t *testing.T) {
	f := validHospitalForm()
	assert.True(t, ValidAdmin(f))
	f.AdminPassword = "short"
	assert.False(t, ValidAdmin(f))
	f.AdminPassword = strings.Repeat("x", 80)
	assert.False(t, ValidAdmin(f))
	// 36 two-byte runes is exactly the bcrypt limit.
	f.AdminPassword = strings.Repeat("ə", 36)
	assert.True(t, ValidAdmin(f))
	f.AdminPassword += "ə"
	assert.False(t, ValidAdmin(f))
}
