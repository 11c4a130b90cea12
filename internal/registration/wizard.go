package registration

import (
	"strings"

	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

// Wizard is a linear form stepper ending in a review step. F is the form
// value collected across the steps.
type Wizard[F any] struct {
	steps []string
	valid []func(F) bool
	index int
	Form  F
}

var (
	ErrStepInvalid = apperrors.Validation("current step is incomplete")
	ErrAtReview    = apperrors.BadRequest("wizard is already at review", nil)
	ErrAtStart     = apperrors.BadRequest("wizard is at the first step", nil)
)

const StepReview = "review"

func newWizard[F any](names []string, preds []func(F) bool) *Wizard[F] {
	return &Wizard[F]{steps: append(names, StepReview), valid: preds}
}

func NewDoctorWizard() *Wizard[DoctorForm] {
	return newWizard([]string{"personal", "professional", "documents"},
		[]func(DoctorForm) bool{ValidPersonal, ValidProfessional, ValidDocuments})
}

func NewHospitalWizard() *Wizard[HospitalForm] {
	return newWizard([]string{"hospital", "contact", "admin"},
		[]func(HospitalForm) bool{ValidHospital, ValidContact, ValidAdmin})
}

func (w *Wizard[F]) Step() string {
	return w.steps[w.index]
}

// CanAdvance reports whether the current step's predicate holds.
func (w *Wizard[F]) CanAdvance() bool {
	return w.index < len(w.valid) && w.valid[w.index](w.Form)
}

func (w *Wizard[F]) Next() error {
	if w.index >= len(w.valid) {
		return ErrAtReview
	}
	if !w.CanAdvance() {
		return ErrStepInvalid
	}
	w.index++
	return nil
}

func (w *Wizard[F]) Back() error {
	if w.index == 0 {
		return ErrAtStart
	}
	w.index--
	return nil
}

func (w *Wizard[F]) AtReview() bool {
	return w.steps[w.index] == StepReview
}

// Complete reports whether every step's predicate holds for the form.
func Complete[F any](w *Wizard[F]) bool {
	for _, ok := range w.valid {
		if !ok(w.Form) {
			return false
		}
	}
	return true
}

// Walk drives w from its current step to review, stopping at the first
// step whose predicate fails.
func Walk[F any](w *Wizard[F]) error {
	for !w.AtReview() {
		if err := w.Next(); err != nil {
			return apperrors.Validation(w.Step() + " step is incomplete")
		}
	}
	return nil
}

func trimmed(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
