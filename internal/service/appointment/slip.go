package appointment

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"

	"github.com/jwalitptl/booking-api/internal/session"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/locale"
)

// DejaVu covers Cyrillic and the Azerbaijani Latin letters the core PDF
// fonts lack.
var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	slipFontRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	slipFontBold []byte
)

const slipFont = "DejaVu"

var slipLabels = map[locale.Locale]map[string]string{
	locale.AZ: {
		"title":   "Qəbul təsdiqi",
		"id":      "Qəbul nömrəsi",
		"doctor":  "Həkim",
		"service": "Xidmət",
		"branch":  "Filial",
		"address": "Ünvan",
		"date":    "Tarix",
		"time":    "Vaxt",
		"status":  "Status",
		"price":   "Qiymət",
	},
	locale.RU: {
		"title":   "Подтверждение записи",
		"id":      "Номер записи",
		"doctor":  "Врач",
		"service": "Услуга",
		"branch":  "Филиал",
		"address": "Адрес",
		"date":    "Дата",
		"time":    "Время",
		"status":  "Статус",
		"price":   "Цена",
	},
}

// Slip renders a one-page confirmation of the appointment.
func (s *Service) Slip(ctx context.Context, sess *session.Session, id uuid.UUID) ([]byte, error) {
	appt, err := s.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	doctor, err := s.doctors.Get(ctx, appt.DoctorID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("get doctor: %w", err))
	}
	svc, err := s.doctors.GetService(ctx, appt.DoctorID, appt.ServiceID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("get service: %w", err))
	}
	branch, err := s.hospitals.GetBranch(ctx, appt.BranchID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("get branch: %w", err))
	}

	loc := sess.Locale
	labels, ok := slipLabels[loc]
	if !ok {
		loc = locale.Default
		labels = slipLabels[loc]
	}

	rows := [][2]string{
		{labels["id"], appt.ID.String()},
		{labels["doctor"], doctor.FullName()},
		{labels["service"], svc.Name},
		{labels["branch"], branch.Name},
		{labels["address"], branch.Address + ", " + branch.City},
		{labels["date"], loc.FormatDate(appt.ScheduledDate.Time)},
		{labels["time"], appt.StartTime + " - " + appt.EndTime},
		{labels["status"], string(appt.Status)},
	}
	if appt.Price != nil {
		currency := ""
		if appt.Currency != nil {
			currency = *appt.Currency
		}
		rows = append(rows, [2]string{labels["price"], fmt.Sprintf("%.2f %s", *appt.Price, currency)})
	}
	return renderSlip(labels["title"], rows, true)
}

func renderSlip(title string, rows [][2]string, compress bool) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.AddUTF8FontFromBytes(slipFont, "", slipFontRegular)
	pdf.AddUTF8FontFromBytes(slipFont, "B", slipFontBold)
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont(slipFont, "B", 14)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for _, row := range rows {
		pdf.SetFont(slipFont, "B", 11)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(50, 9, row[0], "1", 0, "", true, 0, "")
		pdf.SetFont(slipFont, "", 11)
		pdf.CellFormat(0, 9, row[1], "1", 1, "", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("render slip: %w", err))
	}
	return buf.Bytes(), nil
}
