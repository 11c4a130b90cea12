package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
)

type doctorRepository struct {
	BaseRepository
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{NewBaseRepository(db)}
}

const doctorColumns = `d.id, d.user_id, d.first_name, d.last_name, d.title, d.photo_url,
	d.specialties, d.years_of_experience, d.bio, d.consultation_fee, d.languages,
	d.status, d.created_at, d.updated_at`

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	var d model.Doctor
	if err := r.db.GetContext(ctx, &d, `SELECT `+doctorColumns+` FROM doctors d WHERE d.id = $1`, id); err != nil {
		return nil, mapError(err)
	}
	return &d, nil
}

func (r *doctorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error) {
	var d model.Doctor
	if err := r.db.GetContext(ctx, &d, `SELECT `+doctorColumns+` FROM doctors d WHERE d.user_id = $1`, userID); err != nil {
		return nil, mapError(err)
	}
	return &d, nil
}

func (r *doctorRepository) Search(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, int, error) {
	where := []string{"d.status = 'active'"}
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Specialty != "" {
		where = append(where, arg(filters.Specialty)+" = ANY(d.specialties)")
	}
	if filters.Language != "" {
		where = append(where, arg(filters.Language)+" = ANY(d.languages)")
	}
	if filters.Search != "" {
		p := arg("%" + filters.Search + "%")
		where = append(where, fmt.Sprintf("(d.first_name || ' ' || d.last_name) ILIKE %s", p))
	}
	if filters.City != "" || filters.HospitalID != nil {
		sub := []string{"dba.doctor_id = d.id", "b.is_active"}
		if filters.City != "" {
			sub = append(sub, "b.city ILIKE "+arg(filters.City))
		}
		if filters.HospitalID != nil {
			sub = append(sub, "b.hospital_id = "+arg(*filters.HospitalID))
		}
		where = append(where, `EXISTS (SELECT 1 FROM doctor_branch_assignments dba
			JOIN branches b ON b.id = dba.branch_id WHERE `+strings.Join(sub, " AND ")+`)`)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM doctors d WHERE `+cond, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count doctors: %w", err)
	}

	p := filters.Pagination.Normalize()
	query := fmt.Sprintf(`SELECT %s FROM doctors d WHERE %s ORDER BY d.last_name, d.first_name LIMIT %s OFFSET %s`,
		doctorColumns, cond, arg(p.PageSize), arg(p.Offset()))

	doctors := []*model.Doctor{}
	if err := r.db.SelectContext(ctx, &doctors, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to search doctors: %w", err)
	}
	return doctors, total, nil
}

const doctorServiceQuery = `
	SELECT s.id, s.department_id, s.name, s.description, s.duration_minutes,
	       s.base_price, s.currency, s.is_active, s.created_at, s.updated_at,
	       ds.custom_price, ds.custom_duration
	FROM doctor_services ds
	JOIN services s ON s.id = ds.service_id
	WHERE ds.doctor_id = $1`

func (r *doctorRepository) ListServices(ctx context.Context, doctorID uuid.UUID) ([]model.DoctorService, error) {
	services := []model.DoctorService{}
	if err := r.db.SelectContext(ctx, &services, doctorServiceQuery+` AND s.is_active ORDER BY s.name`, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list doctor services: %w", err)
	}
	return services, nil
}

func (r *doctorRepository) GetService(ctx context.Context, doctorID, serviceID uuid.UUID) (*model.DoctorService, error) {
	var s model.DoctorService
	if err := r.db.GetContext(ctx, &s, doctorServiceQuery+` AND ds.service_id = $2`, doctorID, serviceID); err != nil {
		return nil, mapError(err)
	}
	return &s, nil
}

func (r *doctorRepository) ListBranches(ctx context.Context, doctorID uuid.UUID) ([]model.DoctorBranch, error) {
	branches := []model.DoctorBranch{}
	err := r.db.SelectContext(ctx, &branches, `
		SELECT `+branchColumns+`, h.name AS hospital_name, dba.is_primary
		FROM doctor_branch_assignments dba
		JOIN branches b ON b.id = dba.branch_id
		JOIN hospitals h ON h.id = b.hospital_id
		WHERE dba.doctor_id = $1 AND b.is_active
		ORDER BY dba.is_primary DESC, dba.created_at`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctor branches: %w", err)
	}
	return branches, nil
}

func (r *doctorRepository) ListReviews(ctx context.Context, doctorID uuid.UUID) ([]model.Review, error) {
	reviews := []model.Review{}
	err := r.db.SelectContext(ctx, &reviews, `
		SELECT rv.id, rv.doctor_id, rv.patient_id, COALESCE(u.full_name, '') AS patient_name,
		       rv.rating, rv.comment, rv.created_at
		FROM doctor_reviews rv
		LEFT JOIN users u ON u.id = rv.patient_id
		WHERE rv.doctor_id = $1
		ORDER BY rv.created_at DESC`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (r *doctorRepository) ListInsurances(ctx context.Context, doctorID uuid.UUID) ([]model.Insurance, error) {
	insurances := []model.Insurance{}
	err := r.db.SelectContext(ctx, &insurances, `
		SELECT i.id, i.name
		FROM doctor_insurances di
		JOIN insurances i ON i.id = di.insurance_id
		WHERE di.doctor_id = $1
		ORDER BY i.name`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list insurances: %w", err)
	}
	return insurances, nil
}

func (r *doctorRepository) CreateReview(ctx context.Context, review *model.Review) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO doctor_reviews (id, doctor_id, patient_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		review.ID, review.DoctorID, review.PatientID, review.Rating, review.Comment, review.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", mapError(err))
	}
	return nil
}
