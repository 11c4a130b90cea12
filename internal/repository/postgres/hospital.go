package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
)

type hospitalRepository struct {
	BaseRepository
}

func NewHospitalRepository(db *sqlx.DB) repository.HospitalRepository {
	return &hospitalRepository{NewBaseRepository(db)}
}

const hospitalColumns = `h.id, h.name, h.type, h.description, h.logo_url, h.email, h.phone,
	h.website, h.status, h.created_at, h.updated_at`

func (r *hospitalRepository) List(ctx context.Context, filters *model.HospitalFilters) ([]*model.Hospital, int, error) {
	where := []string{"h.status = 'active'"}
	var args []interface{}
	if filters.City != "" {
		args = append(args, filters.City)
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM branches b WHERE b.hospital_id = h.id AND b.is_active AND b.city ILIKE $%d)", len(args)))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where = append(where, fmt.Sprintf("h.name ILIKE $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM hospitals h WHERE `+cond, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count hospitals: %w", err)
	}

	p := filters.Pagination.Normalize()
	args = append(args, p.PageSize, p.Offset())
	query := fmt.Sprintf(`SELECT %s FROM hospitals h WHERE %s ORDER BY h.name LIMIT $%d OFFSET $%d`,
		hospitalColumns, cond, len(args)-1, len(args))

	hospitals := []*model.Hospital{}
	if err := r.db.SelectContext(ctx, &hospitals, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list hospitals: %w", err)
	}
	return hospitals, total, nil
}

func (r *hospitalRepository) Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error) {
	var h model.Hospital
	err := r.db.GetContext(ctx, &h, `SELECT `+hospitalColumns+` FROM hospitals h WHERE h.id = $1`, id)
	if err != nil {
		return nil, mapError(err)
	}
	return &h, nil
}

const branchColumns = `b.id, b.hospital_id, b.name, b.address, b.city, b.latitude, b.longitude,
	b.phone, b.operating_hours, b.facilities, b.is_active, b.created_at, b.updated_at`

func (r *hospitalRepository) ListBranches(ctx context.Context, hospitalID uuid.UUID) ([]*model.Branch, error) {
	branches := []*model.Branch{}
	err := r.db.SelectContext(ctx, &branches,
		`SELECT `+branchColumns+` FROM branches b WHERE b.hospital_id = $1 AND b.is_active ORDER BY b.name`, hospitalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	return branches, nil
}

func (r *hospitalRepository) GetBranch(ctx context.Context, id uuid.UUID) (*model.Branch, error) {
	var b model.Branch
	if err := r.db.GetContext(ctx, &b, `SELECT `+branchColumns+` FROM branches b WHERE b.id = $1`, id); err != nil {
		return nil, mapError(err)
	}
	return &b, nil
}

func (r *hospitalRepository) ListDepartments(ctx context.Context, hospitalID uuid.UUID) ([]*model.Department, error) {
	departments := []*model.Department{}
	err := r.db.SelectContext(ctx, &departments, `
		SELECT id, hospital_id, name, description, created_at, updated_at
		FROM departments
		WHERE hospital_id = $1
		ORDER BY name`, hospitalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return departments, nil
}

// ListBranchServices returns the active services of the hospital that owns
// the branch.
func (r *hospitalRepository) ListBranchServices(ctx context.Context, branchID uuid.UUID) ([]*model.Service, error) {
	services := []*model.Service{}
	err := r.db.SelectContext(ctx, &services, `
		SELECT s.id, s.department_id, s.name, s.description, s.duration_minutes,
		       s.base_price, s.currency, s.is_active, s.created_at, s.updated_at
		FROM services s
		JOIN departments d ON d.id = s.department_id
		JOIN branches b ON b.hospital_id = d.hospital_id
		WHERE b.id = $1 AND s.is_active
		ORDER BY s.name`, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list branch services: %w", err)
	}
	return services, nil
}

func (r *hospitalRepository) IsStaff(ctx context.Context, userID, branchID uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok, `
		SELECT EXISTS (
			SELECT 1 FROM staff_assignments
			WHERE user_id = $1 AND branch_id = $2
			  AND (end_date IS NULL OR end_date >= CURRENT_DATE)
		)`, userID, branchID)
	if err != nil {
		return false, fmt.Errorf("failed to check staff assignment: %w", err)
	}
	return ok, nil
}
