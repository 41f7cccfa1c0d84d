package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/raka-dev/sekolah-hr-api/internal/models"
)

// EmployeeRepository reads the employee directory. The scheduling core never
// writes employee rows.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository creates a new employee repository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeColumns = `id, employee_code, full_name, employee_type, location_id, is_active, created_at, updated_at`

// FindByID loads an employee.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	query := fmt.Sprintf(`SELECT %s FROM employees WHERE id = $1`, employeeColumns)
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, id); err != nil {
		return nil, err
	}
	return &employee, nil
}

// ListByIDs loads a batch of employees by id.
func (r *EmployeeRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf(`SELECT %s FROM employees WHERE id IN (?)`, employeeColumns), ids)
	if err != nil {
		return nil, fmt.Errorf("build employee batch query: %w", err)
	}
	query = r.db.Rebind(query)

	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, fmt.Errorf("list employees by ids: %w", err)
	}
	return employees, nil
}

// ListActiveByLocation returns active employees at a location.
func (r *EmployeeRepository) ListActiveByLocation(ctx context.Context, locationID string) ([]models.Employee, error) {
	query := fmt.Sprintf(`SELECT %s FROM employees WHERE location_id = $1 AND is_active = true ORDER BY full_name ASC`, employeeColumns)
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, locationID); err != nil {
		return nil, fmt.Errorf("list active employees: %w", err)
	}
	return employees, nil
}

// Capabilities reads the directory's capability flags for a teacher. An
// employee with no capability row gets zero capabilities.
func (r *EmployeeRepository) Capabilities(ctx context.Context, employeeID string) (models.EmployeeCapabilities, error) {
	const query = `SELECT can_teach, can_substitute FROM employee_capabilities WHERE employee_id = $1`
	var caps models.EmployeeCapabilities
	if err := r.db.GetContext(ctx, &caps, query, employeeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.EmployeeCapabilities{}, nil
		}
		return caps, fmt.Errorf("load employee capabilities: %w", err)
	}
	return caps, nil
}
