package sqlite

import (
	"context"

	"github.com/hireline/hireline/internal/domain"
	"github.com/hireline/hireline/internal/store"
)

type applicationsRepo struct {
	db dbtx
}

const applicationColumns = `id, job_id, employee_id, cover_note, status, created_at`

func (r *applicationsRepo) CreateApplication(ctx context.Context, a domain.Application) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO applications (id, job_id, employee_id, cover_note, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.JobID, a.EmployeeID, a.CoverNote, a.Status, a.CreatedAt)
	return mapConstraint(err)
}

func (r *applicationsRepo) GetApplicationByID(ctx context.Context, id string) (domain.Application, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id)
	return scanApplication(row)
}

func (r *applicationsRepo) ListByJob(ctx context.Context, jobID string) ([]domain.Application, error) {
	return r.list(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE job_id = ? ORDER BY created_at DESC, id DESC`,
		jobID)
}

func (r *applicationsRepo) ListByEmployee(ctx context.Context, employeeID string) ([]domain.Application, error) {
	return r.list(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE employee_id = ? ORDER BY created_at DESC, id DESC`,
		employeeID)
}

func (r *applicationsRepo) list(ctx context.Context, query string, args ...any) ([]domain.Application, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []domain.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (r *applicationsRepo) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE applications SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *applicationsRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications`).Scan(&n)
	return n, err
}

func scanApplication(row rowScanner) (domain.Application, error) {
	var a domain.Application
	err := row.Scan(&a.ID, &a.JobID, &a.EmployeeID, &a.CoverNote, &a.Status, &a.CreatedAt)
	if err != nil {
		return domain.Application{}, mapNotFound(err)
	}
	return a, nil
}
