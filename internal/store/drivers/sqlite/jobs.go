package sqlite

import (
	"context"

	"github.com/hireline/hireline/internal/domain"
	"github.com/hireline/hireline/internal/store"
)

type jobsRepo struct {
	db dbtx
}

const jobColumns = `id, employer_id, title, company, location, description, salary, created_at, updated_at`

func (r *jobsRepo) CreateJob(ctx context.Context, j domain.Job) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO jobs (id, employer_id, title, company, location, description, salary, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.EmployerID, j.Title, j.Company, j.Location, j.Description, j.Salary, j.CreatedAt, j.UpdatedAt)
	return mapConstraint(err)
}

func (r *jobsRepo) GetJobByID(ctx context.Context, id string) (domain.Job, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	return scanJob(row)
}

func (r *jobsRepo) ListJobs(ctx context.Context, f store.JobFilter) ([]domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE 1=1`
	var args []any

	if f.EmployerID != "" {
		query += ` AND employer_id = ?`
		args = append(args, f.EmployerID)
	}
	if f.Search != "" {
		query += ` AND (title LIKE ? OR company LIKE ? OR location LIKE ?)`
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []domain.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *jobsRepo) UpdateJob(ctx context.Context, j domain.Job) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET title = ?, company = ?, location = ?, description = ?, salary = ?,
		 updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		j.Title, j.Company, j.Location, j.Description, j.Salary, j.ID)
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

func (r *jobsRepo) DeleteJob(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
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

func (r *jobsRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n)
	return n, err
}

func scanJob(row rowScanner) (domain.Job, error) {
	var j domain.Job
	err := row.Scan(&j.ID, &j.EmployerID, &j.Title, &j.Company, &j.Location,
		&j.Description, &j.Salary, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return domain.Job{}, mapNotFound(err)
	}
	return j, nil
}
