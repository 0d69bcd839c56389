package repository

import (
	"context"
	"database/sql"

	"github.com/YoshikiFujii/FLcasher/internal/model"
)

// PrintJobRepository is the durable offline queue for receipt payloads that
// exhausted their delivery retries.
type PrintJobRepository struct {
	DB *sql.DB
}

func NewPrintJobRepository(db *sql.DB) *PrintJobRepository {
	return &PrintJobRepository{DB: db}
}

func (r *PrintJobRepository) Add(ctx context.Context, job *model.PrintJob) error {
	query := `INSERT INTO print_jobs (id, timestamp, device_address, payload) VALUES (?, ?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, query, job.ID, job.Timestamp, job.DeviceAddress, job.Payload)
	return err
}

// List returns queued jobs oldest first.
func (r *PrintJobRepository) List(ctx context.Context) ([]model.PrintJob, error) {
	query := `SELECT id, timestamp, device_address, payload FROM print_jobs ORDER BY timestamp ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]model.PrintJob, 0)
	for rows.Next() {
		var j model.PrintJob
		if err := rows.Scan(&j.ID, &j.Timestamp, &j.DeviceAddress, &j.Payload); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *PrintJobRepository) Remove(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM print_jobs WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
