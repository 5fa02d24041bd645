package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"shoplytics/internal/domain"
)

// ImportRepo keeps a ledger of generate/load-csv runs against a store.
type ImportRepo struct{ db *sqlx.DB }

func NewImportRepo(db *sqlx.DB) *ImportRepo { return &ImportRepo{db: db} }

type importRunRow struct {
	ID         string         `db:"id"`
	Source     string         `db:"source"`
	Checksum   string         `db:"checksum"`
	Status     string         `db:"status"`
	StartedAt  string         `db:"started_at"`
	FinishedAt sql.NullString `db:"finished_at"`
}

func (row importRunRow) toDomain() (domain.ImportRun, error) {
	run := domain.ImportRun{ID: row.ID, Source: row.Source, Checksum: row.Checksum, Status: row.Status}
	var err error
	if run.StartedAt, err = parseTime(row.StartedAt); err != nil {
		return domain.ImportRun{}, err
	}
	if row.FinishedAt.Valid {
		if run.FinishedAt, err = parseTime(row.FinishedAt.String); err != nil {
			return domain.ImportRun{}, err
		}
	}
	return run, nil
}

// Start records a run in RUNNING state.
func (r *ImportRepo) Start(run domain.ImportRun) error {
	_, err := r.db.Exec(`
	  INSERT INTO import_runs(id, source, checksum, status, started_at)
	  VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.Source, run.Checksum, domain.ImportRunning, formatTime(run.StartedAt))
	if err != nil {
		return &domain.StorageError{Op: "start import run", Err: err}
	}
	return nil
}

// Finish moves a run to its terminal status.
func (r *ImportRepo) Finish(run domain.ImportRun) error {
	res, err := r.db.Exec(`
	  UPDATE import_runs SET status = ?, finished_at = ? WHERE id = ?
	`, run.Status, formatTime(run.FinishedAt), run.ID)
	if err != nil {
		return &domain.StorageError{Op: "finish import run", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.NotFoundError{Entity: "import run", Key: run.ID}
	}
	return nil
}

// FindCompleted returns the most recent completed run with the given checksum.
func (r *ImportRepo) FindCompleted(checksum string) (domain.ImportRun, error) {
	var row importRunRow
	err := r.db.Get(&row, `
		SELECT id, source, checksum, status, started_at, finished_at
		FROM import_runs
		WHERE checksum = ? AND status = ?
		ORDER BY started_at DESC
		LIMIT 1
	`, checksum, domain.ImportCompleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ImportRun{}, &domain.NotFoundError{Entity: "import run", Key: checksum}
		}
		return domain.ImportRun{}, &domain.StorageError{Op: "find import run", Err: err}
	}
	run, err := row.toDomain()
	if err != nil {
		return domain.ImportRun{}, &domain.StorageError{Op: "find import run", Err: err}
	}
	return run, nil
}

// Latest returns the most recently started run of any status.
func (r *ImportRepo) Latest() (domain.ImportRun, error) {
	var row importRunRow
	err := r.db.Get(&row, `
		SELECT id, source, checksum, status, started_at, finished_at
		FROM import_runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT 1
	`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ImportRun{}, &domain.NotFoundError{Entity: "import run", Key: "latest"}
		}
		return domain.ImportRun{}, &domain.StorageError{Op: "latest import run", Err: err}
	}
	run, err := row.toDomain()
	if err != nil {
		return domain.ImportRun{}, &domain.StorageError{Op: "latest import run", Err: err}
	}
	return run, nil
}
