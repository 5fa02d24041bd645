package repos

import (
	"github.com/jmoiron/sqlx"

	"shoplytics/internal/domain"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

type categoryRow struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	CreatedAt   string `db:"created_at"`
}

// Create inserts a category and returns its store-assigned id.
func (r *CategoryRepo) Create(c domain.Category) (int64, error) {
	res, err := r.db.Exec(`
	  INSERT INTO categories(name, description)
	  VALUES (?, ?)
	`, c.Name, nullString(c.Description))
	if err != nil {
		return 0, &domain.StorageError{Op: "insert category", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &domain.StorageError{Op: "insert category", Err: err}
	}
	return id, nil
}

func (r *CategoryRepo) List() ([]domain.Category, error) {
	var rows []categoryRow
	err := r.db.Select(&rows, `
	  SELECT id, name, COALESCE(description,'') AS description, created_at
	  FROM categories
	  ORDER BY id
	`)
	if err != nil {
		return nil, &domain.StorageError{Op: "list categories", Err: err}
	}
	out := make([]domain.Category, 0, len(rows))
	for _, row := range rows {
		created, err := parseTime(row.CreatedAt)
		if err != nil {
			return nil, &domain.StorageError{Op: "list categories", Err: err}
		}
		out = append(out, domain.Category{ID: row.ID, Name: row.Name, Description: row.Description, CreatedAt: created})
	}
	return out, nil
}
