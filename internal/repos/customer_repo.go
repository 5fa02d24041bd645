package repos

import (
	"github.com/jmoiron/sqlx"

	"shoplytics/internal/domain"
)

type CustomerRepo struct{ db *sqlx.DB }

func NewCustomerRepo(db *sqlx.DB) *CustomerRepo { return &CustomerRepo{db: db} }

// Create inserts a customer and returns its store-assigned id.
// Email uniqueness is not enforced.
func (r *CustomerRepo) Create(c domain.Customer) (int64, error) {
	res, err := r.db.Exec(`
	  INSERT INTO customers(email, first_name, last_name, phone)
	  VALUES (?, ?, ?, ?)
	`, c.Email, nullString(c.FirstName), nullString(c.LastName), nullString(c.Phone))
	if err != nil {
		return 0, &domain.StorageError{Op: "insert customer " + c.Email, Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &domain.StorageError{Op: "insert customer " + c.Email, Err: err}
	}
	return id, nil
}

func (r *CustomerRepo) Count() (int, error) {
	var n int
	if err := r.db.Get(&n, `SELECT COUNT(*) FROM customers`); err != nil {
		return 0, &domain.StorageError{Op: "count customers", Err: err}
	}
	return n, nil
}
