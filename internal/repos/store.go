package repos

import "github.com/jmoiron/sqlx"

// Store bundles the repos sharing one open database handle.
type Store struct {
	DB         *sqlx.DB
	Categories *CategoryRepo
	Products   *ProductRepo
	Customers  *CustomerRepo
	Orders     *OrderRepo
	Sales      *SalesRepo
	Imports    *ImportRepo
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		DB:         db,
		Categories: NewCategoryRepo(db),
		Products:   NewProductRepo(db),
		Customers:  NewCustomerRepo(db),
		Orders:     NewOrderRepo(db),
		Sales:      NewSalesRepo(db),
		Imports:    NewImportRepo(db),
	}
}

// Close releases the database handle.
func (s *Store) Close() error { return s.DB.Close() }
