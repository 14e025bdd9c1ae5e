package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rentalneeds/leadflow-backend/pkg/database"
	"github.com/rentalneeds/leadflow-backend/pkg/errors"
)

// Status is the position of a lead in the sales pipeline.
type Status string

const (
	StatusNewLead           Status = "New Lead"
	StatusContacted         Status = "Contacted"
	StatusDocumentsVerified Status = "Documents Verified"
	StatusApproved          Status = "Approved"
	StatusRejected          Status = "Rejected"
	StatusOnHold            Status = "On Hold"
)

// Statuses lists every status in pipeline order.
var Statuses = []Status{
	StatusNewLead, StatusContacted, StatusDocumentsVerified,
	StatusApproved, StatusRejected, StatusOnHold,
}

// Valid reports whether s is one of the six pipeline statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// StatusList renders the statuses for validation messages.
func StatusList() string {
	names := make([]string, len(Statuses))
	for i, s := range Statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// Customer is a lead submitted through the document wizard
type Customer struct {
	ID                string    `db:"id" json:"id"`
	FirstName         string    `db:"first_name" json:"first_name"`
	LastName          string    `db:"last_name" json:"last_name"`
	DateOfBirth       string    `db:"date_of_birth" json:"date_of_birth"`
	IDNumber          string    `db:"id_number" json:"id_number"`
	IDType            string    `db:"id_type" json:"id_type"`
	IDImageURL        *string   `db:"id_image_url" json:"id_image_url"`
	BankStatementURL  *string   `db:"bank_statement_url" json:"bank_statement_url"`
	Status            Status    `db:"status" json:"status"`
	TrustScore        *int      `db:"trust_score" json:"trust_score"`
	TrustScoreDetails *string   `db:"trust_score_details" json:"trust_score_details"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// FullName returns "first last"
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// ListParams filters customer lists
type ListParams struct {
	Status *Status
}

const customerColumns = `id, first_name, last_name, date_of_birth, id_number, id_type,
	id_image_url, bank_statement_url, status, trust_score, trust_score_details,
	created_at, updated_at`

// CustomerRepository persists customers in PostgreSQL
type CustomerRepository struct {
	db *database.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *database.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Create inserts a customer, assigning ID, default status and timestamps
func (r *CustomerRepository) Create(ctx context.Context, c *Customer) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = StatusNewLead
	}

	query := `
		INSERT INTO customers (id, first_name, last_name, date_of_birth, id_number, id_type,
			id_image_url, bank_statement_url, status, trust_score, trust_score_details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		c.ID, c.FirstName, c.LastName, c.DateOfBirth, c.IDNumber, c.IDType,
		c.IDImageURL, c.BankStatementURL, c.Status, c.TrustScore, c.TrustScoreDetails,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return mapError(err, "create customer")
	}
	return nil
}

// List returns customers newest first
func (r *CustomerRepository) List(ctx context.Context, params ListParams) ([]*Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers`
	var args []interface{}
	if params.Status != nil {
		query += ` WHERE status = $1`
		args = append(args, *params.Status)
	}
	query += ` ORDER BY created_at DESC`

	customers := []*Customer{}
	if err := r.db.SelectContext(ctx, &customers, query, args...); err != nil {
		return nil, mapError(err, "list customers")
	}
	return customers, nil
}

// CountByStatus returns the number of customers per status.
// Statuses without customers are reported as zero.
func (r *CustomerRepository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	var rows []struct {
		Status Status `db:"status"`
		Count  int    `db:"count"`
	}
	query := `SELECT status, COUNT(*) AS count FROM customers GROUP BY status`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, mapError(err, "count customers")
	}

	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// GetByID returns a customer or a NotFound error
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*Customer, error) {
	var c Customer
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		return nil, mapError(err, "get customer")
	}
	return &c, nil
}

// UpdateStatus sets a new status and returns the updated customer with its previous status
func (r *CustomerRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Customer, Status, error) {
	var (
		updated Customer
		old     Status
	)
	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &old, `SELECT status FROM customers WHERE id = $1 FOR UPDATE`, id); err != nil {
			return err
		}
		query := `UPDATE customers SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + customerColumns
		return tx.GetContext(ctx, &updated, query, id, status)
	})
	if err != nil {
		return nil, "", mapError(err, "update customer status")
	}
	return &updated, old, nil
}

// UpdateScore stores a trust score and its explanation
func (r *CustomerRepository) UpdateScore(ctx context.Context, id string, score int, details string) (*Customer, error) {
	var c Customer
	query := `
		UPDATE customers SET trust_score = $2, trust_score_details = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + customerColumns
	if err := r.db.GetContext(ctx, &c, query, id, score, details); err != nil {
		return nil, mapError(err, "update customer score")
	}
	return &c, nil
}

// Delete hard-deletes a customer
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "delete customer")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if rows == 0 {
		return errors.NotFound("customer")
	}
	return nil
}

func mapError(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errors.NotFound("customer")
	}
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	return fmt.Errorf("%s: %w", op, err)
}
