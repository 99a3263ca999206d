package test_utils

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateTestUser inserts a user row directly and returns its id. Repository
// tests need real user rows to satisfy the membership joins.
func CreateTestUser(ctx context.Context, db *pgxpool.Pool, email string, name string) (int, error) {
	var id int
	err := db.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, name, position, dept) VALUES ($1, 'x', $2, 'Engineer', 'Platform') RETURNING id`,
		email, name,
	).Scan(&id)
	return id, err
}
