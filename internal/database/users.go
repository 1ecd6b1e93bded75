package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tradejournal/trade-journal-service/internal/models"
)

// CreateUser inserts a new user
func (db *DB) CreateUser(u *models.User) error {
	query := `
		INSERT INTO users (email, hashed_password, full_name, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	now := time.Now()
	err := db.conn.QueryRow(query, u.Email, u.HashedPassword, nullString(u.FullName), now).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	u.CreatedAt = now
	return nil
}

// GetUserByEmail retrieves a user by email address
func (db *DB) GetUserByEmail(email string) (*models.User, error) {
	query := `
		SELECT id, email, hashed_password, full_name, created_at
		FROM users
		WHERE email = $1
	`
	return scanUser(db.conn.QueryRow(query, email))
}

// GetUserByID retrieves a user by id
func (db *DB) GetUserByID(id int) (*models.User, error) {
	query := `
		SELECT id, email, hashed_password, full_name, created_at
		FROM users
		WHERE id = $1
	`
	return scanUser(db.conn.QueryRow(query, id))
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var fullName sql.NullString

	err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &fullName, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if fullName.Valid {
		u.FullName = fullName.String
	}
	return &u, nil
}
