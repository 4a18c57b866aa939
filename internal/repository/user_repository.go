package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"

	"paysync/internal/domain"
	"paysync/internal/errors"
)

const uniqueViolation = "23505"

// likeEscaper makes user input match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type userRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewUserRepository(db SQLExecutor, logger *slog.Logger) domain.UserRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

func (r *userRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (name, email, phoneno, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query, user.Name, user.Email, user.PhoneNo, now).Scan(&user.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			r.logger.Warn("Duplicate user creation attempt", "email", user.Email)
			return errors.ErrDuplicateUser
		}
		r.logger.Error("Failed to create user", "email", user.Email, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to create user").WithDetails(err.Error())
	}

	user.CreatedAt = now
	r.logger.Info("User created successfully", "user_id", user.ID)
	return nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, name, email, phoneno, created_at
		FROM users WHERE email = $1
	`

	var user domain.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PhoneNo,
		&user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get user", "email", email, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to get user").WithDetails(err.Error())
	}

	return &user, nil
}

func (r *userRepository) ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	query := `
		SELECT id, name, email, phoneno, created_at
		FROM users
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' ESCAPE '\')
		  AND ($2 = '' OR phoneno ILIKE '%' || $2 || '%' ESCAPE '\')
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, likeEscaper.Replace(filter.Name), likeEscaper.Replace(filter.PhoneNo))
	if err != nil {
		r.logger.Error("Failed to list users", "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to list users").WithDetails(err.Error())
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.PhoneNo, &user.CreatedAt); err != nil {
			r.logger.Error("Failed to scan user", "error", err)
			return nil, errors.NewAppError(errors.InternalError, "failed to list users").WithDetails(err.Error())
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to list users").WithDetails(err.Error())
	}

	return users, nil
}
