package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	drv "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/pashudrishti/pashu-sahayak/internal/domain/users"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *users.User) error {
	if u.ID == "" {
		u.ID = users.UserID(uuid.New().String())
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	const q = `INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?,?,?,?,?);`
	_, err := r.db.ExecContext(ctx, q, u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt)
	var me *drv.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return users.ErrEmailTaken
	}
	return err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	const q = `SELECT id, name, email, password_hash, created_at FROM users WHERE email=? LIMIT 1;`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

func (r *UserRepository) FindByID(ctx context.Context, id users.UserID) (*users.User, error) {
	const q = `SELECT id, name, email, password_hash, created_at FROM users WHERE id=? LIMIT 1;`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

func scanUser(row *sql.Row) (*users.User, error) {
	var u users.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, users.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
