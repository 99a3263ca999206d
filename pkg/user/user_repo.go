package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repo interface {
	CreateUser(ctx context.Context, newUser NewUser, passwordHash string) (int, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, string, error)
	GetAllUsers(ctx context.Context) ([]User, error)
	IsEmailAvailable(ctx context.Context, email string) (bool, error)
}

type UserRepoImpl struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepoImpl {
	return &UserRepoImpl{db: db}
}

func (u *UserRepoImpl) CreateUser(ctx context.Context, newUser NewUser, passwordHash string) (int, error) {
	query := `INSERT INTO users (email, password_hash, name, position, dept) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var id int
	err := u.db.QueryRow(ctx, query,
		newUser.Email,
		passwordHash,
		newUser.Name,
		newUser.Position,
		newUser.Dept,
	).Scan(&id)
	if err != nil {
		log.Errorf("failed to create user: %v", err)
		return 0, err
	}
	return id, nil
}

func (u *UserRepoImpl) GetUser(ctx context.Context, id int) (User, error) {
	query := `SELECT id, email, name, position, dept, img_url, created_time FROM users WHERE id = $1`
	var user User
	err := u.db.QueryRow(ctx, query, id).
		Scan(
			&user.Id,
			&user.Email,
			&user.Name,
			&user.Position,
			&user.Dept,
			&user.ImgUrl,
			&user.CreatedTime,
		)
	if errors.Is(err, pgx.ErrNoRows) {
		log.Debugf("user with id %d not found", id)
		return User{}, ErrUserNotFound
	} else if err != nil {
		log.Errorf("failed to get user: %v", err)
		return User{}, err
	}
	return user, nil
}

func (u *UserRepoImpl) GetUserByEmail(ctx context.Context, email string) (User, string, error) {
	query := `SELECT id, email, password_hash, name, position, dept, img_url, created_time FROM users WHERE email = $1`
	var user User
	var passwordHash string
	err := u.db.QueryRow(ctx, query, email).
		Scan(
			&user.Id,
			&user.Email,
			&passwordHash,
			&user.Name,
			&user.Position,
			&user.Dept,
			&user.ImgUrl,
			&user.CreatedTime,
		)
	if errors.Is(err, pgx.ErrNoRows) {
		log.Debugf("user with email %s not found", email)
		return User{}, "", ErrUserNotFound
	} else if err != nil {
		log.Errorf("failed to get user by email: %v", err)
		return User{}, "", err
	}
	return user, passwordHash, nil
}

func (u *UserRepoImpl) GetAllUsers(ctx context.Context) ([]User, error) {
	query := `SELECT id, email, name, position, dept, img_url, created_time FROM users ORDER BY id`
	rows, err := u.db.Query(ctx, query)
	if err != nil {
		log.Errorf("failed to get users: %v", err)
		return nil, err
	}
	defer rows.Close()
	users := make([]User, 0, 10)
	for rows.Next() {
		var user User
		err := rows.Scan(&user.Id, &user.Email, &user.Name, &user.Position, &user.Dept, &user.ImgUrl, &user.CreatedTime)
		if err != nil {
			log.Errorf("failed to scan user: %v", err)
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return users, nil
}

func (u *UserRepoImpl) IsEmailAvailable(ctx context.Context, email string) (bool, error) {
	query := `SELECT COUNT(*) FROM users WHERE email = $1`
	var count int
	err := u.db.QueryRow(ctx, query, email).Scan(&count)
	if err != nil {
		log.Errorf("failed to check email availability: %v", err)
		return false, err
	}
	return count == 0, nil
}
