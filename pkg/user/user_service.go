package user

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const storagePath = "storage/user_photos/"

type Service interface {
	Register(ctx context.Context, newUser NewUser) (User, error)
	Authenticate(ctx context.Context, email, password string) (User, error)
	GetCurrentUser(ctx context.Context) (User, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetAllUsers(ctx context.Context) ([]User, error)
	IsEmailAvailable(ctx context.Context, email string) (bool, error)
	StoreUserPhoto(ctx context.Context, photo []byte) error
	GetUserPhoto(ctx context.Context, id int) ([]byte, error)
	DeleteUserPhoto(ctx context.Context) error
}

type UserServiceImpl struct {
	repo Repo
}

func NewUserService(repo Repo) *UserServiceImpl {
	return &UserServiceImpl{repo: repo}
}

func (u *UserServiceImpl) Register(ctx context.Context, newUser NewUser) (User, error) {
	available, err := u.repo.IsEmailAvailable(ctx, newUser.Email)
	if err != nil {
		return User{}, err
	}
	if !available {
		return User{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newUser.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	userId, err := u.repo.CreateUser(ctx, newUser, string(hash))
	if err != nil {
		return User{}, err
	}
	return u.repo.GetUser(ctx, userId)
}

func (u *UserServiceImpl) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, passwordHash, err := u.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return User{}, ErrInvalidCredentials
	} else if err != nil {
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		log.Debugf("password mismatch for user %d", user.Id)
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (u *UserServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return u.GetUser(ctx, userId)
}

func (u *UserServiceImpl) GetUser(ctx context.Context, id int) (User, error) {
	return u.repo.GetUser(ctx, id)
}

func (u *UserServiceImpl) GetAllUsers(ctx context.Context) ([]User, error) {
	return u.repo.GetAllUsers(ctx)
}

func (u *UserServiceImpl) IsEmailAvailable(ctx context.Context, email string) (bool, error) {
	return u.repo.IsEmailAvailable(ctx, email)
}

func (u *UserServiceImpl) StoreUserPhoto(ctx context.Context, photo []byte) error {
	userId, err := CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	err = os.MkdirAll(storagePath, 0755)
	if err != nil {
		return err
	}
	err = os.WriteFile(storagePath+"/"+strconv.Itoa(userId)+".jpg", photo, 0644)
	if err != nil {
		return err
	}
	return nil
}

func (u *UserServiceImpl) GetUserPhoto(_ context.Context, id int) ([]byte, error) {
	expectedFile := storagePath + "/" + strconv.Itoa(id) + ".jpg"
	if _, err := os.Stat(expectedFile); os.IsNotExist(err) {
		return nil, nil
	}
	return os.ReadFile(expectedFile)
}

func (u *UserServiceImpl) DeleteUserPhoto(ctx context.Context) error {
	userId, err := CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	expectedFile := storagePath + "/" + strconv.Itoa(userId) + ".jpg"
	if _, err := os.Stat(expectedFile); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(expectedFile)
}
