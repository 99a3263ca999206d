package user

import (
	"context"
	"time"
)

type StubUserRepository struct {
	nextId int
	data   map[int]User
	hashes map[int]string
}

func NewStubUserRepository() *StubUserRepository {
	return &StubUserRepository{
		data:   map[int]User{},
		hashes: map[int]string{},
	}
}

// AddUser seeds a user directly, bypassing registration. Returns the assigned id.
func (s *StubUserRepository) AddUser(user User) int {
	s.nextId++
	user.Id = s.nextId
	s.data[s.nextId] = user
	return s.nextId
}

func (s *StubUserRepository) CreateUser(ctx context.Context, newUser NewUser, passwordHash string) (int, error) {
	s.nextId++
	s.data[s.nextId] = User{
		Id:          s.nextId,
		Email:       newUser.Email,
		Name:        newUser.Name,
		Position:    newUser.Position,
		Dept:        newUser.Dept,
		CreatedTime: time.Now(),
	}
	s.hashes[s.nextId] = passwordHash
	return s.nextId, nil
}

func (s *StubUserRepository) GetUser(ctx context.Context, id int) (User, error) {
	user, ok := s.data[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (s *StubUserRepository) GetUserByEmail(ctx context.Context, email string) (User, string, error) {
	for id, user := range s.data {
		if user.Email == email {
			return user, s.hashes[id], nil
		}
	}
	return User{}, "", ErrUserNotFound
}

func (s *StubUserRepository) GetAllUsers(ctx context.Context) ([]User, error) {
	var users []User
	for _, user := range s.data {
		users = append(users, user)
	}
	return users, nil
}

func (s *StubUserRepository) IsEmailAvailable(ctx context.Context, email string) (bool, error) {
	for _, user := range s.data {
		if user.Email == email {
			return false, nil
		}
	}
	return true, nil
}
