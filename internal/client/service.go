package client

import (
	"context"
	"errors"
	"fmt"

	"fuelcards/internal/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrNotFound           = errors.New("client not found")
)

// Store is the record-store surface the service needs.
type Store interface {
	ListClients(ctx context.Context) ([]Client, error)
	CreateClient(ctx context.Context, cl Client) (Client, error)
	UpdateClient(ctx context.Context, cl Client) error
	DeleteClient(ctx context.Context, id int) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Authenticate matches login and password against the client registry.
// The returned client has the password stripped.
func (s *Service) Authenticate(ctx context.Context, login, password string) (Client, error) {
	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return Client{}, fmt.Errorf("list clients: %w", err)
	}
	for _, cl := range clients {
		if cl.Login != login {
			continue
		}
		if !auth.CheckPassword(cl.Password, password) {
			return Client{}, ErrInvalidCredentials
		}
		cl.Password = ""
		return cl, nil
	}
	return Client{}, ErrInvalidCredentials
}

func (s *Service) GetByID(ctx context.Context, id int) (Client, error) {
	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return Client{}, err
	}
	for _, cl := range clients {
		if cl.ID == id {
			cl.Password = ""
			return cl, nil
		}
	}
	return Client{}, ErrNotFound
}

func (s *Service) List(ctx context.Context) ([]Client, error) {
	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		clients[i].Password = ""
	}
	return clients, nil
}

// Create registers a new client. The password is bcrypt-hashed before it
// reaches the record store.
func (s *Service) Create(ctx context.Context, cl Client) (Client, error) {
	if cl.Password != "" {
		hashed, err := auth.HashPassword(cl.Password)
		if err != nil {
			return Client{}, fmt.Errorf("hash password: %w", err)
		}
		cl.Password = hashed
	}
	created, err := s.store.CreateClient(ctx, cl)
	if err != nil {
		return Client{}, err
	}
	created.Password = ""
	return created, nil
}

// Update modifies a client record. An empty password leaves the stored one
// untouched; a non-empty one is re-hashed.
func (s *Service) Update(ctx context.Context, cl Client) error {
	if cl.Password != "" {
		hashed, err := auth.HashPassword(cl.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		cl.Password = hashed
	}
	return s.store.UpdateClient(ctx, cl)
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.store.DeleteClient(ctx, id)
}
