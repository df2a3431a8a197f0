package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"asistencia-backend/internal/platform/db"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
	ErrSelfDelete         = errors.New("cannot delete own account")
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (LoginResult, error)
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (int64, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	ResetPassword(ctx context.Context, id int64, password string) error
	DeleteEmployee(ctx context.Context, id, actorID int64) error
}

type LoginResult struct {
	Token string
	Role  string
	Name  string
}

type CreateEmployeeInput struct {
	Name     string
	Username string
	Password string
	Role     string
}

type Service struct {
	store    AccountStore
	tokens   *TokenIssuer
	inTx     func(ctx context.Context, fn func(store AccountStore) error) error
	hashCost int
	now      func() time.Time
}

func NewService(conn *sql.DB, tokens *TokenIssuer) *Service {
	s := newService(NewStore(conn), tokens)
	s.inTx = func(ctx context.Context, fn func(store AccountStore) error) error {
		return db.RunInTx(ctx, conn, nil, func(ctx context.Context, tx db.DBTX) error {
			return fn(NewStore(tx))
		})
	}
	return s
}

func newService(store AccountStore, tokens *TokenIssuer) *Service {
	return &Service{
		store:  store,
		tokens: tokens,
		inTx: func(ctx context.Context, fn func(store AccountStore) error) error {
			return fn(store)
		},
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	acct, err := s.store.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return LoginResult{}, err
	}
	if acct == nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(*acct)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, Role: acct.Role, Name: acct.Name}, nil
}

func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (int64, error) {
	e, err := s.newEmployee(in)
	if err != nil {
		return 0, err
	}
	return s.store.Create(ctx, e)
}

func (s *Service) ListEmployees(ctx context.Context) ([]Employee, error) {
	return s.store.List(ctx)
}

func (s *Service) ResetPassword(ctx context.Context, id int64, password string) error {
	if id <= 0 || password == "" {
		return ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return err
	}
	n, err := s.store.UpdatePassword(ctx, id, string(hash))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) DeleteEmployee(ctx context.Context, id, actorID int64) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	if id == actorID {
		return ErrSelfDelete
	}
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureAdmin: 初回起動時に管理者アカウントを作る（既にあれば何もしない）
func (s *Service) EnsureAdmin(ctx context.Context, username, password, name string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	created := false
	err := s.inTx(ctx, func(store AccountStore) error {
		exists, err := store.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if exists != nil {
			return nil
		}
		e, err := s.newEmployee(CreateEmployeeInput{Name: name, Username: username, Password: password, Role: RoleAdmin})
		if err != nil {
			return err
		}
		if _, err := store.Create(ctx, e); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if created {
		log.Printf("[INFO] admin account %q created", username)
	}
	return created, nil
}

func (s *Service) newEmployee(in CreateEmployeeInput) (*Employee, error) {
	name := strings.TrimSpace(in.Name)
	username := strings.TrimSpace(in.Username)
	if name == "" || username == "" || in.Password == "" {
		return nil, ErrInvalidInput
	}
	role := in.Role
	if role == "" {
		role = RoleEmployee
	}
	if role != RoleEmployee && role != RoleAdmin {
		return nil, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, err
	}
	return &Employee{
		Name:         name,
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}, nil
}
