package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"trxflow/models"
	"trxflow/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type RegisterUserInput struct {
	Name     string
	Email    string
	Password string
	Role     models.UserRole
}

type UserService struct {
	repo     repository.UserRepository
	ids      *UserIDService
	hashCost int
	log      *zap.Logger
}

func NewUserService(repo repository.UserRepository, ids *UserIDService, hashCost int, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	if hashCost < bcrypt.MinCost || hashCost > bcrypt.MaxCost {
		hashCost = bcrypt.DefaultCost
	}
	return &UserService{repo: repo, ids: ids, hashCost: hashCost, log: log}
}

// Register creates a user with the next id of its role. Name and email must
// both be unused.
func (s *UserService) Register(ctx context.Context, in RegisterUserInput) (*models.User, error) {
	if !in.Role.Valid() {
		return nil, validationError("invalid role; allowed values: OPERADOR, APROBADOR")
	}
	email := strings.TrimSpace(in.Email)
	name := strings.TrimSpace(in.Name)

	exists, err := s.repo.ExistsByEmailOrName(ctx, email, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, duplicateError("a user with this email or name already exists")
	}

	userID, err := s.ids.Next(ctx, in.Role)
	if err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		UserID:   userID,
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     in.Role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, duplicateError("a user with this email, name or id already exists")
		}
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.UserID), zap.String("role", string(user.Role)))
	return user, nil
}

// Authenticate checks an email/password pair. Users without a role are
// refused even with the right password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.Role.Valid() {
		return nil, permissionError("user has no role assigned; contact an administrator")
	}
	return user, nil
}

// ByEmail loads the user a verified token points at.
func (s *UserService) ByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.FindByEmail(ctx, email)
}

// RecordLogin stores where a login came from. Failures are logged and do not
// fail the login.
func (s *UserService) RecordLogin(ctx context.Context, user *models.User, ip, device string) {
	entry := &models.LoginTracking{
		UserID:    user.UserID,
		IPAddress: ip,
		Device:    device,
		Timestamp: time.Now().UTC(),
	}
	if err := s.repo.RecordLogin(ctx, entry); err != nil {
		s.log.Warn("failed to record login", zap.String("user_id", user.UserID), zap.Error(err))
		return
	}
	s.log.Info("user logged in", zap.String("user_id", user.UserID), zap.String("ip", ip))
}

// RecentLogins lists the latest logins of a user.
func (s *UserService) RecentLogins(ctx context.Context, user *models.User, limit int) ([]models.LoginTracking, error) {
	return s.repo.LoginsFor(ctx, user.UserID, limit)
}
