package services

import (
	"context"
	"regexp"

	"trxflow/models"
	"trxflow/repository"
)

const UserIDDigits = 3

var userIDPrefixes = map[models.UserRole]string{
	models.RoleOperador:  "op-",
	models.RoleAprobador: "ap-",
}

// UserIDService assigns per-role user ids (op-001, ap-001, ...). Unlike
// references, the next id is the maximum over every existing id of the role
// plus one, so manually inserted ids leave gaps behind them.
type UserIDService struct {
	repo repository.UserRepository
}

func NewUserIDService(repo repository.UserRepository) *UserIDService {
	return &UserIDService{repo: repo}
}

// UserIDPrefix returns the id prefix of role.
func UserIDPrefix(role models.UserRole) (string, error) {
	prefix, ok := userIDPrefixes[role]
	if !ok {
		return "", validationError("invalid role " + string(role))
	}
	return prefix, nil
}

func (s *UserIDService) Next(ctx context.Context, role models.UserRole) (string, error) {
	prefix, err := UserIDPrefix(role)
	if err != nil {
		return "", err
	}

	ids, err := s.repo.UserIDsWithPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}

	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + `(\d+)`)
	highest, found := 0, false
	for _, id := range ids {
		if n, ok := parseSequence(pattern, id); ok && (!found || n > highest) {
			highest, found = n, true
		}
	}

	if !found {
		return formatSequence(prefix, 1, UserIDDigits), nil
	}
	return formatSequence(prefix, highest+1, UserIDDigits), nil
}

// Sequence binds the generator to one role.
func (s *UserIDService) Sequence(role models.UserRole) SequenceGenerator {
	return roleSequence{svc: s, role: role}
}

type roleSequence struct {
	svc  *UserIDService
	role models.UserRole
}

func (r roleSequence) Next(ctx context.Context) (string, error) {
	return r.svc.Next(ctx, r.role)
}
