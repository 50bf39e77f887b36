package services

import (
	"context"
	"fmt"
	"regexp"

	"trxflow/repository"
)

const (
	ReferencePrefix = "TRX"
	ReferenceDigits = 3
)

var (
	referenceNumber = regexp.MustCompile(regexp.QuoteMeta(ReferencePrefix) + `-(\d+)`)
	referenceShape  = regexp.MustCompile(fmt.Sprintf(`^%s-\d{%d}$`, regexp.QuoteMeta(ReferencePrefix), ReferenceDigits))
)

// ReferenceService generates consecutive transaction references (TRX-001,
// TRX-002, ...) from the most recently created TRX reference.
type ReferenceService struct {
	repo repository.TransactionRepository
}

var _ SequenceGenerator = (*ReferenceService)(nil)

func NewReferenceService(repo repository.TransactionRepository) *ReferenceService {
	return &ReferenceService{repo: repo}
}

// Next returns the reference the next auto-referenced transaction should use.
// A latest reference that does not parse falls back to count+1.
func (s *ReferenceService) Next(ctx context.Context) (string, error) {
	prefix := ReferencePrefix + "-"

	latest, err := s.repo.LatestByReferencePrefix(ctx, prefix)
	if err != nil {
		return "", err
	}

	next := 1
	if latest != nil {
		if n, ok := parseSequence(referenceNumber, latest.Reference); ok {
			next = n + 1
		} else {
			count, err := s.repo.CountByReferencePrefix(ctx, prefix)
			if err != nil {
				return "", err
			}
			next = int(count) + 1
		}
	}

	return formatSequence(prefix, next, ReferenceDigits), nil
}

// Peek returns the latest generated reference, or "" when none exists yet.
func (s *ReferenceService) Peek(ctx context.Context) (string, error) {
	latest, err := s.repo.LatestByReferencePrefix(ctx, ReferencePrefix+"-")
	if err != nil || latest == nil {
		return "", err
	}
	return latest.Reference, nil
}

// ValidateReferenceFormat reports whether reference looks like TRX-NNN.
func ValidateReferenceFormat(reference string) bool {
	return referenceShape.MatchString(reference)
}
