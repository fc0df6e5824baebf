package services

import (
	"context"
	"strings"
	"time"
)

// RevenueService loads the payment records of a scope and summarizes them on
// every call. Nothing is cached.
type RevenueService struct {
	payments *PaymentService
	now      func() time.Time
}

func NewRevenueService(payments *PaymentService) *RevenueService {
	return &RevenueService{payments: payments, now: func() time.Time { return time.Now().UTC() }}
}

func (s *RevenueService) Platform(ctx context.Context, actor Actor) (*RevenueSummary, error) {
	if !actor.IsAdmin() {
		return nil, &AuthorizationError{Action: "view platform revenue"}
	}
	records, err := s.payments.list(ctx, PaymentFilter{})
	if err != nil {
		return nil, err
	}
	sum := Summarize(records, s.now())
	return &sum, nil
}

// ForTutor summarizes payments received by tutorEmail. Tutors may only read
// their own; an empty email means the caller.
func (s *RevenueService) ForTutor(ctx context.Context, actor Actor, tutorEmail string) (*RevenueSummary, error) {
	if tutorEmail == "" {
		tutorEmail = actor.Email
	}
	if !actor.IsAdmin() && !(actor.IsTutor() && strings.EqualFold(tutorEmail, actor.Email)) {
		return nil, &AuthorizationError{Action: "view tutor revenue"}
	}
	records, err := s.payments.list(ctx, PaymentFilter{PayeeEmail: tutorEmail})
	if err != nil {
		return nil, err
	}
	sum := Summarize(records, s.now())
	return &sum, nil
}
