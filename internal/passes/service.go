package passes

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/buspass/bus_pass/internal/notification"
	"github.com/buspass/bus_pass/internal/validation"
)

// Service implements pass issuance, renewal and removal for a holder.
type Service struct {
	repo     Repository
	notifier notification.Notifier
	now      func() time.Time
}

// NewService builds a pass service. notifier may be nil.
func NewService(repo Repository, notifier notification.Notifier) *Service {
	return &Service{repo: repo, notifier: notifier, now: time.Now}
}

// Create validates an application and issues an active pass owned by userID.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Pass, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return Pass{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	dob, err := parseDOB(in.DOB)
	if err != nil {
		return Pass{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	issued := s.now().UTC()
	expiry := ExpiryFrom(issued, in.PassType)
	pass := Pass{
		ID:         uuid.New().String(),
		UserID:     userID,
		Name:       in.Name,
		DOB:        dob,
		Gender:     in.Gender,
		Address:    in.Address,
		Email:      in.Email,
		Phone:      in.Phone,
		IDType:     in.IDType,
		IDNumber:   in.IDNumber,
		PassType:   in.PassType,
		IssueDate:  issued,
		ExpiryDate: &expiry,
		PhotoURL:   in.PhotoURL,
		Status:     StatusActive,
		CreatedAt:  issued,
		UpdatedAt:  issued,
	}
	if err := s.repo.Create(ctx, pass); err != nil {
		return Pass{}, err
	}

	s.notify(ctx, notification.KindPassIssued, pass,
		fmt.Sprintf("%s pass issued, valid until %s", pass.PassType, expiry.Format(time.DateOnly)))
	return pass, nil
}

// List returns the holder's passes newest first, with lapsed passes reported as expired.
func (s *Service) List(ctx context.Context, userID string) ([]Pass, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range list {
		list[i].Status = list[i].EffectiveStatus(now)
	}
	return list, nil
}

// Get returns one of the holder's passes.
func (s *Service) Get(ctx context.Context, userID, id string) (Pass, error) {
	p, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return Pass{}, err
	}
	p.Status = p.EffectiveStatus(s.now())
	return p, nil
}

// Renew extends the pass expiry by one period of in.ExtendBy (Monthly when
// empty), counting from the current expiry, and reactivates it.
func (s *Service) Renew(ctx context.Context, userID, id string, in RenewInput) (Pass, error) {
	in.ExtendBy = choiceOr(in.ExtendBy, TypeMonthly, passTypes)
	if err := validation.Struct(in); err != nil {
		return Pass{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	p, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return Pass{}, err
	}

	now := s.now().UTC()
	base := now
	if p.ExpiryDate != nil {
		base = *p.ExpiryDate
	}
	expiry := ExpiryFrom(base, in.ExtendBy)
	p.ExpiryDate = &expiry
	p.Status = StatusActive
	p.UpdatedAt = now
	if err := s.repo.UpdateExpiry(ctx, p); err != nil {
		return Pass{}, err
	}

	s.notify(ctx, notification.KindPassRenewed, p,
		fmt.Sprintf("pass renewed until %s", expiry.Format(time.DateOnly)))
	p.Status = p.EffectiveStatus(now)
	return p, nil
}

// Delete removes one of the holder's passes.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	p, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.notify(ctx, notification.KindPassDeleted, p, "pass deleted")
	return nil
}

func (s *Service) notify(ctx context.Context, kind string, p Pass, body string) {
	if s.notifier == nil {
		return
	}
	_ = s.notifier.Send(ctx, notification.Message{
		Kind:        kind,
		Destination: p.Email,
		PassID:      p.ID,
		Body:        body,
	})
}
