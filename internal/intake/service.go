package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/VelocityMotors/VelocityMotors/internal/catalog"
	"github.com/VelocityMotors/VelocityMotors/internal/common/apperr"
	"github.com/google/uuid"
)

// carGetter 目录读接口（只需要存在性判断）。
type carGetter interface {
	GetCar(ctx context.Context, id string) (*catalog.Car, error)
}

// Service 封装留资/咨询的写路径。与订单/支付完全解耦。
type Service struct {
	repo    *Repo
	catalog carGetter
}

func NewService(repo *Repo, catalog carGetter) *Service {
	return &Service{repo: repo, catalog: catalog}
}

// ContactInput 联系表单入参。
type ContactInput struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// Validate 必填项校验。
func (in ContactInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("name required: %w", apperr.ErrValidation)
	}
	if strings.TrimSpace(in.Email) == "" {
		return fmt.Errorf("email required: %w", apperr.ErrValidation)
	}
	return nil
}

func (s *Service) SubmitContact(ctx context.Context, in ContactInput) (*Contact, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	c := &Contact{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Message: strings.TrimSpace(in.Message),
	}
	if err := s.repo.CreateContact(ctx, c); err != nil {
		return nil, fmt.Errorf("create contact: %w: %v", apperr.ErrStorage, err)
	}
	return c, nil
}

// InquiryInput 咨询/试驾预约入参。
type InquiryInput struct {
	CarID       string
	Kind        InquiryKind
	Name        string
	Email       string
	Phone       string
	Message     string
	PreferredAt *time.Time
}

// Validate 必填项与类型校验。试驾预约要求期望时间。
func (in InquiryInput) Validate() error {
	if strings.TrimSpace(in.CarID) == "" {
		return fmt.Errorf("car_id required: %w", apperr.ErrValidation)
	}
	switch in.Kind {
	case "", KindGeneral:
	case KindTestDrive:
		if in.PreferredAt == nil {
			return fmt.Errorf("preferred_at required for test drive: %w", apperr.ErrValidation)
		}
	default:
		return fmt.Errorf("unknown inquiry kind %q: %w", in.Kind, apperr.ErrValidation)
	}
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("name required: %w", apperr.ErrValidation)
	}
	return nil
}

func (s *Service) SubmitInquiry(ctx context.Context, in InquiryInput) (*Inquiry, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	// 咨询必须指向真实在售车辆
	if s.catalog != nil {
		if _, err := s.catalog.GetCar(ctx, strings.TrimSpace(in.CarID)); err != nil {
			return nil, err
		}
	}

	kind := in.Kind
	if kind == "" {
		kind = KindGeneral
	}

	q := &Inquiry{
		ID:          uuid.NewString(),
		CarID:       strings.TrimSpace(in.CarID),
		Kind:        kind,
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.TrimSpace(in.Email),
		Phone:       strings.TrimSpace(in.Phone),
		Message:     strings.TrimSpace(in.Message),
		PreferredAt: in.PreferredAt,
	}
	if err := s.repo.CreateInquiry(ctx, q); err != nil {
		return nil, fmt.Errorf("create inquiry: %w: %v", apperr.ErrStorage, err)
	}
	return q, nil
}

func (s *Service) ListContacts(ctx context.Context, offset, limit int) ([]Contact, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	contacts, total, err := s.repo.ListContacts(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list contacts: %w: %v", apperr.ErrStorage, err)
	}
	return contacts, total, nil
}

func (s *Service) ListInquiries(ctx context.Context, kind InquiryKind, offset, limit int) ([]Inquiry, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	inquiries, total, err := s.repo.ListInquiries(ctx, kind, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list inquiries: %w: %v", apperr.ErrStorage, err)
	}
	return inquiries, total, nil
}
