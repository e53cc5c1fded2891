package links

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidStatus = errors.New("status must be one of active, paused, archived")

// Store is the persistence the Service needs; *Repository implements it.
type Store interface {
	CodeAvailabilityChecker
	Create(link *PaymentLink) error
	GetByID(id string) (*PaymentLink, error)
	GetByShortCode(shortCode string) (*PaymentLink, error)
	Update(link *PaymentLink) error
	Archive(id string) error
	List(createdBy string, limit, offset int) ([]*PaymentLink, error)
}

type Service struct {
	repo    Store
	builder *Builder
	now     func() time.Time
}

func NewService(repo Store, builder *Builder) *Service {
	if builder == nil {
		builder = defaultBuilder
	}
	return &Service{repo: repo, builder: builder, now: time.Now}
}

// CreateRequest is what a merchant submits to save a payment link.
type CreateRequest struct {
	Title     string        `json:"title"`
	ShortCode string        `json:"short_code"`
	Password  string        `json:"password"`
	Intent    PaymentIntent `json:"intent"`
	CreatedBy string        `json:"-"`
}

func (s *Service) CreateLink(req *CreateRequest) (*PaymentLink, error) {
	if _, err := s.builder.Build(&req.Intent); err != nil {
		return nil, err
	}

	shortCode, err := GenerateShortCode(req.ShortCode, s.repo)
	if err != nil {
		return nil, err
	}

	now := s.now()
	link := &PaymentLink{
		ID:        uuid.New().String(),
		ShortCode: shortCode,
		Title:     req.Title,
		CreatedBy: req.CreatedBy,
		Intent:    req.Intent,
		Status:    StatusActive,
		CreatedAt: now.Unix(),
		UpdatedAt: now.Unix(),
	}
	link.ExpiresAt = expiresAt(now, req.Intent.QRExpireDays)

	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		link.PasswordHash = string(hash)
	}

	if err := s.repo.Create(link); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *Service) GetLink(id string) (*PaymentLink, error) {
	return s.repo.GetByID(id)
}

func (s *Service) GetByShortCode(code string) (*PaymentLink, error) {
	return s.repo.GetByShortCode(code)
}

// UpdateRequest holds the mutable parts of a payment link; nil means unchanged.
type UpdateRequest struct {
	Title  *string        `json:"title"`
	Status *string        `json:"status"`
	Intent *PaymentIntent `json:"intent"`
}

func (s *Service) UpdateLink(id string, updates *UpdateRequest) (*PaymentLink, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if updates.Title != nil {
		existing.Title = *updates.Title
	}
	if updates.Status != nil {
		switch *updates.Status {
		case StatusActive, StatusPaused, StatusArchived:
			existing.Status = *updates.Status
		default:
			return nil, ErrInvalidStatus
		}
	}
	if updates.Intent != nil {
		if _, err := s.builder.Build(updates.Intent); err != nil {
			return nil, err
		}
		existing.Intent = *updates.Intent
		existing.ExpiresAt = expiresAt(s.now(), updates.Intent.QRExpireDays)
	}

	if err := s.repo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) ArchiveLink(id string) error {
	return s.repo.Archive(id)
}

func (s *Service) ListLinks(createdBy string, limit, offset int) ([]*PaymentLink, error) {
	return s.repo.List(createdBy, limit, offset)
}

// BuildURI renders a fresh deep link for a stored intent; timestamps are taken now.
func (s *Service) BuildURI(link *PaymentLink) (string, error) {
	return s.builder.Build(&link.Intent)
}

// CheckPassword reports whether password unlocks the link.
func CheckPassword(link *PaymentLink, password string) bool {
	if !link.Protected() {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(link.PasswordHash), []byte(password)) == nil
}

func expiresAt(now time.Time, days int) *int64 {
	if days <= 0 {
		return nil
	}
	exp := ExpiryTime(now, days).Unix()
	return &exp
}
