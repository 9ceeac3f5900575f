package service

import (
	"context"
	"errors"
	"strings"

	"task_manager/internal/domain"
	"task_manager/internal/logger"
	"task_manager/internal/repository"

	"github.com/google/uuid"
)

// ImageRemover deletes a previously stored business image by file name.
type ImageRemover interface {
	Remove(name string) error
}

type BusinessService struct {
	businesses repository.BusinessRepo
	auth       *AuthService
	images     ImageRemover
	audit      *AuditService
}

func NewBusinessService(businesses repository.BusinessRepo, auth *AuthService, images ImageRemover, audit *AuditService) *BusinessService {
	return &BusinessService{businesses: businesses, auth: auth, images: images, audit: audit}
}

var errInvalidBusinessStatus = domain.Validation("Invalid status. Valid statuses are: pending, approved, rejected.")

// Create stores a listing owned by ownerID. Listings by admins start approved,
// all others pending review.
func (s *BusinessService) Create(ctx context.Context, in domain.BusinessInput, ownerID string) (*domain.Business, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := requireFields(
		field{"name", has(in.Name)},
		field{"employeeCount", in.EmployeeCount > 0},
		field{"phoneNumber", has(in.PhoneNumber)},
		field{"email", in.Email != ""},
		field{"country", has(in.Country)},
		field{"city", has(in.City)},
	); err != nil {
		return nil, err
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, in.Email, ""); err != nil {
		return nil, err
	}

	owner, err := s.auth.GetUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	status := domain.BusinessPending
	if owner.IsAdmin() {
		status = domain.BusinessApproved
	}

	b := &domain.Business{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(in.Name),
		EmployeeCount: in.EmployeeCount,
		PhoneNumber:   strings.TrimSpace(in.PhoneNumber),
		Email:         in.Email,
		Country:       strings.TrimSpace(in.Country),
		City:          strings.TrimSpace(in.City),
		OwnerFullName: owner.Name,
		Description:   in.Description,
		UserID:        owner.ID,
		Status:        status,
	}
	if in.Image != "" {
		img := in.Image
		b.Image = &img
	}

	if err := s.businesses.Create(ctx, b); err != nil {
		return nil, storeErr("create business", err, nil, domain.ErrBusinessEmailTaken)
	}

	s.audit.Log(ctx, owner.ID, domain.AuditActionBusinessCreate, domain.AuditCategoryBusiness, map[string]interface{}{
		"business_id": b.ID,
		"status":      string(b.Status),
	})
	return b, nil
}

func (s *BusinessService) Get(ctx context.Context, id string) (*domain.Business, error) {
	b, err := s.businesses.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get business", err, domain.ErrBusinessNotFound, nil)
	}
	return b, nil
}

// ListApproved is the public catalogue.
func (s *BusinessService) ListApproved(ctx context.Context) ([]*domain.Business, error) {
	return s.ListAll(ctx, domain.BusinessApproved)
}

// ListAll lists every listing, optionally narrowed to one status.
func (s *BusinessService) ListAll(ctx context.Context, status domain.BusinessStatus) ([]*domain.Business, error) {
	if status != "" && !status.Valid() {
		return nil, errInvalidBusinessStatus
	}
	bs, err := s.businesses.List(ctx, status)
	if err != nil {
		return nil, storeErr("list businesses", err, nil, nil)
	}
	return nonNilBusinesses(bs), nil
}

func (s *BusinessService) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Business, error) {
	bs, err := s.businesses.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeErr("list user businesses", err, nil, nil)
	}
	return nonNilBusinesses(bs), nil
}

// Update merges non-empty patch fields into the listing. A new image
// replaces the old file.
func (s *BusinessService) Update(ctx context.Context, id, requesterID string, patch domain.BusinessPatch) (*domain.Business, error) {
	b, err := s.guarded(ctx, id, requesterID, domain.ActionUpdate)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil && has(*patch.Email) {
		email := strings.TrimSpace(*patch.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		if err := s.ensureEmailFree(ctx, email, b.ID); err != nil {
			return nil, err
		}
		b.Email = email
	}
	mergeString(&b.Name, patch.Name)
	mergeString(&b.PhoneNumber, patch.PhoneNumber)
	mergeString(&b.Country, patch.Country)
	mergeString(&b.City, patch.City)
	mergeString(&b.Description, patch.Description)
	if patch.EmployeeCount != nil && *patch.EmployeeCount > 0 {
		b.EmployeeCount = *patch.EmployeeCount
	}

	var oldImage string
	if patch.Image != nil && *patch.Image != "" {
		if b.Image != nil {
			oldImage = *b.Image
		}
		img := *patch.Image
		b.Image = &img
	}

	if err := s.businesses.Update(ctx, b); err != nil {
		return nil, storeErr("update business", err, domain.ErrBusinessNotFound, domain.ErrBusinessEmailTaken)
	}
	if oldImage != "" && oldImage != *b.Image {
		s.removeImage(ctx, oldImage)
	}
	return b, nil
}

// Delete removes the listing and its image file.
func (s *BusinessService) Delete(ctx context.Context, id, requesterID string) error {
	b, err := s.guarded(ctx, id, requesterID, domain.ActionDelete)
	if err != nil {
		return err
	}

	if err := s.businesses.Delete(ctx, b.ID); err != nil {
		return storeErr("delete business", err, domain.ErrBusinessNotFound, nil)
	}
	if b.Image != nil {
		s.removeImage(ctx, *b.Image)
	}

	s.audit.Log(ctx, requesterID, domain.AuditActionBusinessDelete, domain.AuditCategoryBusiness, map[string]interface{}{
		"business_id": b.ID,
		"owner_id":    b.UserID,
	})
	return nil
}

// ChangeStatus moves a listing through review. Callers gate it to admins.
func (s *BusinessService) ChangeStatus(ctx context.Context, id string, status domain.BusinessStatus, adminID string) (*domain.Business, error) {
	if !status.Valid() {
		return nil, errInvalidBusinessStatus
	}
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.businesses.UpdateStatus(ctx, b.ID, status); err != nil {
		return nil, storeErr("update business status", err, domain.ErrBusinessNotFound, nil)
	}
	b.Status = status

	s.audit.LogAdminAction(ctx, adminID, domain.AuditActionBusinessStatus, b.UserID, map[string]interface{}{
		"business_id": b.ID,
		"status":      string(status),
	})
	return b, nil
}

func (s *BusinessService) guarded(ctx context.Context, id, requesterID string, action domain.Action) (*domain.Business, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	isAdmin, err := s.auth.IsAdmin(ctx, requesterID)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if err := AssertCanMutate(b.UserID, requesterID, isAdmin, action, "business"); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BusinessService) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.businesses.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != selfID:
		return domain.ErrBusinessEmailTaken
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return storeErr("get business by email", err, nil, nil)
	}
	return nil
}

func (s *BusinessService) removeImage(ctx context.Context, name string) {
	if s.images == nil {
		return
	}
	if err := s.images.Remove(name); err != nil {
		logger.WithContext(ctx).Warn("failed to remove business image", "image", name, "error", err)
	}
}

func mergeString(dst *string, v *string) {
	if v != nil && has(*v) {
		*dst = strings.TrimSpace(*v)
	}
}

func nonNilBusinesses(bs []*domain.Business) []*domain.Business {
	if bs == nil {
		return []*domain.Business{}
	}
	return bs
}
