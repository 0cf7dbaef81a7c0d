package service

import (
	"context"
	"strings"

	"github.com/pticket/helpdesk/internal/domain"
	"github.com/pticket/helpdesk/internal/policy"
	"github.com/pticket/helpdesk/internal/repository"
	apperrors "github.com/pticket/helpdesk/pkg/util/errorutil"
)

// InventoryService manages department warehouses: the category tree, items
// and their specs.
type InventoryService struct {
	inventory   repository.InventoryRepository
	departments repository.DepartmentRepository
	users       repository.UserRepository
}

// InventoryDependencies bundles repositories for the inventory service.
type InventoryDependencies struct {
	InventoryRepo  repository.InventoryRepository
	DepartmentRepo repository.DepartmentRepository
	UserRepo       repository.UserRepository
}

// NewInventoryService constructs the service.
func NewInventoryService(deps InventoryDependencies) *InventoryService {
	return &InventoryService{
		inventory:   deps.InventoryRepo,
		departments: deps.DepartmentRepo,
		users:       deps.UserRepo,
	}
}

// CategoryInput describes a category create or update.
type CategoryInput struct {
	DepartmentID string
	ParentID     *string
	Name         string
	Description  string
}

// CreateCategory adds a node to the warehouse category tree.
func (s *InventoryService) CreateCategory(ctx context.Context, user *domain.User, input CategoryInput) (*domain.InventoryCategory, error) {
	dept, err := s.guard(ctx, user, input.DepartmentID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("category name is required", nil)
	}
	if input.ParentID != nil {
		parent, err := s.inventory.GetCategory(ctx, *input.ParentID)
		if err != nil {
			return nil, apperrors.ToDomainError(err)
		}
		if parent.DepartmentID != dept.ID {
			return nil, apperrors.NewValidationError("parent belongs to another department", nil)
		}
	}

	cat := &domain.InventoryCategory{
		DepartmentID: dept.ID,
		ParentID:     input.ParentID,
		Name:         name,
		Description:  strings.TrimSpace(input.Description),
		IsActive:     true,
	}
	if err := s.inventory.CreateCategory(ctx, cat); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return cat, nil
}

// MoveCategory reparents a category. The walk up from the new parent guards
// against cycles.
func (s *InventoryService) MoveCategory(ctx context.Context, user *domain.User, categoryID string, newParentID *string) (*domain.InventoryCategory, error) {
	cat, err := s.inventory.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if _, err := s.guard(ctx, user, cat.DepartmentID); err != nil {
		return nil, err
	}

	if newParentID != nil {
		if *newParentID == cat.ID {
			return nil, apperrors.NewValidationError("category cannot be its own parent", nil)
		}
		cursor := *newParentID
		for {
			parent, err := s.inventory.GetCategory(ctx, cursor)
			if err != nil {
				return nil, apperrors.ToDomainError(err)
			}
			if parent.DepartmentID != cat.DepartmentID {
				return nil, apperrors.NewValidationError("parent belongs to another department", nil)
			}
			if parent.ID == cat.ID {
				return nil, apperrors.NewValidationError("move would create a cycle", nil)
			}
			if parent.ParentID == nil {
				break
			}
			cursor = *parent.ParentID
		}
	}

	cat.ParentID = newParentID
	if err := s.inventory.UpdateCategory(ctx, cat); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return cat, nil
}

// ListCategories returns the category tree of a department warehouse.
func (s *InventoryService) ListCategories(ctx context.Context, user *domain.User, departmentID string) ([]domain.InventoryCategory, error) {
	if _, err := s.guard(ctx, user, departmentID); err != nil {
		return nil, err
	}
	cats, err := s.inventory.ListCategories(ctx, departmentID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return cats, nil
}

// ItemInput describes an item create or update.
type ItemInput struct {
	CategoryID   string
	Name         string
	SerialNumber string
	Status       domain.ItemStatus
	AssignedToID *string
	Note         string
	Specs        []domain.ItemSpec
}

// CreateItem registers an asset under a warehouse category.
func (s *InventoryService) CreateItem(ctx context.Context, user *domain.User, input ItemInput) (*domain.InventoryItem, error) {
	cat, err := s.inventory.GetCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if _, err := s.guard(ctx, user, cat.DepartmentID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("item name is required", nil)
	}
	if input.Status == "" {
		input.Status = domain.ItemStatusInStock
	}
	if input.Status == domain.ItemStatusAssigned && input.AssignedToID == nil {
		return nil, apperrors.NewValidationError("assigned item needs an assignee", nil)
	}

	item := &domain.InventoryItem{
		CategoryID:   cat.ID,
		Name:         name,
		SerialNumber: strings.TrimSpace(input.SerialNumber),
		Status:       input.Status,
		AssignedToID: input.AssignedToID,
		Note:         strings.TrimSpace(input.Note),
	}
	if err := s.inventory.CreateItem(ctx, item); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if len(input.Specs) > 0 {
		if err := s.inventory.ReplaceSpecs(ctx, item.ID, input.Specs); err != nil {
			return nil, apperrors.ToDomainError(err)
		}
	}
	return item, nil
}

// AssignItem hands an in-stock item to a user.
func (s *InventoryService) AssignItem(ctx context.Context, user *domain.User, itemID, assigneeID string) (*domain.InventoryItem, error) {
	item, err := s.inventory.GetItem(ctx, itemID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	cat, err := s.inventory.GetCategory(ctx, item.CategoryID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if _, err := s.guard(ctx, user, cat.DepartmentID); err != nil {
		return nil, err
	}
	if item.Status != domain.ItemStatusInStock {
		return nil, apperrors.NewConflict("item is not in stock")
	}
	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if !assignee.IsActive {
		return nil, apperrors.NewValidationError("assignee is inactive", nil)
	}

	item.Status = domain.ItemStatusAssigned
	item.AssignedToID = &assignee.ID
	if err := s.inventory.UpdateItem(ctx, item); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return item, nil
}

// ReturnItem takes an assigned item back into stock.
func (s *InventoryService) ReturnItem(ctx context.Context, user *domain.User, itemID string) (*domain.InventoryItem, error) {
	item, err := s.inventory.GetItem(ctx, itemID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	cat, err := s.inventory.GetCategory(ctx, item.CategoryID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if _, err := s.guard(ctx, user, cat.DepartmentID); err != nil {
		return nil, err
	}
	if item.Status != domain.ItemStatusAssigned {
		return nil, apperrors.NewConflict("item is not assigned")
	}

	item.Status = domain.ItemStatusInStock
	item.AssignedToID = nil
	if err := s.inventory.UpdateItem(ctx, item); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return item, nil
}

// ItemWithSpecs pairs an item with its key-value attributes.
type ItemWithSpecs struct {
	Item  domain.InventoryItem
	Specs []domain.ItemSpec
}

// GetItem returns one item with its specs.
func (s *InventoryService) GetItem(ctx context.Context, user *domain.User, itemID string) (*ItemWithSpecs, error) {
	item, err := s.inventory.GetItem(ctx, itemID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	cat, err := s.inventory.GetCategory(ctx, item.CategoryID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if _, err := s.guard(ctx, user, cat.DepartmentID); err != nil {
		return nil, err
	}
	specs, err := s.inventory.ListSpecs(ctx, itemID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return &ItemWithSpecs{Item: *item, Specs: specs}, nil
}

// ListItems returns the items under a category.
func (s *InventoryService) ListItems(ctx context.Context, user *domain.User, categoryID string) ([]domain.InventoryItem, error) {
	cat, err := s.inventory.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if _, err := s.guard(ctx, user, cat.DepartmentID); err != nil {
		return nil, err
	}
	items, err := s.inventory.ListItems(ctx, categoryID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return items, nil
}

// guard loads the department and checks warehouse management rights.
func (s *InventoryService) guard(ctx context.Context, user *domain.User, departmentID string) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, departmentID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if !policy.CanManageInventory(user, dept) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return dept, nil
}
