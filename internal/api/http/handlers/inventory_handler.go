package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pticket/helpdesk/internal/api/dto"
	"github.com/pticket/helpdesk/internal/auth"
	"github.com/pticket/helpdesk/internal/domain"
	"github.com/pticket/helpdesk/internal/service"
	apperrors "github.com/pticket/helpdesk/pkg/util/errorutil"
)

// InventoryHandler serves warehouse endpoints.
type InventoryHandler struct {
	service *service.InventoryService
}

// NewInventoryHandler constructs handler.
func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: inventoryService}
}

// CreateCategory POST /inventory/categories.
func (h *InventoryHandler) CreateCategory(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	var req dto.InventoryCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	cat, err := h.service.CreateCategory(c.Context(), user, service.CategoryInput{
		DepartmentID: req.DepartmentID,
		ParentID:     req.ParentID,
		Name:         req.Name,
		Description:  req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": inventoryCategoryResponse(cat)})
}

// MoveCategory PATCH /inventory/categories/:id/parent.
func (h *InventoryHandler) MoveCategory(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	var req dto.MoveCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	cat, err := h.service.MoveCategory(c.Context(), user, c.Params("id"), req.ParentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": inventoryCategoryResponse(cat)})
}

// ListCategories GET /inventory/departments/:id/categories.
func (h *InventoryHandler) ListCategories(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	cats, err := h.service.ListCategories(c.Context(), user, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.InventoryCategoryResponse, 0, len(cats))
	for i := range cats {
		items = append(items, inventoryCategoryResponse(&cats[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateItem POST /inventory/items.
func (h *InventoryHandler) CreateItem(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	var req dto.InventoryItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	specs := make([]domain.ItemSpec, 0, len(req.Specs))
	for _, spec := range req.Specs {
		specs = append(specs, domain.ItemSpec{Key: spec.Key, Value: spec.Value})
	}
	item, err := h.service.CreateItem(c.Context(), user, service.ItemInput{
		CategoryID:   req.CategoryID,
		Name:         req.Name,
		SerialNumber: req.SerialNumber,
		Status:       domain.ItemStatus(req.Status),
		AssignedToID: req.AssignedToID,
		Note:         req.Note,
		Specs:        specs,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": inventoryItemResponse(item, specs)})
}

// Get GET /inventory/items/:id.
func (h *InventoryHandler) Get(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	result, err := h.service.GetItem(c.Context(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": inventoryItemResponse(&result.Item, result.Specs)})
}

// ListItems GET /inventory/categories/:id/items.
func (h *InventoryHandler) ListItems(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	items, err := h.service.ListItems(c.Context(), user, c.Params("id"))
	if err != nil {
		return err
	}
	resp := make([]dto.InventoryItemResponse, 0, len(items))
	for i := range items {
		resp = append(resp, inventoryItemResponse(&items[i], nil))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Assign POST /inventory/items/:id/assign.
func (h *InventoryHandler) Assign(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	var req dto.AssignItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AssigneeID == "" {
		return apperrors.NewValidationError("assignee_id required", nil)
	}
	item, err := h.service.AssignItem(c.Context(), user, c.Params("id"), req.AssigneeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": inventoryItemResponse(item, nil)})
}

// Return POST /inventory/items/:id/return.
func (h *InventoryHandler) Return(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	item, err := h.service.ReturnItem(c.Context(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": inventoryItemResponse(item, nil)})
}

func inventoryCategoryResponse(cat *domain.InventoryCategory) dto.InventoryCategoryResponse {
	return dto.InventoryCategoryResponse{
		ID:           cat.ID,
		DepartmentID: cat.DepartmentID,
		ParentID:     cat.ParentID,
		Name:         cat.Name,
		Description:  cat.Description,
		IsActive:     cat.IsActive,
	}
}

func inventoryItemResponse(item *domain.InventoryItem, specs []domain.ItemSpec) dto.InventoryItemResponse {
	specDTOs := make([]dto.ItemSpecDTO, 0, len(specs))
	for _, spec := range specs {
		specDTOs = append(specDTOs, dto.ItemSpecDTO{Key: spec.Key, Value: spec.Value})
	}
	return dto.InventoryItemResponse{
		ID:           item.ID,
		CategoryID:   item.CategoryID,
		Name:         item.Name,
		SerialNumber: item.SerialNumber,
		Status:       string(item.Status),
		AssignedToID: item.AssignedToID,
		Note:         item.Note,
		Specs:        specDTOs,
		CreatedAt:    item.CreatedAt,
	}
}
