package dto

import "time"

// InventoryCategoryRequest creates a warehouse category.
type InventoryCategoryRequest struct {
	DepartmentID string  `json:"department_id"`
	ParentID     *string `json:"parent_id,omitempty"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
}

// MoveCategoryRequest reparents a warehouse category.
type MoveCategoryRequest struct {
	ParentID *string `json:"parent_id"`
}

// InventoryCategoryResponse is a category projection.
type InventoryCategoryResponse struct {
	ID           string  `json:"id"`
	DepartmentID string  `json:"department_id"`
	ParentID     *string `json:"parent_id,omitempty"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	IsActive     bool    `json:"is_active"`
}

// ItemSpecDTO is one key-value attribute on an item.
type ItemSpecDTO struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// InventoryItemRequest registers an asset.
type InventoryItemRequest struct {
	CategoryID   string        `json:"category_id"`
	Name         string        `json:"name"`
	SerialNumber string        `json:"serial_number,omitempty"`
	Status       string        `json:"status,omitempty"`
	AssignedToID *string       `json:"assigned_to_id,omitempty"`
	Note         string        `json:"note,omitempty"`
	Specs        []ItemSpecDTO `json:"specs,omitempty"`
}

// AssignItemRequest hands an item to a user.
type AssignItemRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// InventoryItemResponse is an item projection.
type InventoryItemResponse struct {
	ID           string        `json:"id"`
	CategoryID   string        `json:"category_id"`
	Name         string        `json:"name"`
	SerialNumber string        `json:"serial_number,omitempty"`
	Status       string        `json:"status"`
	AssignedToID *string       `json:"assigned_to_id,omitempty"`
	Note         string        `json:"note,omitempty"`
	Specs        []ItemSpecDTO `json:"specs,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}
