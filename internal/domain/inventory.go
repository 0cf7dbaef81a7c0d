package domain

import "time"

// InventoryCategory is a node in the warehouse category tree. ParentID forms
// the hierarchy; the service layer rejects cycles.
type InventoryCategory struct {
	ID           string
	DepartmentID string
	ParentID     *string
	Name         string
	Description  string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ItemStatus enumerates where a warehouse item currently is.
type ItemStatus string

const (
	ItemStatusInStock  ItemStatus = "in_stock"
	ItemStatusAssigned ItemStatus = "assigned"
	ItemStatusRepair   ItemStatus = "repair"
	ItemStatusRetired  ItemStatus = "retired"
)

// InventoryItem is a physical asset tracked in a department warehouse.
type InventoryItem struct {
	ID           string
	CategoryID   string
	Name         string
	SerialNumber string
	Status       ItemStatus
	AssignedToID *string
	Note         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ItemSpec is a free-form key-value attribute on an item, for example
// "RAM" = "16GB".
type ItemSpec struct {
	ID        string
	ItemID    string
	Key       string
	Value     string
	CreatedAt time.Time
}
