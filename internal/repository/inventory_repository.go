package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pticket/helpdesk/internal/domain"
)

// InventoryRepository encapsulates warehouse persistence: the category tree,
// items and their key-value specs.
type InventoryRepository interface {
	CreateCategory(ctx context.Context, cat *domain.InventoryCategory) error
	UpdateCategory(ctx context.Context, cat *domain.InventoryCategory) error
	GetCategory(ctx context.Context, id string) (*domain.InventoryCategory, error)
	ListCategories(ctx context.Context, departmentID string) ([]domain.InventoryCategory, error)

	CreateItem(ctx context.Context, item *domain.InventoryItem) error
	UpdateItem(ctx context.Context, item *domain.InventoryItem) error
	GetItem(ctx context.Context, id string) (*domain.InventoryItem, error)
	ListItems(ctx context.Context, categoryID string) ([]domain.InventoryItem, error)
	ListItemsByAssignee(ctx context.Context, userID string) ([]domain.InventoryItem, error)

	ReplaceSpecs(ctx context.Context, itemID string, specs []domain.ItemSpec) error
	ListSpecs(ctx context.Context, itemID string) ([]domain.ItemSpec, error)
}

type inventoryRepository struct {
	pool *pgxpool.Pool
}

// NewInventoryRepository instantiates repository.
func NewInventoryRepository(pool *pgxpool.Pool) InventoryRepository {
	return &inventoryRepository{pool: pool}
}

const inventoryCategoryColumns = `id, department_id, parent_id, name, description, is_active, created_at, updated_at`

func (r *inventoryRepository) CreateCategory(ctx context.Context, cat *domain.InventoryCategory) error {
	const query = `
        INSERT INTO inventory_categories (department_id, parent_id, name, description, is_active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		cat.DepartmentID,
		cat.ParentID,
		cat.Name,
		cat.Description,
		cat.IsActive,
	).Scan(&cat.ID, &cat.CreatedAt, &cat.UpdatedAt)
}

func (r *inventoryRepository) UpdateCategory(ctx context.Context, cat *domain.InventoryCategory) error {
	const query = `
        UPDATE inventory_categories SET parent_id=$1, name=$2, description=$3, is_active=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query, cat.ParentID, cat.Name, cat.Description, cat.IsActive, cat.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *inventoryRepository) GetCategory(ctx context.Context, id string) (*domain.InventoryCategory, error) {
	var cat domain.InventoryCategory
	if err := r.pool.QueryRow(ctx,
		`SELECT `+inventoryCategoryColumns+` FROM inventory_categories WHERE id=$1`, id,
	).Scan(
		&cat.ID,
		&cat.DepartmentID,
		&cat.ParentID,
		&cat.Name,
		&cat.Description,
		&cat.IsActive,
		&cat.CreatedAt,
		&cat.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *inventoryRepository) ListCategories(ctx context.Context, departmentID string) ([]domain.InventoryCategory, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+inventoryCategoryColumns+` FROM inventory_categories WHERE department_id=$1 ORDER BY name`,
		departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.InventoryCategory
	for rows.Next() {
		var cat domain.InventoryCategory
		if err := rows.Scan(
			&cat.ID,
			&cat.DepartmentID,
			&cat.ParentID,
			&cat.Name,
			&cat.Description,
			&cat.IsActive,
			&cat.CreatedAt,
			&cat.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, cat)
	}
	return result, rows.Err()
}

const inventoryItemColumns = `id, category_id, name, serial_number, status, assigned_to_id, note, created_at, updated_at`

func (r *inventoryRepository) CreateItem(ctx context.Context, item *domain.InventoryItem) error {
	const query = `
        INSERT INTO inventory_items (category_id, name, serial_number, status, assigned_to_id, note)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		item.CategoryID,
		item.Name,
		item.SerialNumber,
		item.Status,
		item.AssignedToID,
		item.Note,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

func (r *inventoryRepository) UpdateItem(ctx context.Context, item *domain.InventoryItem) error {
	const query = `
        UPDATE inventory_items SET category_id=$1, name=$2, serial_number=$3, status=$4,
            assigned_to_id=$5, note=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		item.CategoryID,
		item.Name,
		item.SerialNumber,
		item.Status,
		item.AssignedToID,
		item.Note,
		item.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *inventoryRepository) GetItem(ctx context.Context, id string) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	if err := r.pool.QueryRow(ctx,
		`SELECT `+inventoryItemColumns+` FROM inventory_items WHERE id=$1`, id,
	).Scan(itemScanDest(&item)...); err != nil {
		return nil, err
	}
	return &item, nil
}

func itemScanDest(item *domain.InventoryItem) []any {
	return []any{
		&item.ID,
		&item.CategoryID,
		&item.Name,
		&item.SerialNumber,
		&item.Status,
		&item.AssignedToID,
		&item.Note,
		&item.CreatedAt,
		&item.UpdatedAt,
	}
}

func (r *inventoryRepository) ListItems(ctx context.Context, categoryID string) ([]domain.InventoryItem, error) {
	return r.listItems(ctx,
		`SELECT `+inventoryItemColumns+` FROM inventory_items WHERE category_id=$1 ORDER BY name`,
		categoryID)
}

func (r *inventoryRepository) ListItemsByAssignee(ctx context.Context, userID string) ([]domain.InventoryItem, error) {
	return r.listItems(ctx,
		`SELECT `+inventoryItemColumns+` FROM inventory_items WHERE assigned_to_id=$1 ORDER BY name`,
		userID)
}

func (r *inventoryRepository) listItems(ctx context.Context, query string, arg any) ([]domain.InventoryItem, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.InventoryItem
	for rows.Next() {
		var item domain.InventoryItem
		if err := rows.Scan(itemScanDest(&item)...); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *inventoryRepository) ReplaceSpecs(ctx context.Context, itemID string, specs []domain.ItemSpec) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM item_specs WHERE item_id=$1`, itemID); err != nil {
		return err
	}
	for i := range specs {
		if err := tx.QueryRow(ctx,
			`INSERT INTO item_specs (item_id, key, value) VALUES ($1,$2,$3) RETURNING id, created_at`,
			itemID, specs[i].Key, specs[i].Value,
		).Scan(&specs[i].ID, &specs[i].CreatedAt); err != nil {
			return err
		}
		specs[i].ItemID = itemID
	}
	return tx.Commit(ctx)
}

func (r *inventoryRepository) ListSpecs(ctx context.Context, itemID string) ([]domain.ItemSpec, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, item_id, key, value, created_at FROM item_specs WHERE item_id=$1 ORDER BY key`,
		itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ItemSpec
	for rows.Next() {
		var spec domain.ItemSpec
		if err := rows.Scan(&spec.ID, &spec.ItemID, &spec.Key, &spec.Value, &spec.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, spec)
	}
	return result, rows.Err()
}
