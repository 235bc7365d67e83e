package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"authhub/internal/models"

	"github.com/jackc/pgx/v5"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id string) (*models.Tenant, error)
	Update(ctx context.Context, tenant *models.Tenant) error
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
}

type tenantRepo struct {
	db Database
}

func NewTenantRepository(db Database) TenantRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	config, err := marshalConfig(tenant.Config)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO tenants (id, name, logo, primary_color, secondary_color, config, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`
	return r.db.QueryRow(ctx, query,
		tenant.ID, tenant.Name, tenant.Logo, tenant.PrimaryColor, tenant.SecondaryColor, config,
	).Scan(&tenant.CreatedAt)
}

func (r *tenantRepo) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	var config []byte
	query := `
		SELECT id, name, logo, primary_color, secondary_color, config, created_at
		FROM tenants
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&tenant.ID, &tenant.Name, &tenant.Logo, &tenant.PrimaryColor, &tenant.SecondaryColor, &config, &tenant.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if tenant.Config, err = unmarshalConfig(config); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (r *tenantRepo) Update(ctx context.Context, tenant *models.Tenant) error {
	config, err := marshalConfig(tenant.Config)
	if err != nil {
		return err
	}
	// The id is a natural key and immutable; only branding and config move.
	query := `
		UPDATE tenants
		SET name = $1, logo = $2, primary_color = $3, secondary_color = $4, config = $5
		WHERE id = $6
	`
	_, err = r.db.Exec(ctx, query,
		tenant.Name, tenant.Logo, tenant.PrimaryColor, tenant.SecondaryColor, config, tenant.ID,
	)
	return err
}

func (r *tenantRepo) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	query := `
		SELECT id, name, logo, primary_color, secondary_color, config, created_at
		FROM tenants
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		tenant := &models.Tenant{}
		var config []byte
		if err := rows.Scan(&tenant.ID, &tenant.Name, &tenant.Logo, &tenant.PrimaryColor, &tenant.SecondaryColor, &config, &tenant.CreatedAt); err != nil {
			return nil, err
		}
		if tenant.Config, err = unmarshalConfig(config); err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}

func marshalConfig(config *models.TenantConfig) ([]byte, error) {
	if config == nil {
		return nil, nil
	}
	data, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("marshal tenant config: %w", err)
	}
	return data, nil
}

func unmarshalConfig(data []byte) (*models.TenantConfig, error) {
	if len(data) == 0 {
		return nil, nil
	}
	config := &models.TenantConfig{}
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("unmarshal tenant config: %w", err)
	}
	return config, nil
}
