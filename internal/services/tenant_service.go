package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"authhub/internal/caching"
	"authhub/internal/models"
	"authhub/internal/repositories"

	"github.com/google/uuid"
)

const (
	tenantCacheTTL = 15 * time.Minute
	logoURLExpiry  = 1 * time.Hour

	// logoURLCacheTTL stays below logoURLExpiry so a cached URL is always
	// discarded before its signature lapses.
	logoURLCacheTTL = 45 * time.Minute
)

// TenantUpdate is a partial branding change; zero-valued fields are left
// untouched.
type TenantUpdate struct {
	Name           string
	PrimaryColor   string
	SecondaryColor string
	Config         *models.TenantConfig
}

// TenantService serves the read-mostly tenant configuration with a redis
// cache in front of the repository, and manages tenant logo assets.
type TenantService interface {
	GetTenant(ctx context.Context, tenantID string) (*models.Tenant, error)
	CreateTenant(ctx context.Context, tenant *models.Tenant) error
	UpdateTenant(ctx context.Context, tenantID string, update TenantUpdate) (*models.Tenant, error)
	ListTenants(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
	UploadLogo(ctx context.Context, tenantID string, reader io.Reader, size int64, contentType string) (*models.Tenant, error)
	WarmCache(ctx context.Context) error
}

type tenantService struct {
	tenants repositories.TenantRepository
	cache   caching.CacheService
	assets  AssetService
}

// NewTenantService builds the service. cache and assets may be nil; the
// service degrades to repository-only lookups and opaque logo values.
func NewTenantService(tenants repositories.TenantRepository, cache caching.CacheService, assets AssetService) TenantService {
	return &tenantService{tenants: tenants, cache: cache, assets: assets}
}

func (s *tenantService) GetTenant(ctx context.Context, tenantID string) (*models.Tenant, error) {
	if s.cache != nil {
		cached, err := s.cache.GetTenant(ctx, tenantID)
		if err != nil {
			log.Printf("authhub: tenant cache read failed: %v", err)
		} else if cached != nil {
			return s.resolveLogo(ctx, cached), nil
		}
	}

	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("lookup tenant: %w", err)
	}
	if tenant == nil {
		return nil, nil
	}

	if s.cache != nil {
		if err := s.cache.SetTenant(ctx, tenant, tenantCacheTTL); err != nil {
			log.Printf("authhub: tenant cache write failed: %v", err)
		}
	}
	return s.resolveLogo(ctx, tenant), nil
}

func (s *tenantService) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	return s.tenants.Create(ctx, tenant)
}

// UpdateTenant applies update to the stored row and returns the refreshed
// tenant, nil when the tenant does not exist. The row is read straight
// from the repository, not through GetTenant: a resolved tenant carries a
// presigned logo URL in place of the stored object key, and writing that
// back would destroy the key.
func (s *tenantService) UpdateTenant(ctx context.Context, tenantID string, update TenantUpdate) (*models.Tenant, error) {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("lookup tenant: %w", err)
	}
	if tenant == nil {
		return nil, nil
	}

	if update.Name != "" {
		tenant.Name = update.Name
	}
	if update.PrimaryColor != "" {
		tenant.PrimaryColor = update.PrimaryColor
	}
	if update.SecondaryColor != "" {
		tenant.SecondaryColor = update.SecondaryColor
	}
	if update.Config != nil {
		tenant.Config = update.Config
	}

	if err := s.tenants.Update(ctx, tenant); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID)
	return s.resolveLogo(ctx, tenant), nil
}

func (s *tenantService) ListTenants(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	return s.tenants.List(ctx, limit, offset)
}

// UploadLogo stores the image under an opaque object key and records the
// key on the tenant row. The key is translated to a presigned URL on read.
func (s *tenantService) UploadLogo(ctx context.Context, tenantID string, reader io.Reader, size int64, contentType string) (*models.Tenant, error) {
	if s.assets == nil {
		return nil, fmt.Errorf("asset storage is not configured")
	}
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("lookup tenant: %w", err)
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}

	objectName := fmt.Sprintf("%s/%s", tenantID, uuid.NewString())
	if err := s.assets.UploadLogo(ctx, objectName, reader, size, contentType); err != nil {
		return nil, fmt.Errorf("upload logo: %w", err)
	}

	key := "object:" + objectName
	tenant.Logo = &key
	if err := s.tenants.Update(ctx, tenant); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID)
	return s.resolveLogo(ctx, tenant), nil
}

// WarmCache refreshes the cached copy of every tenant; run periodically by
// the background scheduler.
func (s *tenantService) WarmCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	tenants, err := s.tenants.List(ctx, 1000, 0)
	if err != nil {
		return err
	}
	for _, tenant := range tenants {
		if err := s.cache.SetTenant(ctx, tenant, tenantCacheTTL); err != nil {
			return err
		}
	}
	return nil
}

func (s *tenantService) invalidate(ctx context.Context, tenantID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteTenant(ctx, tenantID); err != nil {
		log.Printf("authhub: tenant cache invalidation failed: %v", err)
	}
}

// resolveLogo swaps a stored object key for a presigned URL. External URLs
// pass through untouched.
func (s *tenantService) resolveLogo(ctx context.Context, tenant *models.Tenant) *models.Tenant {
	if s.assets == nil || tenant.Logo == nil {
		return tenant
	}
	objectName, ok := strings.CutPrefix(*tenant.Logo, "object:")
	if !ok {
		return tenant
	}
	url, err := s.logoURL(ctx, objectName)
	if err != nil {
		log.Printf("authhub: presign logo url failed for tenant %s: %v", tenant.ID, err)
		return tenant
	}
	resolved := *tenant
	resolved.Logo = &url
	return &resolved
}

// logoURL presigns the logo object, caching the URL for most of its
// signed lifetime so repeated branding fetches skip the signing round
// trip.
func (s *tenantService) logoURL(ctx context.Context, objectName string) (string, error) {
	key := "tenant-logo-url:" + objectName
	if s.cache != nil {
		url, err := s.cache.GetString(ctx, key)
		if err != nil {
			log.Printf("authhub: logo url cache read failed: %v", err)
		} else if url != "" {
			return url, nil
		}
	}

	url, err := s.assets.LogoURL(ctx, objectName, logoURLExpiry)
	if err != nil {
		return "", err
	}
	if s.cache != nil {
		if err := s.cache.SetString(ctx, key, url, logoURLCacheTTL); err != nil {
			log.Printf("authhub: logo url cache write failed: %v", err)
		}
	}
	return url, nil
}
