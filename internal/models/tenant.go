package models

import "time"

// Tenant is a branding/configuration scope. The ID is a natural key chosen
// at provisioning time (e.g. "acme-corp") and is immutable afterwards.
type Tenant struct {
	ID             string        `json:"id" db:"id"`
	Name           string        `json:"name" db:"name"`
	Logo           *string       `json:"logo" db:"logo"`
	PrimaryColor   string        `json:"primary_color" db:"primary_color"`
	SecondaryColor string        `json:"secondary_color" db:"secondary_color"`
	Config         *TenantConfig `json:"config" db:"config"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
}

// TenantConfig is the jsonb configuration blob attached to a tenant.
type TenantConfig struct {
	WelcomeMessage string   `json:"welcomeMessage,omitempty"`
	SSOProviders   []string `json:"ssoProviders,omitempty"`
	MFARequired    bool     `json:"mfaRequired,omitempty"`
}
