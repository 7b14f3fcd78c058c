// Package store is the data-store collaborator the install steps run against.
//
// It exposes tenant and user persistence, a permission grant, and the
// capability to enumerate every resource kind the backend knows about at call
// time so an existing installation can be purged completely. Two backends are
// provided: a gorm/PostgreSQL store for real installs and an in-memory store.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imamik/adapt-install/internal/config"
)

// Resource kinds managed by this package.
const (
	KindTenants         = "tenants"
	KindUsers           = "users"
	KindRoleAssignments = "role_assignments"
)

// RoleSuperAdmin is the full administrative permission scope.
const RoleSuperAdmin = "Super Admin"

// ErrNotFound is returned when a record to delete or update does not exist.
var ErrNotFound = errors.New("record not found")

// DatabaseInfo is the connection descriptor embedded in a tenant.
type DatabaseInfo struct {
	Name string `json:"dbName"`
	Host string `json:"dbHost"`
	Port int    `json:"dbPort"`
	User string `json:"dbUser"`
	Pass string `json:"-"`
}

// Tenant is an organisational unit; the master tenant is the root installation.
type Tenant struct {
	ID          string       `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"uniqueIndex;not null" json:"name"`
	DisplayName string       `json:"displayName"`
	IsMaster    bool         `json:"isMaster"`
	Database    DatabaseInfo `gorm:"embedded;embeddedPrefix:db_" json:"database"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// User is an account bound to a tenant.
type User struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `json:"-"`
	Auth         string    `json:"auth"`
	TenantID     string    `gorm:"index" json:"tenantId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RoleAssignment grants a role to a user.
type RoleAssignment struct {
	ID     string `gorm:"primaryKey" json:"id"`
	UserID string `gorm:"index;not null" json:"userId"`
	Role   string `json:"role"`
}

// Models returns the gorm models to migrate.
func Models() []any {
	return []any{&Tenant{}, &User{}, &RoleAssignment{}}
}

// Store is the full set of operations the install steps consume.
type Store interface {
	// Kinds lists every resource kind the backend currently exposes.
	Kinds(ctx context.Context) ([]string, error)
	// DestroyAll removes every record of kind.
	DestroyAll(ctx context.Context, kind string) error

	FindTenantByName(ctx context.Context, name string) (*Tenant, error)
	CreateTenant(ctx context.Context, t *Tenant) error
	DeleteTenant(ctx context.Context, id string) error

	DeleteUserByEmail(ctx context.Context, email string) error
	CreateUser(ctx context.Context, u *User) error
	DeleteUser(ctx context.Context, id string) error
	GrantRole(ctx context.Context, userID, role string) error

	Ping(ctx context.Context) error
	Close() error
}

// DBConfig holds the database connection settings taken from the install configuration.
type DBConfig struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// DBConfigFromRecord reads the database settings out of a configuration record.
func DBConfigFromRecord(r config.Record) DBConfig {
	return DBConfig{
		Host:     r.String(config.KeyDBHost),
		Port:     r.Int(config.KeyDBPort),
		Name:     r.String(config.KeyDBName),
		User:     r.String(config.KeyDBUser),
		Password: r.String(config.KeyDBPass),
		SSLMode:  "disable",
	}
}

// DSN returns the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s", c.Host, c.Port, c.Name, sslMode)
	if c.User != "" {
		dsn += " user=" + c.User
	}
	if c.Password != "" {
		dsn += " password=" + c.Password
	}
	return dsn
}

// Info converts the settings into the descriptor embedded in a tenant.
func (c DBConfig) Info() DatabaseInfo {
	return DatabaseInfo{
		Name: c.Name,
		Host: c.Host,
		Port: c.Port,
		User: c.User,
		Pass: c.Password,
	}
}
