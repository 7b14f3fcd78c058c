package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// GormStore persists records in PostgreSQL through gorm.
type GormStore struct {
	db *gorm.DB
}

// Open connects to PostgreSQL and migrates the install models.
func Open(ctx context.Context, cfg DBConfig) (*GormStore, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %s on %s:%d: %w", cfg.Name, cfg.Host, cfg.Port, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	s := NewGormStore(db)
	if err := s.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

// NewGormStore wraps an existing gorm handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the tables of the install models.
func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	return nil
}

// Kinds lists the tables present in the database right now, so tables added
// by the application after this binary was built are included.
func (s *GormStore) Kinds(ctx context.Context) ([]string, error) {
	tables, err := s.db.WithContext(ctx).Migrator().GetTables()
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}

// DestroyAll deletes every row of the given table.
func (s *GormStore) DestroyAll(ctx context.Context, kind string) error {
	if err := s.db.WithContext(ctx).Exec("DELETE FROM ?", clause.Table{Name: kind}).Error; err != nil {
		return fmt.Errorf("failed to destroy %s: %w", kind, err)
	}
	return nil
}

// FindTenantByName returns the tenant with the given name, or nil when none exists.
func (s *GormStore) FindTenantByName(ctx context.Context, name string) (*Tenant, error) {
	var t Tenant
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up tenant %s: %w", name, err)
	}
	return &t, nil
}

// CreateTenant inserts t, assigning an id when it has none.
func (s *GormStore) CreateTenant(ctx context.Context, t *Tenant) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to create tenant %s: %w", t.Name, err)
	}
	return nil
}

// DeleteTenant removes the tenant with the given id.
func (s *GormStore) DeleteTenant(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&Tenant{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete tenant %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("tenant %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteUserByEmail removes any user with the given email. Absence is not an error.
func (s *GormStore) DeleteUserByEmail(ctx context.Context, email string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&User{}).Where("email = ?", email).Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("failed to look up user %s: %w", email, err)
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("user_id IN ?", ids).Delete(&RoleAssignment{}).Error; err != nil {
			return fmt.Errorf("failed to delete roles of %s: %w", email, err)
		}
		if err := tx.Where("id IN ?", ids).Delete(&User{}).Error; err != nil {
			return fmt.Errorf("failed to delete user %s: %w", email, err)
		}
		return nil
	})
}

// CreateUser inserts u, assigning an id when it has none.
func (s *GormStore) CreateUser(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// DeleteUser removes the user with the given id and its role assignments.
func (s *GormStore) DeleteUser(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&RoleAssignment{}).Error; err != nil {
			return fmt.Errorf("failed to delete roles of user %s: %w", id, err)
		}
		res := tx.Delete(&User{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete user %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

// GrantRole assigns role to the user.
func (s *GormStore) GrantRole(ctx context.Context, userID, role string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up user %s: %w", userID, err)
	}
	if count == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	assignment := &RoleAssignment{ID: uuid.NewString(), UserID: userID, Role: role}
	if err := s.db.WithContext(ctx).Create(assignment).Error; err != nil {
		return fmt.Errorf("failed to grant %s to user %s: %w", role, userID, err)
	}
	return nil
}

// Ping checks the database connection.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the database connection.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
