package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/arnavshah/shift-relay-go/pkg/models"
	"github.com/arnavshah/shift-relay-go/pkg/store"
)

// Store is the gorm-backed store.Store, on SQLite or Postgres
type Store struct {
	DB *gorm.DB
}

var _ store.Store = (*Store)(nil)

// InitDB opens the database for driver ("sqlite" or "postgres") and
// migrates the schema.
func InitDB(driver, dsn string) (*Store, error) {
	var (
		db  *gorm.DB
		err error
	)
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	switch driver {
	case "postgres":
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), cfg)
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(&models.Employee{}, &models.ShiftDefinition{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{DB: db}, nil
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	}
	return err
}

func (s *Store) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	var employees []models.Employee
	if err := s.DB.WithContext(ctx).Order("name asc").Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

func (s *Store) GetEmployee(ctx context.Context, name string) (models.Employee, error) {
	var e models.Employee
	name = models.NormalizeName(name)
	if err := s.DB.WithContext(ctx).Where("name = ?", name).First(&e).Error; err != nil {
		return models.Employee{}, notFound(err, "employee "+name)
	}
	return e, nil
}

func (s *Store) CreateEmployee(ctx context.Context, e models.Employee) (models.Employee, error) {
	if err := store.PrepareEmployee(&e); err != nil {
		return models.Employee{}, err
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Employee{}).Where("name = ?", e.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("employee %s: %w", e.Name, store.ErrDuplicate)
		}
		return tx.Create(&e).Error
	})
	if err != nil {
		return models.Employee{}, err
	}
	return e, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, name string, e models.Employee) (models.Employee, error) {
	if err := store.PrepareEmployee(&e); err != nil {
		return models.Employee{}, err
	}
	name = models.NormalizeName(name)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Employee
		if err := tx.Where("name = ?", name).First(&existing).Error; err != nil {
			return notFound(err, "employee "+name)
		}
		if e.Name == name {
			return tx.Save(&e).Error
		}

		var count int64
		if err := tx.Model(&models.Employee{}).Where("name = ?", e.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("employee %s: %w", e.Name, store.ErrDuplicate)
		}
		if err := tx.Where("name = ?", name).Delete(&models.Employee{}).Error; err != nil {
			return err
		}
		return tx.Create(&e).Error
	})
	if err != nil {
		return models.Employee{}, err
	}
	return e, nil
}

func (s *Store) DeleteEmployee(ctx context.Context, name string) error {
	name = models.NormalizeName(name)
	res := s.DB.WithContext(ctx).Where("name = ?", name).Delete(&models.Employee{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("employee %s: %w", name, store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListShifts(ctx context.Context) ([]models.ShiftDefinition, error) {
	var shifts []models.ShiftDefinition
	if err := s.DB.WithContext(ctx).Order("sort_order asc").Order("id asc").Find(&shifts).Error; err != nil {
		return nil, err
	}
	return shifts, nil
}

func (s *Store) GetShift(ctx context.Context, id int) (models.ShiftDefinition, error) {
	var def models.ShiftDefinition
	if err := s.DB.WithContext(ctx).First(&def, id).Error; err != nil {
		return models.ShiftDefinition{}, notFound(err, fmt.Sprintf("shift %d", id))
	}
	return def, nil
}

func (s *Store) CreateShift(ctx context.Context, def models.ShiftDefinition) (models.ShiftDefinition, error) {
	if err := store.PrepareShift(&def); err != nil {
		return models.ShiftDefinition{}, err
	}
	def.ID = 0
	if err := s.DB.WithContext(ctx).Create(&def).Error; err != nil {
		return models.ShiftDefinition{}, err
	}
	return def, nil
}

// CreateShifts inserts the batch in one transaction
func (s *Store) CreateShifts(ctx context.Context, defs []models.ShiftDefinition) ([]models.ShiftDefinition, error) {
	batch := append([]models.ShiftDefinition(nil), defs...)
	if err := store.PrepareShifts(batch); err != nil {
		return nil, err
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range batch {
			batch[i].ID = 0
			if err := tx.Create(&batch[i]).Error; err != nil {
				return fmt.Errorf("definition %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *Store) UpdateShift(ctx context.Context, def models.ShiftDefinition) (models.ShiftDefinition, error) {
	if err := store.PrepareShift(&def); err != nil {
		return models.ShiftDefinition{}, err
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.ShiftDefinition
		if err := tx.First(&existing, def.ID).Error; err != nil {
			return notFound(err, fmt.Sprintf("shift %d", def.ID))
		}
		return tx.Save(&def).Error
	})
	if err != nil {
		return models.ShiftDefinition{}, err
	}
	return def, nil
}

func (s *Store) DeleteShift(ctx context.Context, id int) error {
	res := s.DB.WithContext(ctx).Delete(&models.ShiftDefinition{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("shift %d: %w", id, store.ErrNotFound)
	}
	return nil
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
