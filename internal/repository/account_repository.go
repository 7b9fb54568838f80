package repository

import (
	"context"
	"errors"
	"fmt"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	apperrors "coursehub/internal/errors"
	"coursehub/internal/model"
)

// mysqlDuplicateEntry is the server error number for a unique-key violation.
const mysqlDuplicateEntry = 1062

// AccountRepository defines account persistence operations. Every call is
// scoped to one role's table.
type AccountRepository interface {
	Create(ctx context.Context, role model.Role, account *model.Account) error
	FindByUsername(ctx context.Context, role model.Role, username string) (*model.Account, error)
	FindByID(ctx context.Context, role model.Role, id uint) (*model.Account, error)
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) table(ctx context.Context, role model.Role) (*gorm.DB, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	return r.db.WithContext(ctx).Table(role.Table()), nil
}

// Create inserts account into the role's table. Uniqueness is left to the
// table's unique index; a violation becomes ErrDuplicateAccount.
func (r *accountRepository) Create(ctx context.Context, role model.Role, account *model.Account) error {
	tx, err := r.table(ctx, role)
	if err != nil {
		return err
	}
	if err := tx.Create(account).Error; err != nil {
		if IsDuplicateKey(err) {
			return apperrors.ErrDuplicateAccount
		}
		return err
	}
	return nil
}

// FindByUsername returns gorm.ErrRecordNotFound when no account matches.
func (r *accountRepository) FindByUsername(ctx context.Context, role model.Role, username string) (*model.Account, error) {
	tx, err := r.table(ctx, role)
	if err != nil {
		return nil, err
	}
	var account model.Account
	if err := tx.Where("username = ?", username).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByID finds an account by ID.
func (r *accountRepository) FindByID(ctx context.Context, role model.Role, id uint) (*model.Account, error) {
	tx, err := r.table(ctx, role)
	if err != nil {
		return nil, err
	}
	var account model.Account
	if err := tx.Where("id = ?", id).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// IsDuplicateKey reports whether err is a unique-constraint violation, either
// translated by gorm or raw from the MySQL driver.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysqldriver.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
