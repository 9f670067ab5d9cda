package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	FindByLogin(ctx context.Context, db *gorm.DB, login string) (*User, error)
	Update(ctx context.Context, db *gorm.DB, user *User) error
	List(ctx context.Context, db *gorm.DB) ([]User, error)
}
