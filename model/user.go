package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/pixai-app/pixai-api/common/helper"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInsufficientCredit = errors.New("no credit balance")
)

// User is the slice of the account record this service reads and writes.
// Accounts are created by the account service; CreditBalance is only
// ever changed through DebitUserCredit and CompleteChargeOrder.
type User struct {
	Id            string `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Username      string `json:"username" gorm:"index;default:''"`
	Email         string `json:"email" gorm:"index;default:''"`
	CreditBalance int64  `json:"credit_balance" gorm:"not null;default:0"`
	CreatedAt     int64  `json:"created_at" gorm:"bigint"`
}

func GetUserById(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, ErrUserNotFound
	}
	var user User
	err := DB.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserCredit(ctx context.Context, id string) (credit int64, err error) {
	user, err := GetUserById(ctx, id)
	if err != nil {
		return 0, err
	}
	return user.CreditBalance, nil
}

// DebitUserCredit takes exactly one credit if the balance is positive and
// returns the balance left. The check and the decrement are one UPDATE so
// concurrent debits can neither drive the balance negative nor get lost.
func DebitUserCredit(ctx context.Context, id string) (credit int64, err error) {
	err = DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&User{}).
			Where("id = ? AND credit_balance > 0", id).
			Update("credit_balance", gorm.Expr("credit_balance - ?", 1))
		if result.Error != nil {
			return result.Error
		}
		var user User
		if err := tx.Select("id", "credit_balance").First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		credit = user.CreditBalance
		if result.RowsAffected == 0 {
			return ErrInsufficientCredit
		}
		return nil
	})
	return credit, err
}

// increaseUserCredit is the top-up path, run inside the charge order transaction.
func increaseUserCredit(tx *gorm.DB, id string, credits int64) (int64, error) {
	if credits <= 0 {
		return 0, fmt.Errorf("credits must be positive, got %d", credits)
	}
	result := tx.Model(&User{}).Where("id = ?", id).
		Update("credit_balance", gorm.Expr("credit_balance + ?", credits))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrUserNotFound
	}
	var user User
	if err := tx.Select("id", "credit_balance").First(&user, "id = ?", id).Error; err != nil {
		return 0, err
	}
	return user.CreditBalance, nil
}

func (user *User) Insert() error {
	if user.CreatedAt == 0 {
		user.CreatedAt = helper.GetTimestamp()
	}
	return DB.Create(user).Error
}
