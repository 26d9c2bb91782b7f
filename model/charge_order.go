package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pixai-app/pixai-api/common/config"
	"github.com/pixai-app/pixai-api/common/helper"
	"github.com/pixai-app/pixai-api/common/logger"
	"github.com/pixai-app/pixai-api/monitor"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/webhook"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	ChargeOrderStatusCreate  = 1
	ChargeOrderStatusSuccess = 3
	ChargeOrderStatusFail    = 4
)

var ErrChargeOrderNotFound = errors.New("charge order not found")

type ChargeOrder struct {
	Id        int    `json:"id"`
	UserId    string `json:"user_id" gorm:"type:varchar(64);index"`
	SessionId string `json:"session_id" gorm:"type:varchar(255);uniqueIndex"`
	PlanId    string `json:"plan_id"`
	Credits   int64  `json:"credits"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    int    `json:"status" gorm:"default:1"`
	CreatedAt int64  `json:"created_at" gorm:"bigint"`
	UpdatedAt int64  `json:"updated_at" gorm:"bigint"`
}

func (order *ChargeOrder) Insert() error {
	now := helper.GetTimestamp()
	order.CreatedAt, order.UpdatedAt = now, now
	if order.Status == 0 {
		order.Status = ChargeOrderStatusCreate
	}
	return DB.Create(order).Error
}

func GetUserChargeOrders(ctx context.Context, userId string, limit int) (orders []*ChargeOrder, err error) {
	err = DB.WithContext(ctx).Where("user_id = ?", userId).Order("id desc").Limit(limit).Find(&orders).Error
	return orders, err
}

// CreateCheckoutOrder opens a Stripe Checkout session for plan and
// records a pending order keyed by the session id.
func CreateCheckoutOrder(ctx context.Context, userId string, plan *CreditPlan) (chargeURL string, sessionId string, err error) {
	if config.StripeSecretKey == "" {
		return "", "", errors.New("payment is not configured")
	}
	stripe.Key = config.StripeSecretKey
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(config.StripeSuccessURL),
		CancelURL:         stripe.String(config.StripeCancelURL),
		ClientReferenceID: stripe.String(userId),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(config.StripeCurrency),
					UnitAmount: stripe.Int64(plan.Price * 100),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(fmt.Sprintf("%s %s - %d credits", config.SystemName, plan.Id, plan.Credits)),
						Description: stripe.String(plan.Desc),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("user_id", userId)
	params.AddMetadata("plan_id", plan.Id)

	s, err := session.New(params)
	if err != nil {
		return "", "", err
	}
	order := &ChargeOrder{
		UserId:    userId,
		SessionId: s.ID,
		PlanId:    plan.Id,
		Credits:   plan.Credits,
		Amount:    plan.Price,
		Currency:  config.StripeCurrency,
	}
	if err = order.Insert(); err != nil {
		return "", "", err
	}
	logger.Infof(ctx, "checkout session %s created for user %s, plan %s", s.ID, userId, plan.Id)
	return s.URL, s.ID, nil
}

// CompleteChargeOrder credits the order's user exactly once.
func CompleteChargeOrder(ctx context.Context, sessionId string) (order *ChargeOrder, credit int64, err error) {
	order = &ChargeOrder{}
	err = DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("session_id = ?", sessionId).First(order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChargeOrderNotFound
		}
		if err != nil {
			return err
		}
		if order.Status != ChargeOrderStatusCreate {
			return nil
		}
		result := tx.Model(&ChargeOrder{}).
			Where("id = ? AND status = ?", order.Id, ChargeOrderStatusCreate).
			Updates(map[string]any{"status": ChargeOrderStatusSuccess, "updated_at": helper.GetTimestamp()})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		credit, err = increaseUserCredit(tx, order.UserId, order.Credits)
		if errors.Is(err, ErrUserNotFound) {
			// paid but unclaimable; retrying the event cannot help
			order.Status = ChargeOrderStatusFail
			return tx.Model(&ChargeOrder{}).Where("id = ?", order.Id).
				Update("status", ChargeOrderStatusFail).Error
		}
		if err != nil {
			return err
		}
		order.Status = ChargeOrderStatusSuccess
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	if order.Status == ChargeOrderStatusFail {
		logger.Warnf(ctx, "checkout session %s paid for unknown user %s, order %d marked failed", sessionId, order.UserId, order.Id)
		return order, 0, nil
	}
	if credit > 0 {
		cacheDeleteUserCredit(ctx, order.UserId)
		monitor.RecordCreditsGranted(order.Credits)
		RecordTopupLog(ctx, order.UserId, order.Credits, credit, fmt.Sprintf("purchased plan %s (%d credits)", order.PlanId, order.Credits))
	}
	return order, credit, nil
}

func FailChargeOrder(ctx context.Context, sessionId string) error {
	return DB.WithContext(ctx).Model(&ChargeOrder{}).
		Where("session_id = ? AND status = ?", sessionId, ChargeOrderStatusCreate).
		Updates(map[string]any{"status": ChargeOrderStatusFail, "updated_at": helper.GetTimestamp()}).Error
}

// HandleStripeWebhook verifies the signature and settles checkout sessions.
func HandleStripeWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, config.StripeWebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return fmt.Errorf("webhook signature verification failed: %w", err)
	}
	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return fmt.Errorf("parse checkout session: %w", err)
		}
		if s.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
			logger.Infof(ctx, "checkout session %s not paid yet: %s", s.ID, s.PaymentStatus)
			return nil
		}
		order, credit, err := CompleteChargeOrder(ctx, s.ID)
		if err != nil {
			return err
		}
		if order.Status != ChargeOrderStatusSuccess {
			return nil
		}
		logger.Infof(ctx, "checkout session %s settled, user %s balance %d", s.ID, order.UserId, credit)
	case "checkout.session.expired", "checkout.session.async_payment_failed":
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return fmt.Errorf("parse checkout session: %w", err)
		}
		return FailChargeOrder(ctx, s.ID)
	default:
		logger.Debugf(ctx, "unhandled stripe event type: %s", event.Type)
	}
	return nil
}
