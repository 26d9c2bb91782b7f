package model

import (
	"context"
	"fmt"

	"github.com/pixai-app/pixai-api/common"
	"github.com/pixai-app/pixai-api/common/config"
	"github.com/pixai-app/pixai-api/common/helper"
	"github.com/pixai-app/pixai-api/common/logger"
	"gorm.io/gorm"
)

type Log struct {
	Id            int     `json:"id"`
	RequestId     string  `json:"request_id" gorm:"index;default:''"`
	UserId        string  `json:"user_id" gorm:"type:varchar(64);index:idx_user_created,priority:1"`
	CreatedAt     int64   `json:"created_at" gorm:"bigint;index:idx_user_created,priority:2"`
	Type          int     `json:"type" gorm:"index"`
	Operation     string  `json:"operation" gorm:"default:''"`
	Content       string  `json:"content"`
	Credits       int64   `json:"credits" gorm:"default:0"`
	CreditBalance int64   `json:"credit_balance" gorm:"default:0"`
	Duration      float64 `json:"duration" gorm:"default:0"`
}

const (
	LogTypeUnknown = iota
	LogTypeTopup
	LogTypeConsume
)

func RecordTopupLog(ctx context.Context, userId string, credits int64, creditBalance int64, content string) {
	log := &Log{
		RequestId:     requestIdFromContext(ctx),
		UserId:        userId,
		CreatedAt:     helper.GetTimestamp(),
		Type:          LogTypeTopup,
		Content:       content,
		Credits:       credits,
		CreditBalance: creditBalance,
	}
	if err := DB.Create(log).Error; err != nil {
		logger.Error(ctx, "failed to record topup log: "+err.Error())
	}
}

func RecordConsumeLog(ctx context.Context, userId string, operation string, creditBalance int64, duration float64) {
	logger.Info(ctx, fmt.Sprintf("record consume log: userId=%s, operation=%s, creditBalance=%d, duration=%.3fs", userId, operation, creditBalance, duration))
	if !config.LogConsumeEnabled {
		return
	}
	log := &Log{
		RequestId:     requestIdFromContext(ctx),
		UserId:        userId,
		CreatedAt:     helper.GetTimestamp(),
		Type:          LogTypeConsume,
		Operation:     operation,
		Content:       fmt.Sprintf("%s consumed 1 credit", operation),
		Credits:       1,
		CreditBalance: creditBalance,
		Duration:      duration,
	}
	if err := DB.Create(log).Error; err != nil {
		logger.Error(ctx, "failed to record consume log: "+err.Error())
	}
}

func GetUserLogsAndCount(ctx context.Context, userId string, logType int, page int, pageSize int) (logs []*Log, total int64, err error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}
	query := func() *gorm.DB {
		tx := DB.WithContext(ctx).Model(&Log{}).Where("user_id = ?", userId)
		if logType != LogTypeUnknown {
			tx = tx.Where("type = ?", logType)
		}
		return tx
	}
	if err = query().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err = query().Order("id desc").Limit(pageSize).Offset((page - 1) * pageSize).Find(&logs).Error
	return logs, total, err
}

func requestIdFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(logger.RequestIdKey).(string); ok {
		return v
	}
	return ""
}

// UsageRecorder writes consume logs off the request path.
type UsageRecorder struct{}

func (UsageRecorder) RecordConsume(ctx context.Context, userId string, operation string, creditBalance int64, duration float64) {
	// detach from the request so the insert survives the response
	logCtx := context.WithValue(context.Background(), logger.RequestIdKey, requestIdFromContext(ctx))
	common.RelayCtxGo(logCtx, func() {
		RecordConsumeLog(logCtx, userId, operation, creditBalance, duration)
	})
}
