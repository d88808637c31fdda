package services

import (
	"encoding/json"
	"fmt"
	"time"

	"probation_app_go/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuditContext identifies the actor of an audited operation
type AuditContext struct {
	UserID    string
	UserName  string
	UserRole  string
	IPAddress string
	UserAgent string
}

// AuditEntry is one audited operation
type AuditEntry struct {
	Action       models.AuditAction
	ResourceType string
	ResourceID   string
	ResourceName string
	Description  string
	OldValues    interface{}
	NewValues    interface{}
}

// WriteAuditLog stores an audit record synchronously
func WriteAuditLog(db *gorm.DB, ctx AuditContext, e AuditEntry) error {
	auditLog := models.AuditLog{
		UserID:       ptrIfNotEmpty(ctx.UserID),
		UserName:     ctx.UserName,
		UserRole:     ctx.UserRole,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		ResourceName: e.ResourceName,
		Action:       e.Action,
		Description:  e.Description,
		OldValues:    marshalAuditValues(e.OldValues),
		NewValues:    marshalAuditValues(e.NewValues),
		IPAddress:    ctx.IPAddress,
		UserAgent:    ctx.UserAgent,
	}
	if auditLog.UserName == "" {
		auditLog.UserName = "system"
	}
	if auditLog.UserRole == "" {
		auditLog.UserRole = "system"
	}

	if err := db.Create(&auditLog).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// LogAuditEvent stores an audit record in the background so requests do not
// wait on it. Failures are logged.
func LogAuditEvent(db *gorm.DB, ctx AuditContext, e AuditEntry) {
	go func() {
		if err := WriteAuditLog(db, ctx, e); err != nil {
			zap.L().Error("audit write failed",
				zap.String("event", "AUDIT"),
				zap.String("resource_type", e.ResourceType),
				zap.String("resource_id", e.ResourceID),
				zap.Error(err),
			)
		}
	}()
}

func marshalAuditValues(v interface{}) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func ptrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// GetResourceAuditHistory returns the audit trail of one record, newest first
func GetResourceAuditHistory(db *gorm.DB, resourceType, resourceID string) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := db.Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

// AuditLogFilters narrows ListAuditLogs
type AuditLogFilters struct {
	UserID       string
	ResourceType string
	Action       string
	DateFrom     time.Time
	DateTo       time.Time
}

// ListAuditLogs returns a page of audit logs and the total count
func ListAuditLogs(db *gorm.DB, filters AuditLogFilters, page Page) ([]models.AuditLog, int64, error) {
	query := db.Model(&models.AuditLog{})

	if filters.UserID != "" {
		query = query.Where("user_id = ?", filters.UserID)
	}
	if filters.ResourceType != "" {
		query = query.Where("resource_type = ?", filters.ResourceType)
	}
	if filters.Action != "" {
		query = query.Where("action = ?", filters.Action)
	}
	if !filters.DateFrom.IsZero() {
		query = query.Where("created_at >= ?", filters.DateFrom.UTC())
	}
	if !filters.DateTo.IsZero() {
		query = query.Where("created_at <= ?", filters.DateTo.UTC())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AuditLog
	err := query.Order("created_at DESC").Scopes(page.Scope()).Find(&logs).Error
	return logs, total, err
}
