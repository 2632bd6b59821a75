package testdb

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"task-approval-backend/lib/utils/helpers"
	"task-approval-backend/models"
	dbmodels "task-approval-backend/models/db"
)

func Department(t *testing.T, tx *gorm.DB, name, parentID string) string {
	t.Helper()
	rec := dbmodels.Department{Name: name, ParentID: helpers.EmptyToNil(parentID)}
	require.NoError(t, tx.Create(&rec).Error)
	return rec.ID
}

func User(t *testing.T, tx *gorm.DB, name string, role models.UserRole, departmentID string) string {
	t.Helper()
	rec := dbmodels.User{
		Name:         name,
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "." + uuid.NewString()[:8] + "@example.com",
		Role:         role,
		DepartmentID: helpers.EmptyToNil(departmentID),
		IsActive:     true,
	}
	require.NoError(t, tx.Create(&rec).Error)
	return rec.ID
}

func Deactivate(t *testing.T, tx *gorm.DB, userID string) {
	t.Helper()
	require.NoError(t, tx.Model(&dbmodels.User{}).Where("id = ?", userID).Update("is_active", false).Error)
}
