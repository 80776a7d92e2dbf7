package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role       Role
		permission Permission
		want       bool
	}{
		{RoleOwner, PermissionAttendanceManage, true},
		{RoleManager, PermissionAttendanceViewAll, true},
		{RoleEmployee, PermissionAttendanceCreate, true},
		{RoleEmployee, PermissionAttendanceManage, false},
		{RolePending, PermissionAttendanceCreate, false},
		{Role("intern"), PermissionAttendanceViewOwn, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.permission), func(t *testing.T) {
			assert.Equal(t, tt.want, HasPermission(tt.role, tt.permission))
		})
	}
}

func TestRole(t *testing.T) {
	assert.True(t, RolePending.IsValid())
	assert.False(t, Role("intern").IsValid())
}
