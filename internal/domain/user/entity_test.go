package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_HasPermission(t *testing.T) {
	assert.True(t, RoleEmployee.HasPermission(PermissionLeaveCreate))
	assert.False(t, RoleEmployee.HasPermission(PermissionLeaveApprove))
	assert.True(t, RoleManager.HasPermission(PermissionLeaveApprove))
	assert.True(t, RoleOwner.HasPermission(PermissionPayrollManage))
	assert.False(t, Role("pending").HasPermission(PermissionLeaveViewOwn))
}

func TestPrincipal_CanAccessEmployee(t *testing.T) {
	emp := Principal{EmployeeID: "emp-1", Role: RoleEmployee}
	assert.True(t, emp.CanAccessEmployee("emp-1"))
	assert.False(t, emp.CanAccessEmployee("emp-2"))

	noEmployee := Principal{Role: RoleEmployee}
	assert.False(t, noEmployee.CanAccessEmployee(""))

	mgr := Principal{Role: RoleManager}
	assert.True(t, mgr.CanAccessEmployee("emp-2"))
}
