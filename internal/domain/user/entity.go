package user

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // Can approve leave, correct attendance, run payroll
	RoleEmployee Role = "employee" // Regular employee
)

func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// IsManager checks if role is manager or owner
func (r Role) IsManager() bool {
	return r == RoleManager || r == RoleOwner
}

// Principal is the authenticated caller, as carried by the access token.
type Principal struct {
	UserID     string
	EmployeeID string
	CompanyID  string
	Role       Role
}

// CanApprove checks if the caller can approve requests
func (p Principal) CanApprove() bool {
	return p.Role.IsManager()
}

// CanAccessEmployee reports whether the caller may read or act on data of employeeID.
func (p Principal) CanAccessEmployee(employeeID string) bool {
	return p.Role.IsManager() || (p.EmployeeID != "" && p.EmployeeID == employeeID)
}
