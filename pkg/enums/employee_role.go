package enums

import "fmt"

// EmployeeRole maps to the employee_role enum in Postgres.
type EmployeeRole string

const (
	EmployeeRoleCutter     EmployeeRole = "cutter"
	EmployeeRoleSeamstress EmployeeRole = "seamstress"
)

var validEmployeeRoles = []EmployeeRole{EmployeeRoleCutter, EmployeeRoleSeamstress}

func (r EmployeeRole) IsValid() bool {
	for _, candidate := range validEmployeeRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// Stage returns the stage an employee of this role normally works.
func (r EmployeeRole) Stage() Stage {
	if r == EmployeeRoleSeamstress {
		return StageSew
	}
	return StageCut
}

// ParseEmployeeRole converts raw strings into EmployeeRole.
func ParseEmployeeRole(value string) (EmployeeRole, error) {
	for _, candidate := range validEmployeeRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid employee role %q", value)
}
