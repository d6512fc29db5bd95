package models

// Role is the job role of an employee. It drives menu and route access.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleDoctor       Role = "doctor"
	RoleReceptionist Role = "receptionist"
	RoleCashier      Role = "cashier"
)

// Roles lists every role.
var Roles = []Role{RoleAdmin, RoleDoctor, RoleReceptionist, RoleCashier}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleReceptionist, RoleCashier:
		return true
	}
	return false
}

// Employee model
type Employee struct {
	Base
	UserInfo
	Role         Role    `gorm:"column:role;check:role IN ('admin', 'doctor', 'receptionist', 'cashier');not null" json:"role"`
	Position     string  `gorm:"column:position" json:"position"`
	Salary       float64 `gorm:"column:salary" json:"salary"`
	HireDate     int64   `gorm:"column:hire_date" json:"hireDate,omitempty"`
	PasswordHash string  `gorm:"column:password_hash" json:"-"`
}

func (Employee) TableName() string {
	return "employee"
}
