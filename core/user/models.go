package user

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/mohdshetty/grap/core"
)

// Role is the portal a user signs into.
type Role string

const (
	RoleHOD   Role = "HOD"
	RoleDean  Role = "DEAN"
	RoleAdmin Role = "ADMIN"
)

var (
	AllRoles = []Role{RoleHOD, RoleDean, RoleAdmin}

	// hashCost is lowered by tests.
	hashCost = bcrypt.DefaultCost
)

func (r Role) IsValid() bool {
	switch r {
	case RoleHOD, RoleDean, RoleAdmin:
		return true
	}
	return false
}

// User is a portal account. A HOD carries a DepartmentID, a Dean a FacultyID, an Admin neither.
type User struct {
	ID                int       `json:"id" yaml:"id"`
	Username          string    `json:"username" yaml:"username"`
	PasswordHash      []byte    `json:"-" yaml:"-"`
	Role              Role      `json:"role" yaml:"role"`
	Name              string    `json:"name" yaml:"name"`
	FacultyID         int       `json:"faculty_id,omitempty" yaml:"facultyId,omitempty"`
	DepartmentID      int       `json:"department_id,omitempty" yaml:"departmentId,omitempty"`
	StaffID           string    `json:"staff_id,omitempty" yaml:"staffId,omitempty"`
	IsDeleted         bool      `json:"is_deleted" yaml:"isDeleted"`
	ProfilePictureURL string    `json:"profile_picture_url,omitempty" yaml:"profilePictureUrl,omitempty"`
	Phone             string    `json:"phone,omitempty" yaml:"phone,omitempty"`
	CreatedAt         time.Time `json:"created_at" yaml:"-"` // UTC
	UpdatedAt         time.Time `json:"updated_at" yaml:"-"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), hashCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
func (u *User) IsDean() bool  { return u.Role == RoleDean }
func (u *User) IsHOD() bool   { return u.Role == RoleHOD }

// staffID derives the staff number handed to newly registered accounts,
// e.g. BOSU/HOD/NEW/101 for department 101.
func staffID(role Role, unitID int) string {
	digits := fmt.Sprintf("%03d", unitID)
	return fmt.Sprintf("BOSU/%s/NEW/%s", role, digits[len(digits)-3:])
}

// NewHOD contains information needed to register a Head of Department.
type NewHOD struct {
	Name         string `json:"name" validate:"notblank"`
	Username     string `json:"username" validate:"required,email"`
	Password     string `json:"password" validate:"required"`
	DepartmentID int    `json:"department_id" validate:"required,gt=0"`
}

func (nh *NewHOD) clean() {
	nh.Name = core.CleanString(nh.Name)
	nh.Username = core.CleanString(nh.Username, true /* lower */)
}

func (nh *NewHOD) Validate(validate *validator.Validate) error {
	nh.clean()
	return validate.Struct(nh)
}

// NewDean contains information needed to register a Dean.
type NewDean struct {
	Name      string `json:"name" validate:"notblank"`
	Username  string `json:"username" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FacultyID int    `json:"faculty_id" validate:"required,gt=0"`
}

func (nd *NewDean) clean() {
	nd.Name = core.CleanString(nd.Name)
	nd.Username = core.CleanString(nd.Username, true /* lower */)
}

func (nd *NewDean) Validate(validate *validator.Validate) error {
	nd.clean()
	return validate.Struct(nd)
}

// UpdateProfile holds the profile fields a user may change; nil fields are left untouched.
type UpdateProfile struct {
	Name              *string `json:"name" validate:"omitempty,notblank"`
	Phone             *string `json:"phone"`
	ProfilePictureURL *string `json:"profile_picture_url" validate:"omitempty,url"`
}

func (up *UpdateProfile) Validate(validate *validator.Validate) error {
	if up.Name != nil {
		name := core.CleanString(*up.Name)
		up.Name = &name
	}
	if up.Phone != nil {
		phone := core.CleanString(*up.Phone)
		up.Phone = &phone
	}
	return validate.Struct(up)
}

func (up UpdateProfile) apply(usr *User) {
	if up.Name != nil {
		usr.Name = *up.Name
	}
	if up.Phone != nil {
		usr.Phone = *up.Phone
	}
	if up.ProfilePictureURL != nil {
		usr.ProfilePictureURL = *up.ProfilePictureURL
	}
}

type ChangePassword struct {
	OldPassword     string `json:"old_password" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`

	// Username and Name feed the similarity rule of the password policy.
	Username string `json:"-"`
	Name     string `json:"-"`
}

func (cp ChangePassword) Validate(validate *validator.Validate) error { return validate.Struct(cp) }

type QueryFilter struct {
	Search         string `query:"search"`
	Roles          []Role `query:"role"`
	FacultyID      int    `query:"faculty_id"`
	DepartmentID   int    `query:"department_id"`
	IncludeDeleted bool   `query:"include_deleted"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
