package echoapi

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mohdshetty/grap/core/directory"
	"github.com/mohdshetty/grap/core/user"
)

// validatable is a request body that cleans and checks itself.
type validatable interface {
	Validate(validate *validator.Validate) error
}

// bindAndValidate binds the request into data (a pointer) and validates it.
func bindAndValidate(ctx echo.Context, validate *validator.Validate, data validatable, name string) error {
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding to "+name)
	}
	return data.Validate(validate)
}

// paramID reads an integer path parameter. A malformed id cannot match anything: 404.
func paramID(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// queryInt reads an optional integer query parameter, falling back to def.
func queryInt(ctx echo.Context, name string, def int) int {
	if n, err := strconv.Atoi(ctx.QueryParam(name)); err == nil {
		return n
	}
	return def
}

// canManageFaculty reports whether usr acts on the structure of faculty facultyID:
// Admins everywhere, Deans in their own faculty.
func canManageFaculty(usr user.User, facultyID int) bool {
	return usr.IsAdmin() || (usr.IsDean() && usr.FacultyID == facultyID)
}

// canAccessDepartment reports whether usr may see the department:
// Admins everywhere, Deans within their faculty, HODs their own department.
func canAccessDepartment(usr user.User, dept directory.Department) bool {
	switch usr.Role {
	case user.RoleAdmin:
		return true
	case user.RoleDean:
		return usr.FacultyID == dept.FacultyID
	case user.RoleHOD:
		return usr.DepartmentID == dept.ID
	}
	return false
}

// accessibleDepartment loads the department named by the path parameter, hiding it (404) from users outside its scope.
func accessibleDepartment(ctx echo.Context, svc *directory.Service, usr user.User, param string) (directory.Department, error) {
	id, err := paramID(ctx, param)
	if err != nil {
		return directory.Department{}, err
	}
	dept, err := svc.GetDepartment(id)
	if err != nil {
		return directory.Department{}, errors.Wrap(err, "finding department")
	}
	if !canAccessDepartment(usr, dept) {
		return directory.Department{}, errHttpNotFound
	}
	return dept, nil
}

type (
	SuccessResponse struct {
		Success string `json:"success"`
	}

	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}
)
