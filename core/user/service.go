package user

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/mohdshetty/grap/core"
	"github.com/mohdshetty/grap/core/directory"
)

const (
	MsgHODRegistered  = "HOD registered successfully!"
	MsgDeanRegistered = "Dean registered successfully!"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrUsernameExists     = errors.New("Username (email) already exists.")
	ErrDepartmentHasHOD   = errors.New("That department already has an HOD assigned.")
	ErrFacultyHasDean     = errors.New("That faculty already has a Dean assigned.")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

type (
	// Repository stores users. CreateUser and SetUserDeleted enforce, atomically:
	// usernames are unique among all users (deleted ones included),
	// at most one non-deleted HOD per department and one non-deleted Dean per faculty.
	// CreateUser assigns ID = max existing ID + 1.
	Repository interface {
		CreateUser(usr User) (User, error)
		QueryAllUsers() ([]User, error)
		GetUserByID(id int) (User, error)
		GetUserByUsername(username string) (User, error)
		// FilterUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name, User.Username or User.StaffID.
		FilterUsers(filter QueryFilter) ([]User, error)
		UpdateUser(usr User) (User, error)
		SetUserDeleted(id int, deleted bool) (User, error)
	}

	// Directory resolves the units users get assigned to.
	Directory interface {
		GetFaculty(id int) (directory.Faculty, error)
		GetDepartment(id int) (directory.Department, error)
	}

	Service struct {
		repo Repository
		dir  Directory
		now  func() time.Time

		mu       sync.Mutex
		sessions []*Session
	}
)

func NewService(repo Repository, dir Directory) *Service {
	return &Service{
		repo: repo,
		dir:  dir,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// mapRepoErr turns rule violations reported by the repository into validation errors.
func mapRepoErr(err error) error {
	var field string
	switch errors.Cause(err) {
	case ErrUsernameExists:
		field = "username"
	case ErrDepartmentHasHOD:
		field = "department_id"
	case ErrFacultyHasDean:
		field = "faculty_id"
	default:
		return err
	}
	cause := errors.Cause(err)
	return core.NewValidationError(cause, core.FieldError{Field: field, Error: cause.Error()})
}

// Login returns the non-deleted user matching username and password.
func (svc *Service) Login(username, password string) (User, error) {
	usr, err := svc.repo.GetUserByUsername(core.CleanString(username, true /* lower */))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by username")
	}
	if usr.IsDeleted || usr.CheckPassword(password) != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

func (svc *Service) RegisterHOD(nh NewHOD) (User, error) {
	nh.clean()
	dept, err := svc.dir.GetDepartment(nh.DepartmentID)
	if err != nil {
		if errors.Cause(err) == directory.ErrDepartmentNotFound {
			return User{}, core.NewValidationError(err, core.FieldError{Field: "department_id", Error: err.Error()})
		}
		return User{}, errors.Wrap(err, "finding department")
	}
	if dept.IsDeleted {
		return User{}, core.NewValidationError(directory.ErrDepartmentNotFound,
			core.FieldError{Field: "department_id", Error: directory.ErrDepartmentNotFound.Error()})
	}

	now := svc.now()
	usr := User{
		Username:     nh.Username,
		Role:         RoleHOD,
		Name:         nh.Name,
		DepartmentID: nh.DepartmentID,
		StaffID:      staffID(RoleHOD, nh.DepartmentID),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := usr.SetPassword(nh.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr, err = svc.repo.CreateUser(usr)
	if err != nil {
		return User{}, mapRepoErr(err)
	}
	return usr, nil
}

func (svc *Service) RegisterDean(nd NewDean) (User, error) {
	nd.clean()
	fac, err := svc.dir.GetFaculty(nd.FacultyID)
	if err != nil {
		if errors.Cause(err) == directory.ErrFacultyNotFound {
			return User{}, core.NewValidationError(err, core.FieldError{Field: "faculty_id", Error: err.Error()})
		}
		return User{}, errors.Wrap(err, "finding faculty")
	}
	if fac.IsDeleted {
		return User{}, core.NewValidationError(directory.ErrFacultyNotFound,
			core.FieldError{Field: "faculty_id", Error: directory.ErrFacultyNotFound.Error()})
	}

	now := svc.now()
	usr := User{
		Username:  nd.Username,
		Role:      RoleDean,
		Name:      nd.Name,
		FacultyID: nd.FacultyID,
		StaffID:   staffID(RoleDean, nd.FacultyID),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nd.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr, err = svc.repo.CreateUser(usr)
	if err != nil {
		return User{}, mapRepoErr(err)
	}
	return usr, nil
}

func (svc *Service) QueryAll() ([]User, error) {
	return svc.repo.QueryAllUsers()
}

func (svc *Service) Filter(filter QueryFilter) ([]User, error) {
	return svc.repo.FilterUsers(filter)
}

func (svc *Service) GetByID(id int) (User, error) {
	return svc.repo.GetUserByID(id)
}

// Delete soft-deletes a user. Nothing else is affected.
func (svc *Service) Delete(id int) error {
	usr, err := svc.repo.SetUserDeleted(id, true)
	if err != nil {
		return err
	}
	svc.refreshSessions(usr)
	return nil
}

// Restore reverses Delete, unless the user's unit has been handed to someone else meanwhile.
func (svc *Service) Restore(id int) error {
	usr, err := svc.repo.SetUserDeleted(id, false)
	if err != nil {
		return mapRepoErr(err)
	}
	svc.refreshSessions(usr)
	return nil
}

// UpdateProfile merges the set fields of up into the user's profile.
func (svc *Service) UpdateProfile(id int, up UpdateProfile) (User, error) {
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return User{}, err
	}
	up.apply(&usr)
	usr.UpdatedAt = svc.now()

	usr, err = svc.repo.UpdateUser(usr)
	if err != nil {
		return User{}, errors.Wrap(err, "updating user")
	}
	svc.refreshSessions(usr)
	return usr, nil
}

// ChangePassword replaces the password of user `id` once oldPwd has been verified.
func (svc *Service) ChangePassword(id int, oldPwd, newPwd string) error {
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return err
	}
	if usr.CheckPassword(oldPwd) != nil {
		return core.NewValidationError(ErrWrongPassword, core.FieldError{Field: "old_password", Error: ErrWrongPassword.Error()})
	}
	if err := usr.SetPassword(newPwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = svc.now()
	if _, err := svc.repo.UpdateUser(usr); err != nil {
		return errors.Wrap(err, "updating user")
	}
	return nil
}

func (svc *Service) watch(s *Session) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.sessions = append(svc.sessions, s)
}

func (svc *Service) refreshSessions(usr User) {
	svc.mu.Lock()
	sessions := make([]*Session, len(svc.sessions))
	copy(sessions, svc.sessions)
	svc.mu.Unlock()

	for _, s := range sessions {
		s.refresh(usr)
	}
}
