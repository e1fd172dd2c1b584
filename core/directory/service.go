package directory

import (
	"github.com/pkg/errors"

	"github.com/mohdshetty/grap/core"
)

const (
	MsgFacultyAdded    = "Faculty added successfully!"
	MsgDepartmentAdded = "Department added successfully!"
)

var (
	// errors
	ErrFacultyNotFound     = errors.New("faculty not found")
	ErrDepartmentNotFound  = errors.New("department not found")
	ErrFacultyNameBlank    = errors.New("Faculty name cannot be empty.")
	ErrFacultyExists       = errors.New("A faculty with this name already exists.")
	ErrDepartmentNameBlank = errors.New("Department name cannot be empty.")
	ErrDepartmentExists    = errors.New("A department with this name already exists in this faculty.")
)

type (
	// Repository stores faculties and departments.
	// Names are compared case-insensitively and only against non-deleted records.
	// New IDs are max(existing IDs, 0) + 1, counted per collection.
	Repository interface {
		CreateFaculty(fac Faculty) (Faculty, error)
		// CreateDepartment fails with ErrFacultyNotFound unless the faculty exists and is not deleted.
		CreateDepartment(dept Department) (Department, error)
		QueryFaculties(includeDeleted bool) ([]Faculty, error)
		QueryDepartments(filter QueryFilter) ([]Department, error)
		GetFaculty(id int) (Faculty, error)
		GetDepartment(id int) (Department, error)
		// SetFacultyDeleted flags the faculty and every department of that faculty alike.
		SetFacultyDeleted(id int, deleted bool) (Faculty, []Department, error)
		SetDepartmentDeleted(id int, deleted bool) (Department, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) AddFaculty(nf NewFaculty) (Faculty, error) {
	nf.clean()
	if nf.Name == "" {
		return Faculty{}, core.NewValidationError(ErrFacultyNameBlank, core.FieldError{Field: "name", Error: ErrFacultyNameBlank.Error()})
	}
	fac, err := svc.repo.CreateFaculty(Faculty{Name: nf.Name})
	if err != nil {
		if errors.Cause(err) == ErrFacultyExists {
			return Faculty{}, core.NewValidationError(ErrFacultyExists, core.FieldError{Field: "name", Error: ErrFacultyExists.Error()})
		}
		return Faculty{}, errors.Wrap(err, "creating faculty")
	}
	return fac, nil
}

func (svc *Service) AddDepartment(nd NewDepartment) (Department, error) {
	nd.clean()
	if nd.Name == "" {
		return Department{}, core.NewValidationError(ErrDepartmentNameBlank, core.FieldError{Field: "name", Error: ErrDepartmentNameBlank.Error()})
	}
	dept, err := svc.repo.CreateDepartment(Department{Name: nd.Name, FacultyID: nd.FacultyID})
	if err != nil {
		switch errors.Cause(err) {
		case ErrDepartmentExists:
			return Department{}, core.NewValidationError(ErrDepartmentExists, core.FieldError{Field: "name", Error: ErrDepartmentExists.Error()})
		case ErrFacultyNotFound:
			return Department{}, core.NewValidationError(ErrFacultyNotFound, core.FieldError{Field: "faculty_id", Error: ErrFacultyNotFound.Error()})
		}
		return Department{}, errors.Wrap(err, "creating department")
	}
	return dept, nil
}

func (svc *Service) QueryFaculties(includeDeleted bool) ([]Faculty, error) {
	return svc.repo.QueryFaculties(includeDeleted)
}

func (svc *Service) QueryDepartments(filter QueryFilter) ([]Department, error) {
	return svc.repo.QueryDepartments(filter)
}

func (svc *Service) GetFaculty(id int) (Faculty, error) {
	return svc.repo.GetFaculty(id)
}

func (svc *Service) GetDepartment(id int) (Department, error) {
	return svc.repo.GetDepartment(id)
}

// DeleteFaculty soft-deletes the faculty and all of its departments.
func (svc *Service) DeleteFaculty(id int) ([]Department, error) {
	_, depts, err := svc.repo.SetFacultyDeleted(id, true)
	return depts, err
}

// RestoreFaculty restores the faculty and all of its departments,
// including those that had been deleted on their own.
func (svc *Service) RestoreFaculty(id int) ([]Department, error) {
	_, depts, err := svc.repo.SetFacultyDeleted(id, false)
	return depts, err
}

func (svc *Service) DeleteDepartment(id int) error {
	_, err := svc.repo.SetDepartmentDeleted(id, true)
	return err
}

func (svc *Service) RestoreDepartment(id int) error {
	_, err := svc.repo.SetDepartmentDeleted(id, false)
	return err
}

// FacultyOf returns the faculty a department belongs to.
func (svc *Service) FacultyOf(deptID int) (Faculty, error) {
	dept, err := svc.repo.GetDepartment(deptID)
	if err != nil {
		return Faculty{}, err
	}
	return svc.repo.GetFaculty(dept.FacultyID)
}
