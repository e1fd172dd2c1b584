package dummydb

import (
	"sort"

	"github.com/mohdshetty/grap/core"
	"github.com/mohdshetty/grap/core/directory"
)

type directoryRepository struct {
	db *directoryTable
}

var _ directory.Repository = (*directoryRepository)(nil) // interface compliance check

func NewDirectoryRepository(db *DB) directory.Repository {
	return &directoryRepository{db: db.directory}
}

func (repo *directoryRepository) CreateFaculty(fac directory.Faculty) (directory.Faculty, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var maxID int
	for _, other := range repo.db.faculties {
		if !other.IsDeleted && core.SameName(other.Name, fac.Name) {
			return directory.Faculty{}, directory.ErrFacultyExists
		}
		if other.ID > maxID {
			maxID = other.ID
		}
	}
	fac.ID = maxID + 1
	fac.IsDeleted = false
	repo.db.faculties[fac.ID] = &fac
	return fac, nil
}

func (repo *directoryRepository) CreateDepartment(dept directory.Department) (directory.Department, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if fac, ok := repo.db.faculties[dept.FacultyID]; !ok || fac.IsDeleted {
		return directory.Department{}, directory.ErrFacultyNotFound
	}
	var maxID int
	for _, other := range repo.db.departments {
		if !other.IsDeleted && other.FacultyID == dept.FacultyID && core.SameName(other.Name, dept.Name) {
			return directory.Department{}, directory.ErrDepartmentExists
		}
		if other.ID > maxID {
			maxID = other.ID
		}
	}
	dept.ID = maxID + 1
	dept.IsDeleted = false
	repo.db.departments[dept.ID] = &dept
	return dept, nil
}

func (repo *directoryRepository) QueryFaculties(includeDeleted bool) ([]directory.Faculty, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	facs := make([]directory.Faculty, 0, len(repo.db.faculties))
	for _, fac := range repo.db.faculties {
		if includeDeleted || !fac.IsDeleted {
			facs = append(facs, *fac)
		}
	}
	sort.Slice(facs, func(i, j int) bool { return facs[i].ID < facs[j].ID })
	return facs, nil
}

func (repo *directoryRepository) QueryDepartments(filter directory.QueryFilter) ([]directory.Department, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	depts := make([]directory.Department, 0, len(repo.db.departments))
	for _, dept := range repo.db.departments {
		if dept.IsDeleted && !filter.IncludeDeleted {
			continue
		}
		if filter.FacultyID != 0 && dept.FacultyID != filter.FacultyID {
			continue
		}
		depts = append(depts, *dept)
	}
	sort.Slice(depts, func(i, j int) bool { return depts[i].ID < depts[j].ID })
	return depts, nil
}

func (repo *directoryRepository) GetFaculty(id int) (directory.Faculty, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if fac, ok := repo.db.faculties[id]; ok {
		return *fac, nil
	}
	return directory.Faculty{}, directory.ErrFacultyNotFound
}

func (repo *directoryRepository) GetDepartment(id int) (directory.Department, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if dept, ok := repo.db.departments[id]; ok {
		return *dept, nil
	}
	return directory.Department{}, directory.ErrDepartmentNotFound
}

func (repo *directoryRepository) SetFacultyDeleted(id int, deleted bool) (directory.Faculty, []directory.Department, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	fac, ok := repo.db.faculties[id]
	if !ok {
		return directory.Faculty{}, nil, directory.ErrFacultyNotFound
	}
	fac.IsDeleted = deleted

	affected := make([]directory.Department, 0)
	for _, dept := range repo.db.departments {
		if dept.FacultyID == id {
			dept.IsDeleted = deleted
			affected = append(affected, *dept)
		}
	}
	sort.Slice(affected, func(i, j int) bool { return affected[i].ID < affected[j].ID })
	return *fac, affected, nil
}

func (repo *directoryRepository) SetDepartmentDeleted(id int, deleted bool) (directory.Department, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	dept, ok := repo.db.departments[id]
	if !ok {
		return directory.Department{}, directory.ErrDepartmentNotFound
	}
	dept.IsDeleted = deleted
	return *dept, nil
}
