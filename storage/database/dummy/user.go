package dummydb

import (
	"sort"
	"strings"

	"github.com/mohdshetty/grap/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

// query returns all users ordered by ID. Callers hold the lock.
func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.table))
	for _, u := range repo.db.table {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

// checkAssignment fails when another active user already holds usr's unit. Callers hold the lock.
func (repo *userRepository) checkAssignment(usr user.User) error {
	if usr.IsDeleted {
		return nil
	}
	for _, other := range repo.db.table {
		if other.ID == usr.ID || other.IsDeleted || other.Role != usr.Role {
			continue
		}
		if usr.IsHOD() && other.DepartmentID == usr.DepartmentID {
			return user.ErrDepartmentHasHOD
		}
		if usr.IsDean() && other.FacultyID == usr.FacultyID {
			return user.ErrFacultyHasDean
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var maxID int
	for _, other := range repo.db.table {
		if strings.EqualFold(other.Username, usr.Username) {
			return user.User{}, user.ErrUsernameExists
		}
		if other.ID > maxID {
			maxID = other.ID
		}
	}
	if err := repo.checkAssignment(usr); err != nil {
		return user.User{}, err
	}

	usr.ID = maxID + 1
	repo.db.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *userRepository) GetUserByID(id int) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.table[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsername(username string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.table {
		if strings.EqualFold(usr.Username, username) {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) FilterUsers(filter user.QueryFilter) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	search := strings.ToLower(filter.Search)
	users := make([]user.User, 0)
	for _, u := range repo.query() {
		if u.IsDeleted && !filter.IncludeDeleted {
			continue
		}
		// users with search keyword matching any Name, Username or StaffID ?
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Username), search) &&
			!strings.Contains(strings.ToLower(u.StaffID), search) {
			continue
		}
		// users with any of the specified roles
		if len(filter.Roles) > 0 && !hasRole(u, filter.Roles) {
			continue
		}
		if filter.FacultyID != 0 && u.FacultyID != filter.FacultyID {
			continue
		}
		if filter.DepartmentID != 0 && u.DepartmentID != filter.DepartmentID {
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

func hasRole(u user.User, roles []user.Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// UpdateUser saves the profile fields and password of usr. Role, unit and deletion flag are not updatable.
func (repo *userRepository) UpdateUser(usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origUsr, ok := repo.db.table[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if usr.PasswordHash != nil {
		origUsr.PasswordHash = usr.PasswordHash
	}
	origUsr.Name = usr.Name
	origUsr.Phone = usr.Phone
	origUsr.ProfilePictureURL = usr.ProfilePictureURL
	origUsr.UpdatedAt = usr.UpdatedAt
	return *origUsr, nil
}

func (repo *userRepository) SetUserDeleted(id int, deleted bool) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr, ok := repo.db.table[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if !deleted && usr.IsDeleted {
		restored := *usr
		restored.IsDeleted = false
		if err := repo.checkAssignment(restored); err != nil {
			return user.User{}, err
		}
	}
	usr.IsDeleted = deleted
	return *usr, nil
}
