package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/mohdshetty/grap/core/directory"
	"github.com/mohdshetty/grap/core/user"
	"github.com/mohdshetty/grap/storage/database"
	"github.com/mohdshetty/grap/storage/database/dummy"
)

var (
	hashMu sync.Mutex
	hashes = make(map[string][]byte)
)

// PrepareDB opens a fresh in-memory database, filled with the demo dataset when seeded is set.
func PrepareDB(t *testing.T, seeded bool) *dummydb.DB {
	var recs *database.Records
	if seeded {
		seed, err := database.DefaultSeed()
		if err != nil {
			t.Fatalf("DefaultSeed() failed: %v", err)
		}
		if recs, err = seed.Resolve(time.Now().UTC()); err != nil {
			t.Fatalf("Resolve() failed: %v", err)
		}
	}
	db, err := dummydb.Open(recs)
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	return db
}

// passwordHash hashes each distinct password once per test binary.
func passwordHash(t *testing.T, pwd string) []byte {
	hashMu.Lock()
	defer hashMu.Unlock()
	if h, ok := hashes[pwd]; ok {
		return h
	}
	var usr user.User
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	hashes[pwd] = usr.PasswordHash
	return usr.PasswordHash
}

// CreateUser stores a user directly. unitID is the department of a HOD or the faculty of a Dean.
func CreateUser(t *testing.T, repo user.Repository, name, uname, pwd string, role user.Role, unitID int) user.User {
	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Username:  uname,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	switch role {
	case user.RoleHOD:
		usr.DepartmentID = unitID
	case user.RoleDean:
		usr.FacultyID = unitID
	}
	if pwd != "" {
		usr.PasswordHash = passwordHash(t, pwd)
	}
	usr, err := repo.CreateUser(usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateFaculty(t *testing.T, repo directory.Repository, name string) directory.Faculty {
	fac, err := repo.CreateFaculty(directory.Faculty{Name: name})
	if err != nil {
		t.Fatalf("CreateFaculty() failed: %v", err)
	}
	return fac
}

func CreateDepartment(t *testing.T, repo directory.Repository, name string, facultyID int) directory.Department {
	dept, err := repo.CreateDepartment(directory.Department{Name: name, FacultyID: facultyID})
	if err != nil {
		t.Fatalf("CreateDepartment() failed: %v", err)
	}
	return dept
}
