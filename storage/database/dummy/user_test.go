package dummydb

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mohdshetty/grap/core/directory"
	"github.com/mohdshetty/grap/core/user"
)

func TestUserRepository_ConcurrentAssignments(t *testing.T) {
	db, _ := Open(nil)
	repo := NewUserRepository(db)

	const n = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		oks  int
		errs = make(map[error]int)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.CreateUser(user.User{
				Username:     fmt.Sprintf("hod%d@bosu.edu.ng", i),
				Role:         user.RoleHOD,
				DepartmentID: 101,
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				oks++
			} else {
				errs[err]++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, oks, "exactly one HOD per department")
	assert.Equal(t, n-1, errs[user.ErrDepartmentHasHOD])

	users, _ := repo.QueryAllUsers()
	assert.Len(t, users, 1)
	assert.Equal(t, 1, users[0].ID)
}

func TestUserRepository_IDs(t *testing.T) {
	db, _ := Open(nil)
	repo := NewUserRepository(db)

	first, _ := repo.CreateUser(user.User{Username: "a", Role: user.RoleAdmin})
	_, _ = repo.SetUserDeleted(first.ID, true)
	second, _ := repo.CreateUser(user.User{Username: "b", Role: user.RoleAdmin})
	assert.Equal(t, first.ID+1, second.ID, "ids are never reused")

	_, err := repo.CreateUser(user.User{Username: "A", Role: user.RoleAdmin})
	assert.Equal(t, user.ErrUsernameExists, err, "deleted users keep their username")
}

func TestDirectoryRepository_Cascade(t *testing.T) {
	db, _ := Open(nil)
	repo := NewDirectoryRepository(db)

	sci, _ := repo.CreateFaculty(directory.Faculty{Name: "Science"})
	phy, _ := repo.CreateDepartment(directory.Department{Name: "Physics", FacultyID: sci.ID})
	_, _ = repo.SetDepartmentDeleted(phy.ID, true)

	_, depts, err := repo.SetFacultyDeleted(sci.ID, true)
	assert.NoError(t, err)
	assert.Len(t, depts, 1)
	assert.True(t, depts[0].IsDeleted)

	_, depts, _ = repo.SetFacultyDeleted(sci.ID, false)
	assert.False(t, depts[0].IsDeleted)
}
