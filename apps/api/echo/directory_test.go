package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mohdshetty/grap/core/directory"
	"github.com/mohdshetty/grap/core/policy"
)

func departmentsOf(t *testing.T, facultyID int, includeDeleted bool) []interface{} {
	depts, err := dirRepo.QueryDepartments(directory.QueryFilter{FacultyID: facultyID, IncludeDeleted: includeDeleted})
	if err != nil {
		t.Fatalf("QueryDepartments() failed: %v", err)
	}
	objs := make([]interface{}, len(depts))
	for i := range depts {
		objs[i] = depts[i]
	}
	return objs
}

func Test_directoryApi_faculties(t *testing.T) {
	app := setup(t)

	admin := tokenOf(t, adminID)
	mgt := directory.Faculty{ID: 1, Name: "Faculty of Management"}
	sci := directory.Faculty{ID: 2, Name: "Faculty of Science"}
	law := directory.Faculty{ID: 3, Name: "Faculty of Law"}

	runTests(t, app, []httpTest{
		{
			name:     "list",
			method:   http.MethodGet,
			path:     "/v1/faculties",
			token:    tokenOf(t, hodAccID),
			wantCode: http.StatusOK,
			wantData: marchallList(t, mgt, sci),
		},
		{
			name:     "create not admin",
			method:   http.MethodPost,
			path:     "/v1/faculties",
			body:     []byte(`{"name": "Faculty of Law"}`),
			token:    tokenOf(t, deanMgtID),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name:     "create blank",
			method:   http.MethodPost,
			path:     "/v1/faculties",
			body:     []byte(`{"name": "   "}`),
			token:    admin,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": directory.ErrFacultyNameBlank.Error()}),
		},
		{
			name:     "create duplicate",
			method:   http.MethodPost,
			path:     "/v1/faculties",
			body:     []byte(`{"name": "faculty of science"}`),
			token:    admin,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": directory.ErrFacultyExists.Error()}),
		},
		{
			name:     "create",
			method:   http.MethodPost,
			path:     "/v1/faculties",
			body:     []byte(`{"name": "  Faculty of Law "}`),
			token:    admin,
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, law),
		},
		{
			name:     "delete not admin",
			method:   http.MethodDelete,
			path:     "/v1/faculties/2",
			token:    tokenOf(t, deanSciID),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name:     "delete unknown",
			method:   http.MethodDelete,
			path:     "/v1/faculties/99",
			token:    admin,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: directory.ErrFacultyNotFound.Error()}),
		},
	})

	t.Run("delete cascades", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/faculties/2", admin)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("delete code = %d; want 200: %s", rec.Code, rec.Body.String())
		}
		var depts []directory.Department
		unmarshal(t, rec, &depts)
		assert.Len(t, depts, 7)
		for _, dept := range depts {
			assert.Equal(t, 2, dept.FacultyID)
			assert.True(t, dept.IsDeleted)
		}
		assert.Empty(t, departmentsOf(t, 2, false))
	})

	sci.IsDeleted = true
	runTests(t, app, []httpTest{
		{
			name:     "deleted hidden",
			method:   http.MethodGet,
			path:     "/v1/faculties",
			token:    admin,
			wantCode: http.StatusOK,
			wantData: marchallList(t, mgt, law),
		},
		{
			name:     "deleted listed for admin",
			method:   http.MethodGet,
			path:     "/v1/faculties?include_deleted=true",
			token:    admin,
			wantCode: http.StatusOK,
			wantData: marchallList(t, mgt, sci, law),
		},
		{
			name:     "deleted never listed for others",
			method:   http.MethodGet,
			path:     "/v1/faculties?include_deleted=true",
			token:    tokenOf(t, deanMgtID),
			wantCode: http.StatusOK,
			wantData: marchallList(t, mgt, law),
		},
		{
			name:     "department in deleted faculty",
			method:   http.MethodPost,
			path:     "/v1/faculties/2/departments",
			body:     []byte(`{"name": "Geology"}`),
			token:    admin,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"faculty_id": directory.ErrFacultyNotFound.Error()}),
		},
	})

	t.Run("restore cascades", func(t *testing.T) {
		// departments deleted on their own come back too
		if _, err := dirRepo.SetDepartmentDeleted(101, true); err != nil {
			t.Fatalf("SetDepartmentDeleted() failed: %v", err)
		}
		req, rec := newAuthRequest(http.MethodPost, "/v1/faculties/2/restore", admin)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("restore code = %d; want 200: %s", rec.Code, rec.Body.String())
		}
		var depts []directory.Department
		unmarshal(t, rec, &depts)
		assert.Len(t, depts, 7)
		assert.Len(t, departmentsOf(t, 2, false), 7)
		assert.Len(t, departmentsOf(t, 1, false), 7)

		_, _, err := dirRepo.SetFacultyDeleted(1, false)
		assert.NoError(t, err)
		assert.Len(t, departmentsOf(t, 1, false), 8)
	})
}

func Test_directoryApi_departments(t *testing.T) {
	app := setup(t)

	admin := tokenOf(t, adminID)
	dean := tokenOf(t, deanMgtID)
	finance := directory.Department{ID: 208, Name: "Finance", FacultyID: 1}

	runTests(t, app, []httpTest{
		{
			name:     "list all",
			method:   http.MethodGet,
			path:     "/v1/departments",
			token:    tokenOf(t, hodCscID),
			wantCode: http.StatusOK,
			wantData: marchallList(t, departmentsOf(t, 0, false)...),
		},
		{
			name:     "list by faculty",
			method:   http.MethodGet,
			path:     "/v1/departments?faculty_id=2",
			token:    dean,
			wantCode: http.StatusOK,
			wantData: marchallList(t, departmentsOf(t, 2, false)...),
		},
		{
			name:     "create HOD may not",
			method:   http.MethodPost,
			path:     "/v1/faculties/1/departments",
			body:     []byte(`{"name": "Finance"}`),
			token:    tokenOf(t, hodAccID),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name:     "create other faculty",
			method:   http.MethodPost,
			path:     "/v1/faculties/2/departments",
			body:     []byte(`{"name": "Finance"}`),
			token:    dean,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name:     "create blank",
			method:   http.MethodPost,
			path:     "/v1/faculties/1/departments",
			body:     []byte(`{"name": ""}`),
			token:    dean,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": directory.ErrDepartmentNameBlank.Error()}),
		},
		{
			name:     "create duplicate",
			method:   http.MethodPost,
			path:     "/v1/faculties/1/departments",
			body:     []byte(`{"name": "accounting"}`),
			token:    dean,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": directory.ErrDepartmentExists.Error()}),
		},
		{
			name:     "create",
			method:   http.MethodPost,
			path:     "/v1/faculties/1/departments",
			body:     []byte(`{"name": "Finance"}`),
			token:    dean,
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, finance),
		},
		{
			name:     "same name in another faculty",
			method:   http.MethodPost,
			path:     "/v1/faculties/2/departments",
			body:     []byte(`{"name": "Finance"}`),
			token:    admin,
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, directory.Department{ID: 209, Name: "Finance", FacultyID: 2}),
		},
		{
			name:     "delete not admin",
			method:   http.MethodDelete,
			path:     "/v1/departments/208",
			token:    dean,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name:     "delete unknown",
			method:   http.MethodDelete,
			path:     "/v1/departments/999",
			token:    admin,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: directory.ErrDepartmentNotFound.Error()}),
		},
		{
			name:     "delete",
			method:   http.MethodDelete,
			path:     "/v1/departments/208",
			token:    admin,
			wantCode: http.StatusNoContent,
		},
	})

	assert.Len(t, departmentsOf(t, 1, false), 8)
	finance.IsDeleted = true
	runTests(t, app, []httpTest{
		{
			name:     "deleted hidden from deans",
			method:   http.MethodGet,
			path:     "/v1/departments?faculty_id=1&include_deleted=true",
			token:    dean,
			wantCode: http.StatusOK,
			wantData: marchallList(t, departmentsOf(t, 1, false)...),
		},
		{
			name:     "deleted listed for admin",
			method:   http.MethodGet,
			path:     "/v1/departments?faculty_id=1&include_deleted=true",
			token:    admin,
			wantCode: http.StatusOK,
			wantData: marchallList(t, append(departmentsOf(t, 1, false), finance)...),
		},
		{
			name:     "restore",
			method:   http.MethodPost,
			path:     "/v1/departments/208/restore",
			token:    admin,
			wantCode: http.StatusNoContent,
		},
	})

	dept, err := dirRepo.GetDepartment(208)
	assert.NoError(t, err)
	assert.False(t, dept.IsDeleted)
}

func Test_directoryApi_contactDirectoryPermission(t *testing.T) {
	app := setup(t)

	perms := policies.Permissions()
	perms[policy.FeatureContactDirectory] = policy.RolePermission{HOD: false, Dean: true}
	assert.NoError(t, policies.SetPermissions(perms))

	runTests(t, app, []httpTest{
		{
			name:     "HOD revoked",
			method:   http.MethodGet,
			path:     "/v1/departments",
			token:    tokenOf(t, hodAccID),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name:     "Dean allowed",
			method:   http.MethodGet,
			path:     "/v1/faculties",
			token:    tokenOf(t, deanMgtID),
			wantCode: http.StatusOK,
		},
		{
			name:     "Admin always allowed",
			method:   http.MethodGet,
			path:     "/v1/departments",
			token:    tokenOf(t, adminID),
			wantCode: http.StatusOK,
		},
	})
}
