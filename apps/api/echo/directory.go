package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mohdshetty/grap/core/directory"
	"github.com/mohdshetty/grap/core/policy"
)

type directoryApi struct {
	svc    *directory.Service
	policy *policy.Store
	audit  auditor
}

func registerDirectoryAPI(g *echo.Group, auth []echo.MiddlewareFunc, api *directoryApi) {
	browse := featureMiddleware(api.policy, policy.FeatureContactDirectory)

	fg := g.Group("/faculties", auth...)
	fg.GET("", api.queryFaculties, browse)
	fg.POST("", api.createFaculty, adminMiddleware())
	fg.POST("/:id/departments", api.createDepartment, featureMiddleware(api.policy, policy.FeatureManageStructure))
	fg.DELETE("/:id", api.destroyFaculty, adminMiddleware())
	fg.POST("/:id/restore", api.restoreFaculty, adminMiddleware())

	dg := g.Group("/departments", auth...)
	dg.GET("", api.queryDepartments, browse)
	dg.DELETE("/:id", api.destroyDepartment, adminMiddleware())
	dg.POST("/:id/restore", api.restoreDepartment, adminMiddleware())
}

// Handlers

func (api *directoryApi) queryFaculties(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	// only admins see deleted records
	includeDeleted := usr.IsAdmin() && ctx.QueryParam("include_deleted") == "true"

	faculties, err := api.svc.QueryFaculties(includeDeleted)
	if err != nil {
		return errors.Wrap(err, "querying faculties")
	}
	if faculties == nil {
		faculties = []directory.Faculty{}
	}
	return ctx.JSON(http.StatusOK, faculties)
}

func (api *directoryApi) queryDepartments(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	filter := new(directory.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []directory.Department{})
	}
	if !usr.IsAdmin() {
		filter.IncludeDeleted = false
	}

	depts, err := api.svc.QueryDepartments(*filter)
	if err != nil {
		return errors.Wrap(err, "querying departments")
	}
	if depts == nil {
		depts = []directory.Department{}
	}
	return ctx.JSON(http.StatusOK, depts)
}

func (api *directoryApi) createFaculty(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	var data directory.NewFaculty
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFaculty")
	}

	fac, err := api.svc.AddFaculty(data)
	if err != nil {
		return errors.Wrap(err, "adding faculty")
	}
	api.audit.recordf(usr, "Added Faculty", "Added faculty %q.", fac.Name)
	return ctx.JSON(http.StatusCreated, fac)
}

func (api *directoryApi) createDepartment(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	facultyID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if !canManageFaculty(usr, facultyID) {
		return errHttpForbidden
	}
	var data directory.NewDepartment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDepartment")
	}
	data.FacultyID = facultyID

	dept, err := api.svc.AddDepartment(data)
	if err != nil {
		return errors.Wrap(err, "adding department")
	}
	api.audit.recordf(usr, "Added Department", "Added department %q to faculty %d.", dept.Name, dept.FacultyID)
	return ctx.JSON(http.StatusCreated, dept)
}

func (api *directoryApi) destroyFaculty(ctx echo.Context) error {
	return api.setFacultyDeleted(ctx, true)
}

func (api *directoryApi) restoreFaculty(ctx echo.Context) error {
	return api.setFacultyDeleted(ctx, false)
}

// setFacultyDeleted responds with the departments that followed the faculty.
func (api *directoryApi) setFacultyDeleted(ctx echo.Context, deleted bool) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	var depts []directory.Department
	action := "Deleted Faculty"
	if deleted {
		depts, err = api.svc.DeleteFaculty(id)
	} else {
		action = "Restored Faculty"
		depts, err = api.svc.RestoreFaculty(id)
	}
	if err != nil {
		return errors.Wrap(err, "setting faculty deleted")
	}
	if depts == nil {
		depts = []directory.Department{}
	}
	api.audit.recordf(usr, action, "Faculty %d and %d department(s).", id, len(depts))
	return ctx.JSON(http.StatusOK, depts)
}

func (api *directoryApi) destroyDepartment(ctx echo.Context) error {
	return api.setDepartmentDeleted(ctx, true)
}

func (api *directoryApi) restoreDepartment(ctx echo.Context) error {
	return api.setDepartmentDeleted(ctx, false)
}

func (api *directoryApi) setDepartmentDeleted(ctx echo.Context, deleted bool) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	action := "Deleted Department"
	if deleted {
		err = api.svc.DeleteDepartment(id)
	} else {
		action = "Restored Department"
		err = api.svc.RestoreDepartment(id)
	}
	if err != nil {
		return errors.Wrap(err, "setting department deleted")
	}
	api.audit.recordf(usr, action, "Department %d.", id)
	return ctx.NoContent(http.StatusNoContent)
}
