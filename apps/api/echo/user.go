package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mohdshetty/grap/core"
	"github.com/mohdshetty/grap/core/directory"
	"github.com/mohdshetty/grap/core/policy"
	"github.com/mohdshetty/grap/core/user"
	"github.com/mohdshetty/grap/services/metrics"
)

type userApi struct {
	conf       *core.Config
	svc        *user.Service
	dirSvc     *directory.Service
	policy     *policy.Store
	metrics    *metricsvc.Metrics
	audit      auditor
	revoked    *revocationList
	validate   *validator.Validate
	translator ut.Translator
}

func registerUserAPI(g *echo.Group, auth []echo.MiddlewareFunc, api *userApi) {
	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/login", api.login)

	// authed endpoints
	ag := ug.Group("", auth...)
	ag.POST("/token-refresh", api.refreshToken)
	ag.POST("/logout", api.logout)
	ag.GET("/me", api.me)
	ag.PUT("/me", api.updateMe, featureMiddleware(api.policy, policy.FeatureSettings))
	ag.POST("/me/password", api.changePassword, featureMiddleware(api.policy, policy.FeatureSettings))
	ag.GET("", api.query, adminMiddleware())
	ag.POST("/hods", api.registerHOD, featureMiddleware(api.policy, policy.FeatureManageStructure))
	ag.POST("/deans", api.registerDean, adminMiddleware())
	ag.DELETE("/:id", api.destroy, adminMiddleware())
	ag.POST("/:id/restore", api.restore, adminMiddleware())
}

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := bindAndValidate(ctx, api.validate, &data, "LoginRequest"); err != nil {
		return err
	}

	usr, err := api.svc.Login(data.Username, data.Password)
	if err != nil {
		if errors.Cause(err) == user.ErrInvalidCredentials {
			api.metrics.Login(false)
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "authenticating")
	}
	api.metrics.Login(true)

	token, err := GenerateToken(api.conf, GetUserClaims(api.conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	api.audit.record(usr, "User Login", "Logged in to the portal.")
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: usr})
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.conf)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (api *userApi) logout(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	api.revoked.revoke(claims)
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) updateMe(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	var data user.UpdateProfile
	if err := bindAndValidate(ctx, api.validate, &data, "UpdateProfile"); err != nil {
		return err
	}

	usr, err := api.svc.UpdateProfile(ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	api.audit.record(usr, "Profile Updated", "Updated profile information.")
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) changePassword(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	var data user.ChangePassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePassword")
	}
	data.Username, data.Name = ctxUsr.Username, ctxUsr.Name
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.ChangePassword(ctxUsr.ID, data.OldPassword, data.Password); err != nil {
		return errors.Wrap(err, "changing password")
	}
	api.audit.record(ctxUsr, "Password Changed", "Changed account password.")
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password updated successfully!"})
}

func (api *userApi) query(ctx echo.Context) error {
	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []user.User{})
	}
	filter.Clean()

	users, err := api.svc.Filter(*filter)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) registerHOD(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	var data user.NewHOD
	if err := bindAndValidate(ctx, api.validate, &data, "NewHOD"); err != nil {
		return err
	}

	// Deans only staff departments of their own faculty
	if !ctxUsr.IsAdmin() {
		dept, err := api.dirSvc.GetDepartment(data.DepartmentID)
		if err == nil && !canManageFaculty(ctxUsr, dept.FacultyID) {
			return errHttpForbidden
		}
	}

	usr, err := api.svc.RegisterHOD(data)
	if err != nil {
		return errors.Wrap(err, "registering HOD")
	}
	api.audit.recordf(ctxUsr, "Registered HOD", "Registered %s as HOD of department %d.", usr.Name, usr.DepartmentID)
	return ctx.JSON(http.StatusCreated, RegisterResponse{Success: user.MsgHODRegistered, User: usr})
}

func (api *userApi) registerDean(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	var data user.NewDean
	if err := bindAndValidate(ctx, api.validate, &data, "NewDean"); err != nil {
		return err
	}

	usr, err := api.svc.RegisterDean(data)
	if err != nil {
		return errors.Wrap(err, "registering Dean")
	}
	api.audit.recordf(ctxUsr, "Registered Dean", "Registered %s as Dean of faculty %d.", usr.Name, usr.FacultyID)
	return ctx.JSON(http.StatusCreated, RegisterResponse{Success: user.MsgDeanRegistered, User: usr})
}

func (api *userApi) destroy(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	// Say No to Suicide! ctxUser cannot delete themselves
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if id == ctxUsr.ID {
		return errHttpForbidden
	}

	if err := api.svc.Delete(id); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	api.audit.recordf(ctxUsr, "Deleted User", "Deleted user %d.", id)
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) restore(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.Restore(id); err != nil {
		return errors.Wrap(err, "restoring user")
	}
	api.audit.recordf(ctxUsr, "Restored User", "Restored user %d.", id)
	return ctx.NoContent(http.StatusNoContent)
}

type RegisterResponse struct {
	Success string    `json:"success"`
	User    user.User `json:"user"`
}

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}
