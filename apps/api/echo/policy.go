package echoapi

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mohdshetty/grap/core"
	"github.com/mohdshetty/grap/core/policy"
)

type policyApi struct {
	store *policy.Store
	audit auditor
}

func registerPolicyAPI(g *echo.Group, auth []echo.MiddlewareFunc, api *policyApi) {
	pg := g.Group("/policy", auth...)
	pg.GET("/requirements", api.requirements)
	pg.PUT("/requirements", api.setRequirements, adminMiddleware())
	pg.GET("/permissions", api.permissions)
	pg.PUT("/permissions", api.setPermissions, adminMiddleware())
}

type (
	RequirementsResponse struct {
		Requirements policy.Requirements `json:"requirements"`
		Buckets      []policy.Bucket     `json:"buckets"`
	}

	PermissionsResponse struct {
		Features    []policy.FeatureInfo `json:"features"`
		Permissions policy.Permissions   `json:"permissions"`
	}
)

// decodeBody decodes a JSON object body into a map type, which echo's binder does not bind path/query data into.
func decodeBody(ctx echo.Context, v interface{}) error {
	if err := json.NewDecoder(ctx.Request().Body).Decode(v); err != nil {
		return core.NewValidationError(errors.Wrap(err, "malformed JSON body"))
	}
	return nil
}

// Handlers

func (api *policyApi) requirements(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, RequirementsResponse{
		Requirements: api.store.Requirements(),
		Buckets:      api.store.Buckets(),
	})
}

func (api *policyApi) setRequirements(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	var reqs policy.Requirements
	if err := decodeBody(ctx, &reqs); err != nil {
		return err
	}

	if err := api.store.SetRequirements(reqs); err != nil {
		return errors.Wrap(err, "setting requirements")
	}
	api.audit.record(usr, "Updated Requirements", "Updated the staffing requirement table.")
	return api.requirements(ctx)
}

func (api *policyApi) permissions(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, PermissionsResponse{
		Features:    policy.Features,
		Permissions: api.store.Permissions(),
	})
}

func (api *policyApi) setPermissions(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	var perms policy.Permissions
	if err := decodeBody(ctx, &perms); err != nil {
		return err
	}

	if err := api.store.SetPermissions(perms); err != nil {
		return errors.Wrap(err, "setting permissions")
	}
	api.audit.record(usr, "Updated Permissions", "Updated role permissions.")
	return api.permissions(ctx)
}
