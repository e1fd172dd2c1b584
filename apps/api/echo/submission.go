package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mohdshetty/grap/core/directory"
	"github.com/mohdshetty/grap/core/policy"
	"github.com/mohdshetty/grap/core/submission"
	"github.com/mohdshetty/grap/core/user"
	"github.com/mohdshetty/grap/services/metrics"
)

const adminUpdateNote = "Updated by Administrator"

type submissionApi struct {
	svc      *submission.Service
	dirSvc   *directory.Service
	policy   *policy.Store
	metrics  *metricsvc.Metrics
	audit    auditor
	validate *validator.Validate
}

func registerSubmissionAPI(g *echo.Group, auth []echo.MiddlewareFunc, api *submissionApi) {
	sg := g.Group("/submissions", auth...)
	sg.GET("", api.query, featureMiddleware(api.policy, policy.FeatureSubmissionHistory, policy.FeatureReviewSubmissions))

	dg := sg.Group("/departments")
	dg.GET("/:id", api.retrieve, featureMiddleware(api.policy, policy.FeatureSubmissionHistory, policy.FeatureReviewSubmissions))
	dg.PUT("/:id", api.upsert, featureMiddleware(api.policy, policy.FeatureDataSubmission))
	dg.POST("/:id/status", api.setStatus, featureMiddleware(api.policy, policy.FeatureReviewSubmissions))
}

// DepartmentSubmissions is a department's current submission plus its whole history.
type DepartmentSubmissions struct {
	DepartmentID int                       `json:"department_id"`
	Latest       *submission.Submission    `json:"latest"`
	Entries      []submission.Submission   `json:"entries"`
	Changes      []submission.StatusChange `json:"changes"`
}

// Handlers

// query lists the latest submission of every department in the user's scope.
func (api *submissionApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	filter := new(submission.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []submission.Submission{})
	}

	switch usr.Role {
	case user.RoleHOD:
		filter.DepartmentIDs = []int{usr.DepartmentID}
	case user.RoleDean:
		depts, err := api.dirSvc.QueryDepartments(directory.QueryFilter{FacultyID: usr.FacultyID})
		if err != nil {
			return errors.Wrap(err, "querying faculty departments")
		}
		inFaculty := make(map[int]bool, len(depts))
		for _, dept := range depts {
			inFaculty[dept.ID] = true
		}
		scoped := []int{0} // matches nothing when the faculty is empty
		if len(filter.DepartmentIDs) == 0 {
			for _, dept := range depts {
				scoped = append(scoped, dept.ID)
			}
		} else {
			for _, id := range filter.DepartmentIDs {
				if inFaculty[id] {
					scoped = append(scoped, id)
				}
			}
		}
		filter.DepartmentIDs = scoped
	}

	subs, err := api.svc.QueryLatest(*filter)
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *submissionApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	dept, err := accessibleDepartment(ctx, api.dirSvc, usr, "id")
	if err != nil {
		return err
	}

	entries, changes, err := api.svc.History(dept.ID)
	if err != nil {
		return errors.Wrap(err, "querying submission history")
	}
	resp := DepartmentSubmissions{
		DepartmentID: dept.ID,
		Entries:      entries,
		Changes:      changes,
	}
	if resp.Entries == nil {
		resp.Entries = []submission.Submission{}
	}
	if resp.Changes == nil {
		resp.Changes = []submission.StatusChange{}
	}
	if latest, ok := submission.Latest(entries); ok {
		resp.Latest = &latest
	}
	return ctx.JSON(http.StatusOK, resp)
}

// upsert saves the department's staffing data as a draft or submits it for review.
func (api *submissionApi) upsert(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	dept, err := accessibleDepartment(ctx, api.dirSvc, usr, "id")
	if err != nil {
		return err
	}
	if dept.IsDeleted {
		return errHttpNotFound
	}
	var data submission.Upsert
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Upsert")
	}
	data.Rule = submission.RuleSubmitter
	if usr.IsAdmin() {
		// direct overwrite: any status, approved unless told otherwise
		data.Rule = submission.RuleAdmin
		if data.Status == "" {
			data.Status = submission.StatusApproved
		}
		if data.Notes == nil {
			note := adminUpdateNote
			data.Notes = &note
		}
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	data.ChangedBy = usr.ID
	sub, from, err := api.svc.Upsert(dept.ID, data)
	if err != nil {
		return errors.Wrap(err, "saving submission")
	}
	api.metrics.SubmissionStatus(string(sub.Status))

	switch {
	case usr.IsAdmin():
		api.audit.recordf(usr, "Updated Data", "Overwrote staffing data of %s for %s (%s -> %s).", dept.Name, sub.AcademicYear, from, sub.Status)
		if from != sub.Status {
			api.audit.notify(
				user.QueryFilter{Roles: []user.Role{user.RoleHOD}, DepartmentID: dept.ID},
				"Submission Updated",
				fmt.Sprintf("Your staffing data submission was updated by an administrator and is now %s.", sub.Status),
				"/hod/submissions",
			)
		}
	case sub.Status == submission.StatusPending:
		api.audit.recordf(usr, "Submitted Data", "Submitted staffing data of %s for %s.", dept.Name, sub.AcademicYear)
		if from != submission.StatusPending {
			api.audit.notify(
				user.QueryFilter{Roles: []user.Role{user.RoleDean}, FacultyID: dept.FacultyID},
				"New Submission",
				fmt.Sprintf("%s submitted staffing data for review.", dept.Name),
				"/dean/review",
			)
		}
	default:
		api.audit.recordf(usr, "Saved Draft", "Saved a draft of %s staffing data for %s.", dept.Name, sub.AcademicYear)
	}
	return ctx.JSON(http.StatusOK, sub)
}

// setStatus records a reviewer's decision on the department's current submission.
func (api *submissionApi) setStatus(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	dept, err := accessibleDepartment(ctx, api.dirSvc, usr, "id")
	if err != nil {
		return err
	}
	var data submission.StatusUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusUpdate")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	data.ChangedBy = usr.ID
	data.Rule = submission.RuleReviewer
	sub, from, err := api.svc.SetStatus(dept.ID, data)
	if err != nil {
		return errors.Wrap(err, "setting submission status")
	}
	api.metrics.SubmissionStatus(string(sub.Status))

	if from != sub.Status {
		var title, message string
		switch sub.Status {
		case submission.StatusApproved:
			title, message = "Submission Approved", "Your staffing data submission has been approved."
		case submission.StatusNeedsCorrection:
			title, message = "Correction Requested", "Your staffing data submission needs correction."
			if sub.Notes != "" {
				message += " Notes: " + sub.Notes
			}
		default:
			title, message = "Submission Updated", fmt.Sprintf("Your staffing data submission is now %s.", sub.Status)
		}
		api.audit.recordf(usr, title, "%s: %s -> %s.", dept.Name, from, sub.Status)
		api.audit.notify(
			user.QueryFilter{Roles: []user.Role{user.RoleHOD}, DepartmentID: dept.ID},
			title, message, "/hod/submissions",
		)
	}
	return ctx.JSON(http.StatusOK, sub)
}
