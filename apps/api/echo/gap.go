package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mohdshetty/grap/core"
	"github.com/mohdshetty/grap/core/directory"
	"github.com/mohdshetty/grap/core/gap"
	"github.com/mohdshetty/grap/core/policy"
	"github.com/mohdshetty/grap/core/submission"
	"github.com/mohdshetty/grap/core/user"
)

const defaultTopDepartments = 5

type gapApi struct {
	conf    *core.Config
	subSvc  *submission.Service
	dirSvc  *directory.Service
	policy  *policy.Store
	weights gap.Weights
}

func registerGapAPI(g *echo.Group, auth []echo.MiddlewareFunc, api *gapApi) {
	gg := g.Group("/gap", auth...)
	gg.GET("/departments/:id", api.department, featureMiddleware(api.policy, policy.FeatureDepartmentAnalytics))
	gg.GET("/faculties/:id", api.faculty, featureMiddleware(api.policy, policy.FeatureFacultyAnalytics))

	rg := g.Group("/reports", auth...)
	rg.Use(featureMiddleware(api.policy, policy.FeatureFacultyReports))
	rg.GET("/university", api.university)
	rg.GET("/summary", api.summary)
	rg.GET("/stats", api.stats)
	rg.GET("/scores", api.scores)
}

type (
	DepartmentGap struct {
		DepartmentID int                    `json:"department_id"`
		Submission   *submission.Submission `json:"submission"`
		Gaps         []gap.RankGap          `json:"gaps"`
		Compliance   float64                `json:"compliance"`
		Buckets      []gap.BucketGap        `json:"buckets"`
	}

	FacultyGap struct {
		Analytics gap.FacultyAnalytics    `json:"analytics"`
		Buckets   gap.FacultyBucketReport `json:"buckets"`
	}

	Scores struct {
		Weights     gap.Weights           `json:"weights"`
		Faculties   []gap.FacultyScore    `json:"faculties"`
		Departments []gap.DepartmentScore `json:"departments"`
	}
)

func (api *gapApi) year(ctx echo.Context) string {
	if year := ctx.QueryParam("academic_year"); year != "" {
		return year
	}
	return api.conf.AcademicYear
}

// scope returns the departments a report may cover: a Dean's faculty, or everything.
func (api *gapApi) scope(usr user.User) ([]directory.Faculty, []directory.Department, error) {
	faculties, err := api.dirSvc.QueryFaculties(false)
	if err != nil {
		return nil, nil, errors.Wrap(err, "querying faculties")
	}
	filter := directory.QueryFilter{}
	if usr.IsDean() {
		filter.FacultyID = usr.FacultyID
		scoped := faculties[:0:0]
		for _, fac := range faculties {
			if fac.ID == usr.FacultyID {
				scoped = append(scoped, fac)
			}
		}
		faculties = scoped
	}
	depts, err := api.dirSvc.QueryDepartments(filter)
	if err != nil {
		return nil, nil, errors.Wrap(err, "querying departments")
	}
	return faculties, depts, nil
}

// scopedSubmissions returns every entry of the given departments, in insertion order.
func (api *gapApi) scopedSubmissions(depts []directory.Department) ([]submission.Submission, error) {
	all, err := api.subSvc.QueryAll()
	if err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	in := make(map[int]bool, len(depts))
	for _, dept := range depts {
		in[dept.ID] = true
	}
	subs := make([]submission.Submission, 0, len(all))
	for _, sub := range all {
		if in[sub.DepartmentID] {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

// Handlers

func (api *gapApi) department(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	dept, err := accessibleDepartment(ctx, api.dirSvc, usr, "id")
	if err != nil {
		return err
	}

	reqs := api.policy.Requirements()
	resp := DepartmentGap{DepartmentID: dept.ID}
	sub, err := api.subSvc.GetLatestForDepartment(dept.ID)
	switch {
	case err == nil:
		resp.Submission = &sub
	case errors.Cause(err) != submission.ErrNotFound:
		return errors.Wrap(err, "finding latest submission")
	}
	resp.Gaps = gap.ComputeGap(sub, reqs)
	resp.Compliance = gap.Compliance(resp.Submission, reqs)
	resp.Buckets = gap.ComputeBuckets(resp.Submission, api.policy.Buckets())
	return ctx.JSON(http.StatusOK, resp)
}

func (api *gapApi) faculty(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if usr.IsDean() && usr.FacultyID != id {
		return errHttpNotFound
	}
	fac, err := api.dirSvc.GetFaculty(id)
	if err != nil {
		return errors.Wrap(err, "finding faculty")
	}

	depts, err := api.dirSvc.QueryDepartments(directory.QueryFilter{FacultyID: fac.ID})
	if err != nil {
		return errors.Wrap(err, "querying departments")
	}
	subs, err := api.scopedSubmissions(depts)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, FacultyGap{
		Analytics: gap.ComputeFacultyAnalytics(fac.ID, depts, subs),
		Buckets:   gap.FacultyBuckets(fac, depts, subs, api.policy.Buckets()),
	})
}

func (api *gapApi) university(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	_, depts, err := api.scope(usr)
	if err != nil {
		return err
	}
	subs, err := api.scopedSubmissions(depts)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, gap.UniversityGapReport(subs, api.policy.Requirements(), api.year(ctx)))
}

func (api *gapApi) summary(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	faculties, depts, err := api.scope(usr)
	if err != nil {
		return err
	}
	subs, err := api.scopedSubmissions(depts)
	if err != nil {
		return err
	}
	// an explicit empty academic_year asks for any year
	year := api.year(ctx)
	if _, ok := ctx.QueryParams()["academic_year"]; ok && ctx.QueryParam("academic_year") == "" {
		year = ""
	}
	return ctx.JSON(http.StatusOK, gap.SummaryReport(faculties, depts, subs, year))
}

func (api *gapApi) stats(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	_, depts, err := api.scope(usr)
	if err != nil {
		return err
	}
	subs, err := api.scopedSubmissions(depts)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, gap.ComputeStats(subs))
}

func (api *gapApi) scores(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	faculties, depts, err := api.scope(usr)
	if err != nil {
		return err
	}
	subs, err := api.scopedSubmissions(depts)
	if err != nil {
		return err
	}
	reqs := api.policy.Requirements()
	deptScores := gap.DepartmentScores(depts, subs, reqs, api.weights)
	return ctx.JSON(http.StatusOK, Scores{
		Weights:     api.weights,
		Faculties:   gap.FacultyScores(faculties, depts, subs, reqs, api.weights),
		Departments: gap.TopDepartments(deptScores, queryInt(ctx, "limit", defaultTopDepartments)),
	})
}
