package policy

import (
	"fmt"

	"github.com/mohdshetty/grap/core"
	"github.com/mohdshetty/grap/core/user"
)

// Feature is a capability the Admin can grant to HODs and Deans.
type Feature string

const (
	FeatureDashboard           Feature = "dashboard"
	FeatureDataSubmission      Feature = "dataSubmission"
	FeatureSubmissionHistory   Feature = "submissionHistory"
	FeatureDepartmentAnalytics Feature = "departmentAnalytics"
	FeatureReviewSubmissions   Feature = "reviewSubmissions"
	FeatureFacultyAnalytics    Feature = "facultyAnalytics"
	FeatureFacultyReports      Feature = "facultyReports"
	FeatureManageStructure     Feature = "manageStructure"
	FeatureContactDirectory    Feature = "contactDirectory"
	FeatureSettings            Feature = "settings"
)

type FeatureInfo struct {
	ID          Feature     `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	AppliesTo   []user.Role `json:"applies_to"`
}

var hodAndDean = []user.Role{user.RoleHOD, user.RoleDean}

// Features is the catalog of controllable features.
var Features = []FeatureInfo{
	{FeatureDashboard, "View Dashboard", "Access the main dashboard view with stats and summaries.", hodAndDean},
	{FeatureDataSubmission, "Submit Staffing Data", "Allows creating, editing, and submitting departmental staffing data.", []user.Role{user.RoleHOD}},
	{FeatureSubmissionHistory, "View Submission History", "Access to view past submissions for their department.", []user.Role{user.RoleHOD}},
	{FeatureDepartmentAnalytics, "View Department Analytics", "Access to view analytics specific to their department.", []user.Role{user.RoleHOD}},
	{FeatureReviewSubmissions, "Review Submissions", "Allows approving or rejecting submissions from HODs within the faculty.", []user.Role{user.RoleDean}},
	{FeatureFacultyAnalytics, "View Faculty Analytics", "Access to view analytics for the entire faculty.", []user.Role{user.RoleDean}},
	{FeatureFacultyReports, "Generate Faculty Reports", "Allows generating summary and gap analysis reports for the faculty.", []user.Role{user.RoleDean}},
	{FeatureManageStructure, "Manage Departments & HODs", "Allows adding new departments and registering new HODs within the faculty.", []user.Role{user.RoleDean}},
	{FeatureContactDirectory, "Use Contact Directory", "Access to the support/contact page to message other staff.", hodAndDean},
	{FeatureSettings, "Access Own Settings", "Allows users to change their own profile information and password.", hodAndDean},
}

func (f Feature) info() (FeatureInfo, bool) {
	for _, fi := range Features {
		if fi.ID == f {
			return fi, true
		}
	}
	return FeatureInfo{}, false
}

func (fi FeatureInfo) appliesTo(role user.Role) bool {
	for _, r := range fi.AppliesTo {
		if r == role {
			return true
		}
	}
	return false
}

type RolePermission struct {
	HOD  bool `json:"hod" yaml:"hod"`
	Dean bool `json:"dean" yaml:"dean"`
}

// Permissions maps each feature to the roles allowed to use it. Admins are always allowed.
type Permissions map[Feature]RolePermission

func DefaultPermissions() Permissions {
	return Permissions{
		FeatureDashboard:           {HOD: true, Dean: true},
		FeatureDataSubmission:      {HOD: true},
		FeatureSubmissionHistory:   {HOD: true},
		FeatureDepartmentAnalytics: {HOD: true},
		FeatureReviewSubmissions:   {Dean: true},
		FeatureFacultyAnalytics:    {Dean: true},
		FeatureFacultyReports:      {Dean: true},
		FeatureManageStructure:     {Dean: true},
		FeatureContactDirectory:    {HOD: true, Dean: true},
		FeatureSettings:            {HOD: true, Dean: true},
	}
}

// Allowed reports whether role may use feature f.
func (p Permissions) Allowed(role user.Role, f Feature) bool {
	switch role {
	case user.RoleAdmin:
		return true
	case user.RoleHOD:
		return p[f].HOD
	case user.RoleDean:
		return p[f].Dean
	}
	return false
}

func (p Permissions) Clone() Permissions {
	c := make(Permissions, len(p))
	for f, rp := range p {
		c[f] = rp
	}
	return c
}

// Validate rejects unknown features and grants to roles a feature does not apply to.
func (p Permissions) Validate() error {
	var flds []core.FieldError
	for f, rp := range p {
		fi, ok := f.info()
		if !ok {
			flds = append(flds, core.FieldError{Field: string(f), Error: "unknown feature"})
			continue
		}
		if rp.HOD && !fi.appliesTo(user.RoleHOD) {
			flds = append(flds, core.FieldError{Field: string(f), Error: fmt.Sprintf("%s does not apply to %s", fi.Name, user.RoleHOD)})
		}
		if rp.Dean && !fi.appliesTo(user.RoleDean) {
			flds = append(flds, core.FieldError{Field: string(f), Error: fmt.Sprintf("%s does not apply to %s", fi.Name, user.RoleDean)})
		}
	}
	if flds != nil {
		return core.NewValidationError(fmt.Errorf("invalid permissions"), flds...)
	}
	return nil
}
