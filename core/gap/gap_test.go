package gap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mohdshetty/grap/core/directory"
	"github.com/mohdshetty/grap/core/policy"
	"github.com/mohdshetty/grap/core/submission"
)

var t0 = time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)

func sub(id, deptID int, status submission.Status, year string, age time.Duration, data submission.StaffData) submission.Submission {
	return submission.Submission{
		ID:           id,
		DepartmentID: deptID,
		Status:       status,
		AcademicYear: year,
		LastUpdated:  t0.Add(-age),
		Data:         data,
	}
}

func TestComputeGap(t *testing.T) {
	reqs := policy.Requirements{submission.Professor: 2}
	s := submission.Submission{Data: submission.StaffData{submission.Professor: {submission.Permanent: 1}}}

	gaps := ComputeGap(s, reqs)
	assert.Len(t, gaps, len(submission.AllRanks))
	assert.Equal(t, RankGap{Rank: submission.Professor, Required: 2, Current: 1, Gap: 1, PercentGap: 50}, gaps[0])
	for _, g := range gaps[1:] {
		assert.Equal(t, RankGap{Rank: g.Rank}, g, "unrequired ranks have no gap")
	}

	// surplus never yields a negative gap
	s.Data[submission.Professor][submission.Visiting] = 4
	assert.Equal(t, RankGap{Rank: submission.Professor, Required: 2, Current: 5}, ComputeGap(s, reqs)[0])
}

func TestCompliance(t *testing.T) {
	reqs := policy.DefaultRequirements() // Professor 2, Senior Lecturer 4, Lecturer I 6
	full := &submission.Submission{Data: submission.StaffData{
		submission.Professor:      {submission.Permanent: 2},
		submission.SeniorLecturer: {submission.Permanent: 3, submission.Sabbatical: 1},
		submission.LecturerI:      {submission.Visiting: 6},
	}}
	third := &submission.Submission{Data: submission.StaffData{submission.Professor: {submission.Permanent: 3}}}

	assert.Equal(t, 100.0, Compliance(full, reqs))
	assert.InDelta(t, 100.0/3, Compliance(third, reqs), 1e-9)
	assert.Equal(t, 0.0, Compliance(nil, reqs))
	assert.Equal(t, 100.0, Compliance(third, policy.Requirements{}))
}

func TestComputeBuckets(t *testing.T) {
	s := &submission.Submission{Data: submission.StaffData{
		submission.Professor:         {submission.Permanent: 1},
		submission.Reader:            {submission.Permanent: 2},
		submission.LecturerII:        {submission.Permanent: 2},
		submission.GraduateAssistant: {submission.Permanent: 2},
	}}
	got := ComputeBuckets(s, policy.DefaultBuckets())
	assert.Equal(t, []BucketGap{
		{Key: "profReader", Name: "Professor/Reader", Required: 2, Current: 3},
		{Key: "sl", Name: "Senior Lecturer", Required: 4, Gap: 4, PercentGap: 100},
		{Key: "l2Below", Name: "Lecturer II & Below", Required: 8, Current: 4, Gap: 4, PercentGap: 50},
	}, got)

	for _, b := range ComputeBuckets(nil, policy.DefaultBuckets()) {
		assert.Equal(t, 0, b.Current)
	}
}

func TestDepartmentScores(t *testing.T) {
	reqs := policy.Requirements{submission.Professor: 2}
	depts := []directory.Department{
		{ID: 1, Name: "A", FacultyID: 1},
		{ID: 2, Name: "B", FacultyID: 1},
		{ID: 3, Name: "C", FacultyID: 1},
		{ID: 4, Name: "D", FacultyID: 1, IsDeleted: true},
	}
	ok := submission.StaffData{submission.Professor: {submission.Permanent: 2}}
	subs := []submission.Submission{
		sub(1, 1, submission.StatusApproved, "2024-2025", 0, ok),
		sub(2, 2, submission.StatusPending, "2024-2025", 0, submission.StaffData{}),
		sub(3, 4, submission.StatusApproved, "2024-2025", 0, ok),
	}

	scores := DepartmentScores(depts, subs, reqs, DefaultWeights())
	assert.Len(t, scores, 3)
	assert.Equal(t, 1, scores[0].DepartmentID)
	assert.InDelta(t, 100.0, scores[0].Score, 1e-9) // 0.7*100 + 0.3*100
	assert.Equal(t, 2, scores[1].DepartmentID)
	assert.InDelta(t, 15.0, scores[1].Score, 1e-9) // 0.7*0 + 0.3*50
	assert.Equal(t, 3, scores[2].DepartmentID)
	assert.Equal(t, submission.StatusNotSubmitted, scores[2].Status)
	assert.Equal(t, 0.0, scores[2].Score)

	// weights are configurable
	w := Weights{Compliance: 1, Status: 0, Coverage: 0.5}
	scores = DepartmentScores(depts, subs, reqs, w)
	assert.InDelta(t, 100.0, scores[0].Score, 1e-9)
	assert.Equal(t, 0.0, scores[1].Score)

	assert.Len(t, TopDepartments(scores, 2), 2)
	assert.Len(t, TopDepartments(scores, 10), 3)
}

func TestFacultyScores(t *testing.T) {
	reqs := policy.Requirements{submission.Professor: 2}
	facs := []directory.Faculty{{ID: 1, Name: "Science"}, {ID: 2, Name: "Arts"}, {ID: 3, Name: "Gone", IsDeleted: true}}
	depts := []directory.Department{
		{ID: 1, FacultyID: 1},
		{ID: 2, FacultyID: 1},
	}
	ok := submission.StaffData{submission.Professor: {submission.Permanent: 2}}
	subs := []submission.Submission{sub(1, 1, submission.StatusApproved, "2024-2025", 0, ok)}

	scores := FacultyScores(facs, depts, subs, reqs, DefaultWeights())
	assert.Len(t, scores, 2)
	sci := scores[0]
	assert.Equal(t, 1, sci.FacultyID)
	assert.Equal(t, 2, sci.Departments)
	assert.Equal(t, 50.0, sci.Coverage)
	assert.InDelta(t, 50.0, sci.AverageDeptScore, 1e-9) // (100 + 0) / 2
	assert.InDelta(t, 50.0, sci.Score, 1e-9)            // 0.5*50 + 0.5*50

	arts := scores[1]
	assert.Equal(t, FacultyScore{FacultyID: 2, Name: "Arts"}, arts)
}

func TestUniversityGapReport(t *testing.T) {
	reqs := policy.Requirements{submission.Professor: 4}
	prof := func(n int) submission.StaffData {
		return submission.StaffData{submission.Professor: {submission.Permanent: n}}
	}
	subs := []submission.Submission{
		sub(1, 1, submission.StatusApproved, "2024-2025", 2*time.Hour, prof(1)),
		sub(2, 1, submission.StatusApproved, "2024-2025", time.Hour, prof(2)), // newer approved entry wins
		sub(3, 2, submission.StatusPending, "2024-2025", 0, prof(10)),         // not approved
		sub(4, 3, submission.StatusApproved, "2023-2024", 0, prof(10)),        // other year
		sub(5, 4, submission.StatusNeedsCorrection, "2024-2025", 0, prof(10)),
	}

	report := UniversityGapReport(subs, reqs, "2024-2025")
	assert.Equal(t, 1, report.Departments)
	assert.Equal(t, RankGap{Rank: submission.Professor, Required: 4, Current: 2, Gap: 2, PercentGap: 50}, report.Rows[0])
}

func TestComputeStats(t *testing.T) {
	subs := []submission.Submission{
		sub(1, 1, submission.StatusPending, "2024-2025", time.Hour, nil),
		sub(2, 1, submission.StatusApproved, "2024-2025", 0, nil),
		sub(3, 2, submission.StatusNeedsCorrection, "2024-2025", 0, nil),
		sub(4, 3, submission.StatusDraft, "2024-2025", 0, nil),
		sub(5, 4, submission.StatusPending, "2024-2025", 0, nil),
	}
	assert.Equal(t, Stats{Total: 4, Approved: 1, Pending: 1, NeedsCorrection: 1, Draft: 1}, ComputeStats(subs))
}

func TestSummaryReport(t *testing.T) {
	facs := []directory.Faculty{{ID: 1, Name: "Science"}}
	depts := []directory.Department{
		{ID: 1, Name: "Physics", FacultyID: 1},
		{ID: 2, Name: "Chemistry", FacultyID: 1},
		{ID: 3, Name: "Orphan", FacultyID: 9},
		{ID: 4, Name: "Gone", FacultyID: 1, IsDeleted: true},
	}
	data := submission.StaffData{submission.Reader: {submission.Permanent: 2, submission.Visiting: 1}}
	subs := []submission.Submission{sub(1, 1, submission.StatusPending, "2024-2025", 0, data)}

	assert.Equal(t, []SummaryRow{
		{FacultyID: 1, FacultyName: "Science", DepartmentID: 1, DepartmentName: "Physics", TotalStaff: 3, Status: submission.StatusPending},
		{FacultyID: 1, FacultyName: "Science", DepartmentID: 2, DepartmentName: "Chemistry", Status: submission.StatusNotSubmitted},
		{FacultyID: 9, FacultyName: "N/A", DepartmentID: 3, DepartmentName: "Orphan", Status: submission.StatusNotSubmitted},
	}, SummaryReport(facs, depts, subs, ""))

	rows := SummaryReport(facs, depts, subs, "2023-2024")
	assert.Equal(t, submission.StatusNotSubmitted, rows[0].Status)
}

func TestComputeFacultyAnalytics(t *testing.T) {
	depts := []directory.Department{
		{ID: 1, FacultyID: 1},
		{ID: 2, FacultyID: 1},
		{ID: 3, FacultyID: 1},
		{ID: 4, FacultyID: 2},
	}
	subs := []submission.Submission{
		sub(1, 1, submission.StatusApproved, "2024-2025", 0, submission.StaffData{
			submission.Professor: {submission.Permanent: 1},
			submission.LecturerI: {submission.Permanent: 4},
		}),
		sub(2, 2, submission.StatusPending, "2024-2025", 0, submission.StaffData{submission.Reader: {submission.Permanent: 9}}),
		sub(3, 4, submission.StatusApproved, "2024-2025", 0, submission.StaffData{submission.Reader: {submission.Permanent: 9}}),
	}
	fa := ComputeFacultyAnalytics(1, depts, subs)
	assert.Equal(t, 5, fa.TotalStaff)
	assert.Equal(t, 1, fa.SeniorStaff)
	assert.Equal(t, 2, fa.AcademicRanks)
	assert.Equal(t, 3, fa.Departments)
	assert.InDelta(t, 200.0/3, fa.SubmissionCompliance, 1e-9)
}

func TestFacultyBuckets(t *testing.T) {
	fac := directory.Faculty{ID: 1, Name: "Science"}
	depts := []directory.Department{{ID: 1, Name: "Physics", FacultyID: 1}, {ID: 2, Name: "Law", FacultyID: 2}}
	subs := []submission.Submission{
		sub(1, 1, submission.StatusPending, "2024-2025", 0, submission.StaffData{submission.SeniorLecturer: {submission.Permanent: 9}}),
	}
	report := FacultyBuckets(fac, depts, subs, policy.DefaultBuckets())
	assert.Len(t, report.Departments, 1)
	assert.Equal(t, 0, report.Departments[0].Buckets[1].Current, "pending data is left out")
}
