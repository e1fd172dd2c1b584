package gap

import (
	"github.com/mohdshetty/grap/core/directory"
	"github.com/mohdshetty/grap/core/policy"
	"github.com/mohdshetty/grap/core/submission"
)

// latestByDepartment keeps, per department, the latest entry accepted by keep (nil keeps all).
// subs must be in insertion order.
func latestByDepartment(subs []submission.Submission, keep func(submission.Submission) bool) map[int]*submission.Submission {
	grouped := make(map[int][]submission.Submission)
	for _, sub := range subs {
		if keep == nil || keep(sub) {
			grouped[sub.DepartmentID] = append(grouped[sub.DepartmentID], sub)
		}
	}
	latest := make(map[int]*submission.Submission, len(grouped))
	for id, entries := range grouped {
		if sub, ok := submission.Latest(entries); ok {
			s := sub
			latest[id] = &s
		}
	}
	return latest
}

func approvedIn(year string) func(submission.Submission) bool {
	return func(sub submission.Submission) bool {
		return sub.Status == submission.StatusApproved && (year == "" || sub.AcademicYear == year)
	}
}

type Stats struct {
	Total           int `json:"total"`
	Approved        int `json:"approved"`
	Pending         int `json:"pending"`
	NeedsCorrection int `json:"needs_correction"`
	Draft           int `json:"draft"`
}

// ComputeStats counts latest submissions per status.
func ComputeStats(subs []submission.Submission) Stats {
	var st Stats
	for _, sub := range latestByDepartment(subs, nil) {
		st.Total++
		switch sub.Status {
		case submission.StatusApproved:
			st.Approved++
		case submission.StatusPending:
			st.Pending++
		case submission.StatusNeedsCorrection:
			st.NeedsCorrection++
		case submission.StatusDraft:
			st.Draft++
		}
	}
	return st
}

type GapReport struct {
	AcademicYear string    `json:"academic_year"`
	Departments  int       `json:"departments"`
	Rows         []RankGap `json:"rows"`
}

// UniversityGapReport totals, per rank, the latest approved submission of every department for the year
// and compares the totals with the requirement table.
func UniversityGapReport(subs []submission.Submission, reqs policy.Requirements, year string) GapReport {
	totals := make(map[submission.AcademicRank]int, len(submission.AllRanks))
	latest := latestByDepartment(subs, approvedIn(year))
	for _, sub := range latest {
		for _, rank := range submission.AllRanks {
			totals[rank] += sub.Data.Count(rank)
		}
	}
	report := GapReport{AcademicYear: year, Departments: len(latest)}
	for _, rank := range submission.AllRanks {
		report.Rows = append(report.Rows, newRankGap(rank, reqs[rank], totals[rank]))
	}
	return report
}

type SummaryRow struct {
	FacultyID      int               `json:"faculty_id"`
	FacultyName    string            `json:"faculty_name"`
	DepartmentID   int               `json:"department_id"`
	DepartmentName string            `json:"department_name"`
	TotalStaff     int               `json:"total_staff"`
	Status         submission.Status `json:"status"`
}

// SummaryReport lists every non-deleted department with the headcount and status of
// its latest submission for the year ("" for any year).
func SummaryReport(faculties []directory.Faculty, depts []directory.Department, subs []submission.Submission, year string) []SummaryRow {
	names := make(map[int]string, len(faculties))
	for _, fac := range faculties {
		names[fac.ID] = fac.Name
	}
	latest := latestByDepartment(subs, func(sub submission.Submission) bool {
		return year == "" || sub.AcademicYear == year
	})

	rows := make([]SummaryRow, 0, len(depts))
	for _, dept := range depts {
		if dept.IsDeleted {
			continue
		}
		row := SummaryRow{
			FacultyID:      dept.FacultyID,
			FacultyName:    names[dept.FacultyID],
			DepartmentID:   dept.ID,
			DepartmentName: dept.Name,
			Status:         submission.StatusNotSubmitted,
		}
		if row.FacultyName == "" {
			row.FacultyName = "N/A"
		}
		if sub := latest[dept.ID]; sub != nil {
			row.TotalStaff = sub.Data.Total()
			row.Status = sub.Status
		}
		rows = append(rows, row)
	}
	return rows
}

type DepartmentBuckets struct {
	DepartmentID int         `json:"department_id"`
	Name         string      `json:"name"`
	Buckets      []BucketGap `json:"buckets"`
}

type FacultyBucketReport struct {
	FacultyID   int                 `json:"faculty_id"`
	Name        string              `json:"name"`
	Departments []DepartmentBuckets `json:"departments"`
}

// FacultyBuckets assesses each non-deleted department of the faculty by rank bucket,
// using the department's latest approved submission.
func FacultyBuckets(fac directory.Faculty, depts []directory.Department, subs []submission.Submission, buckets []policy.Bucket) FacultyBucketReport {
	latest := latestByDepartment(subs, approvedIn(""))
	report := FacultyBucketReport{FacultyID: fac.ID, Name: fac.Name, Departments: []DepartmentBuckets{}}
	for _, dept := range depts {
		if dept.IsDeleted || dept.FacultyID != fac.ID {
			continue
		}
		report.Departments = append(report.Departments, DepartmentBuckets{
			DepartmentID: dept.ID,
			Name:         dept.Name,
			Buckets:      ComputeBuckets(latest[dept.ID], buckets),
		})
	}
	return report
}

type FacultyAnalytics struct {
	FacultyID            int     `json:"faculty_id"`
	TotalStaff           int     `json:"total_staff"`
	SeniorStaff          int     `json:"senior_staff"`
	AcademicRanks        int     `json:"academic_ranks"`
	Departments          int     `json:"departments"`
	SubmissionCompliance float64 `json:"submission_compliance"`
}

// ComputeFacultyAnalytics summarises a faculty: staff figures come from the latest approved submission
// of each department, compliance is the share of departments that submitted anything.
func ComputeFacultyAnalytics(facultyID int, depts []directory.Department, subs []submission.Submission) FacultyAnalytics {
	fa := FacultyAnalytics{FacultyID: facultyID}
	inFaculty := make(map[int]bool)
	for _, dept := range depts {
		if !dept.IsDeleted && dept.FacultyID == facultyID {
			inFaculty[dept.ID] = true
		}
	}
	fa.Departments = len(inFaculty)

	ranks := make(map[submission.AcademicRank]bool)
	for id, sub := range latestByDepartment(subs, approvedIn("")) {
		if !inFaculty[id] {
			continue
		}
		for _, rank := range submission.AllRanks {
			n := sub.Data.Count(rank)
			if n == 0 {
				continue
			}
			ranks[rank] = true
			fa.TotalStaff += n
			if rank == submission.Professor || rank == submission.Reader {
				fa.SeniorStaff += n
			}
		}
	}
	fa.AcademicRanks = len(ranks)

	var submitted int
	for id := range latestByDepartment(subs, nil) {
		if inFaculty[id] {
			submitted++
		}
	}
	fa.SubmissionCompliance = percent(submitted, fa.Departments)
	return fa
}
