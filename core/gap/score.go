package gap

import (
	"sort"

	"github.com/mohdshetty/grap/core/directory"
	"github.com/mohdshetty/grap/core/policy"
	"github.com/mohdshetty/grap/core/submission"
)

// Weights tune the dashboard ranking scores.
// A department scores Compliance*compliance% + Status*statusScore;
// a faculty scores Coverage*coverage% + (1-Coverage)*mean department score.
type Weights struct {
	Compliance float64 `json:"compliance"`
	Status     float64 `json:"status"`
	Coverage   float64 `json:"coverage"`
}

func DefaultWeights() Weights {
	return Weights{Compliance: 0.7, Status: 0.3, Coverage: 0.5}
}

// StatusScore rates how far along review a submission is.
func StatusScore(s submission.Status) float64 {
	switch s {
	case submission.StatusApproved:
		return 100
	case submission.StatusPending:
		return 50
	}
	return 0
}

type DepartmentScore struct {
	DepartmentID int               `json:"department_id"`
	Name         string            `json:"name"`
	FacultyID    int               `json:"faculty_id"`
	Compliance   float64           `json:"compliance"`
	Status       submission.Status `json:"status"`
	Score        float64           `json:"score"`
}

type FacultyScore struct {
	FacultyID        int     `json:"faculty_id"`
	Name             string  `json:"name"`
	Departments      int     `json:"departments"`
	Coverage         float64 `json:"coverage"`
	AverageDeptScore float64 `json:"average_department_score"`
	Score            float64 `json:"score"`
}

func scoreDepartment(dept directory.Department, sub *submission.Submission, reqs policy.Requirements, w Weights) DepartmentScore {
	ds := DepartmentScore{
		DepartmentID: dept.ID,
		Name:         dept.Name,
		FacultyID:    dept.FacultyID,
		Compliance:   Compliance(sub, reqs),
		Status:       submission.StatusNotSubmitted,
	}
	if sub != nil {
		ds.Status = sub.Status
	}
	ds.Score = ds.Compliance*w.Compliance + StatusScore(ds.Status)*w.Status
	return ds
}

// DepartmentScores scores every non-deleted department on its latest submission, best first.
// subs holds all entries in insertion order.
func DepartmentScores(depts []directory.Department, subs []submission.Submission, reqs policy.Requirements, w Weights) []DepartmentScore {
	latest := latestByDepartment(subs, nil)
	scores := make([]DepartmentScore, 0, len(depts))
	for _, dept := range depts {
		if dept.IsDeleted {
			continue
		}
		scores = append(scores, scoreDepartment(dept, latest[dept.ID], reqs, w))
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].DepartmentID < scores[j].DepartmentID
	})
	return scores
}

// FacultyScores scores every non-deleted faculty over its non-deleted departments, best first.
// A faculty without departments scores 0.
func FacultyScores(
	faculties []directory.Faculty,
	depts []directory.Department,
	subs []submission.Submission,
	reqs policy.Requirements,
	w Weights,
) []FacultyScore {
	latest := latestByDepartment(subs, nil)
	scores := make([]FacultyScore, 0, len(faculties))
	for _, fac := range faculties {
		if fac.IsDeleted {
			continue
		}
		fs := FacultyScore{FacultyID: fac.ID, Name: fac.Name}
		var covered int
		var total float64
		for _, dept := range depts {
			if dept.IsDeleted || dept.FacultyID != fac.ID {
				continue
			}
			fs.Departments++
			sub := latest[dept.ID]
			if sub != nil {
				covered++
			}
			total += scoreDepartment(dept, sub, reqs, w).Score
		}
		if fs.Departments > 0 {
			fs.Coverage = percent(covered, fs.Departments)
			fs.AverageDeptScore = total / float64(fs.Departments)
			fs.Score = fs.Coverage*w.Coverage + fs.AverageDeptScore*(1-w.Coverage)
		}
		scores = append(scores, fs)
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].FacultyID < scores[j].FacultyID
	})
	return scores
}

// TopDepartments returns at most n of the scores, which must already be ranked.
func TopDepartments(scores []DepartmentScore, n int) []DepartmentScore {
	if n >= 0 && len(scores) > n {
		return scores[:n]
	}
	return scores
}
