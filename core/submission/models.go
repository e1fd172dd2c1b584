package submission

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/mohdshetty/grap/core"
)

type AcademicRank string

// Academic ranks, most senior first.
const (
	Professor         AcademicRank = "Professor"
	Reader            AcademicRank = "Reader"
	SeniorLecturer    AcademicRank = "Senior Lecturer"
	LecturerI         AcademicRank = "Lecturer I"
	LecturerII        AcademicRank = "Lecturer II"
	AssistantLecturer AcademicRank = "Assistant Lecturer"
	GraduateAssistant AcademicRank = "Graduate Assistant"
)

type EmploymentType string

const (
	Permanent  EmploymentType = "Permanent"
	Sabbatical EmploymentType = "Sabbatical"
	Visiting   EmploymentType = "Visiting"
)

var (
	AllRanks           = []AcademicRank{Professor, Reader, SeniorLecturer, LecturerI, LecturerII, AssistantLecturer, GraduateAssistant}
	AllEmploymentTypes = []EmploymentType{Permanent, Sabbatical, Visiting}
)

func (r AcademicRank) IsValid() bool {
	for _, rank := range AllRanks {
		if r == rank {
			return true
		}
	}
	return false
}

func (t EmploymentType) IsValid() bool {
	for _, et := range AllEmploymentTypes {
		if t == et {
			return true
		}
	}
	return false
}

// StaffData holds a department's headcount per rank and employment type.
// Missing ranks or types count as zero.
type StaffData map[AcademicRank]map[EmploymentType]int

// Count sums all employment types of a rank.
func (d StaffData) Count(rank AcademicRank) int {
	var n int
	for _, c := range d[rank] {
		n += c
	}
	return n
}

// Total sums the whole table.
func (d StaffData) Total() int {
	var n int
	for rank := range d {
		n += d.Count(rank)
	}
	return n
}

func (d StaffData) Clone() StaffData {
	if d == nil {
		return nil
	}
	c := make(StaffData, len(d))
	for rank, types := range d {
		ct := make(map[EmploymentType]int, len(types))
		for et, n := range types {
			ct[et] = n
		}
		c[rank] = ct
	}
	return c
}

func (d StaffData) validate() error {
	var flds []core.FieldError
	for rank, types := range d {
		if !rank.IsValid() {
			flds = append(flds, core.FieldError{Field: "data", Error: fmt.Sprintf("unknown academic rank %q", rank)})
			continue
		}
		for et, n := range types {
			if !et.IsValid() {
				flds = append(flds, core.FieldError{Field: "data", Error: fmt.Sprintf("unknown employment type %q", et)})
			} else if n < 0 {
				flds = append(flds, core.FieldError{Field: "data", Error: fmt.Sprintf("%s/%s count cannot be negative", rank, et)})
			}
		}
	}
	if flds != nil {
		return core.NewValidationError(errors.New(flds[0].Error), flds...)
	}
	return nil
}

// Submission is one snapshot of a department's staff counts plus its review status.
type Submission struct {
	ID           int       `json:"id" yaml:"id"`
	DepartmentID int       `json:"department_id" yaml:"departmentId"`
	Data         StaffData `json:"data" yaml:"data"`
	Status       Status    `json:"status" yaml:"status"`
	LastUpdated  time.Time `json:"last_updated" yaml:"lastUpdated"` // UTC
	Notes        string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	AcademicYear string    `json:"academic_year" yaml:"academicYear"`
}

// StatusChange records one status transition of a submission.
type StatusChange struct {
	SubmissionID int       `json:"submission_id"`
	DepartmentID int       `json:"department_id"`
	From         Status    `json:"from"`
	To           Status    `json:"to"`
	ChangedBy    int       `json:"changed_by,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	ChangedAt    time.Time `json:"changed_at"`
}

// Upsert holds the content written by Service.Upsert.
// A nil Notes keeps the previous notes; an empty one clears them.
// A non-empty AcademicYear differing from the latest entry's starts a new entry.
type Upsert struct {
	Data         StaffData `json:"data" validate:"required"`
	Status       Status    `json:"status" validate:"required"`
	Notes        *string   `json:"notes"`
	AcademicYear string    `json:"academic_year" validate:"omitempty,academicyear"`
	ChangedBy    int       `json:"-"`
	Rule         Rule      `json:"-"`
}

// StatusUpdate holds the content written by Service.SetStatus.
type StatusUpdate struct {
	Status    Status  `json:"status" validate:"required"`
	Notes     *string `json:"notes"`
	ChangedBy int     `json:"-"`
	Rule      Rule    `json:"-"`
}

type QueryFilter struct {
	DepartmentIDs []int  `query:"department_id"`
	AcademicYear  string `query:"academic_year"`
	Status        Status `query:"status"`
}

func (qf QueryFilter) match(sub Submission) bool {
	if qf.AcademicYear != "" && sub.AcademicYear != qf.AcademicYear {
		return false
	}
	if qf.Status != "" && sub.Status != qf.Status {
		return false
	}
	if len(qf.DepartmentIDs) > 0 {
		for _, id := range qf.DepartmentIDs {
			if id == sub.DepartmentID {
				return true
			}
		}
		return false
	}
	return true
}
