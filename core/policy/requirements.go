package policy

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/mohdshetty/grap/core"
	"github.com/mohdshetty/grap/core/submission"
)

// Requirements maps an academic rank to the minimum headcount a department needs (the NUC requirement).
// Ranks absent from the table are not required.
type Requirements map[submission.AcademicRank]int

func DefaultRequirements() Requirements {
	return Requirements{
		submission.Professor:      2,
		submission.SeniorLecturer: 4,
		submission.LecturerI:      6,
	}
}

// Ranks returns the required ranks (minimum > 0), most senior first.
func (r Requirements) Ranks() []submission.AcademicRank {
	ranks := make([]submission.AcademicRank, 0, len(r))
	for _, rank := range submission.AllRanks {
		if r[rank] > 0 {
			ranks = append(ranks, rank)
		}
	}
	return ranks
}

func (r Requirements) Clone() Requirements {
	c := make(Requirements, len(r))
	for rank, n := range r {
		c[rank] = n
	}
	return c
}

func (r Requirements) Validate() error {
	var flds []core.FieldError
	for rank, n := range r {
		switch {
		case !rank.IsValid():
			flds = append(flds, core.FieldError{Field: string(rank), Error: "unknown academic rank"})
		case n < 0:
			flds = append(flds, core.FieldError{Field: string(rank), Error: "requirement cannot be negative"})
		}
	}
	if flds != nil {
		return core.NewValidationError(errors.New("invalid requirements"), flds...)
	}
	return nil
}

// Bucket groups ranks that are assessed together in faculty reports.
type Bucket struct {
	Key      string                    `json:"key" yaml:"key"`
	Name     string                    `json:"name" yaml:"name"`
	Ranks    []submission.AcademicRank `json:"ranks" yaml:"ranks"`
	Required int                       `json:"required" yaml:"required"`
}

func DefaultBuckets() []Bucket {
	return []Bucket{
		{Key: "profReader", Name: "Professor/Reader", Ranks: []submission.AcademicRank{submission.Professor, submission.Reader}, Required: 2},
		{Key: "sl", Name: "Senior Lecturer", Ranks: []submission.AcademicRank{submission.SeniorLecturer}, Required: 4},
		{
			Key:      "l2Below",
			Name:     "Lecturer II & Below",
			Ranks:    []submission.AcademicRank{submission.LecturerII, submission.AssistantLecturer, submission.GraduateAssistant},
			Required: 8,
		},
	}
}

func validateBuckets(buckets []Bucket) error {
	seen := make(map[string]bool, len(buckets))
	for _, b := range buckets {
		if b.Key == "" || seen[b.Key] {
			return core.NewValidationError(fmt.Errorf("bucket key %q is empty or duplicated", b.Key))
		}
		seen[b.Key] = true
		if b.Required < 0 {
			return core.NewValidationError(fmt.Errorf("bucket %q: requirement cannot be negative", b.Key))
		}
		for _, rank := range b.Ranks {
			if !rank.IsValid() {
				return core.NewValidationError(fmt.Errorf("bucket %q: unknown academic rank %q", b.Key, rank))
			}
		}
	}
	return nil
}
