package submission

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/mohdshetty/grap/core"
)

var (
	NowFunc = func() time.Time { return time.Now().UTC() } // mockable

	// errors
	ErrNotFound      = errors.New("submission not found")
	ErrInvalidStatus = errors.New("invalid submission status")
)

type (
	// Repository is an append-only list of submissions plus their status changes.
	// Query methods return entries in insertion order.
	Repository interface {
		// SaveSubmission appends sub when sub.ID is 0 (assigning the next ID), else replaces the entry with that ID.
		SaveSubmission(sub Submission) (Submission, error)
		QueryAllSubmissions() ([]Submission, error)
		QuerySubmissionsByDepartment(deptID int) ([]Submission, error)
		AddStatusChange(ch StatusChange) error
		QueryStatusChanges(deptID int) ([]StatusChange, error)
	}

	// Service serialises every read-modify-write so concurrent callers never interleave.
	Service struct {
		repo        Repository
		defaultYear string
		mu          sync.Mutex
	}
)

func NewService(repo Repository, defaultYear string) *Service {
	return &Service{repo: repo, defaultYear: defaultYear}
}

// Latest picks the entry with the greatest LastUpdated; ties go to the later-inserted entry.
// subs must be in insertion order.
func Latest(subs []Submission) (Submission, bool) {
	idx := -1
	for i, sub := range subs {
		if idx < 0 || !sub.LastUpdated.Before(subs[idx].LastUpdated) {
			idx = i
		}
	}
	if idx < 0 {
		return Submission{}, false
	}
	return subs[idx], true
}

// LatestPerDepartment reduces subs (in insertion order) to the latest entry of each department, sorted by department ID.
func LatestPerDepartment(subs []Submission) []Submission {
	byDept := make(map[int][]Submission)
	for _, sub := range subs {
		byDept[sub.DepartmentID] = append(byDept[sub.DepartmentID], sub)
	}
	latest := make([]Submission, 0, len(byDept))
	for _, entries := range byDept {
		if sub, ok := Latest(entries); ok {
			latest = append(latest, sub)
		}
	}
	sort.Slice(latest, func(i, j int) bool { return latest[i].DepartmentID < latest[j].DepartmentID })
	return latest
}

func (svc *Service) latest(deptID int) (Submission, error) {
	subs, err := svc.repo.QuerySubmissionsByDepartment(deptID)
	if err != nil {
		return Submission{}, errors.Wrap(err, "querying department submissions")
	}
	sub, ok := Latest(subs)
	if !ok {
		return Submission{}, ErrNotFound
	}
	return sub, nil
}

// GetLatestForDepartment returns the current submission of a department.
func (svc *Service) GetLatestForDepartment(deptID int) (Submission, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.latest(deptID)
}

func validateStatus(s Status) error {
	if !s.IsValid() {
		msg := fmt.Sprintf("%s %q", ErrInvalidStatus, s)
		return core.NewValidationError(ErrInvalidStatus, core.FieldError{Field: "status", Error: msg})
	}
	return nil
}

// Upsert writes data and status to the department's latest entry, or appends a first entry.
// The entry keeps its academic year unless up.AcademicYear names another one, which starts a new entry.
// It also returns the status the entry had before (Not Submitted for a new entry).
func (svc *Service) Upsert(deptID int, up Upsert) (Submission, Status, error) {
	if err := validateStatus(up.Status); err != nil {
		return Submission{}, "", err
	}
	if err := up.Data.validate(); err != nil {
		return Submission{}, "", err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	prev, err := svc.latest(deptID)
	if err != nil && err != ErrNotFound {
		return Submission{}, "", err
	}
	exists := err == nil

	sub := prev
	from := prev.Status
	if !exists || (up.AcademicYear != "" && up.AcademicYear != prev.AcademicYear) {
		year := up.AcademicYear
		if year == "" {
			year = svc.defaultYear
		}
		sub = Submission{DepartmentID: deptID, AcademicYear: year}
		from = StatusNotSubmitted
	}
	if err := up.Rule.check(from, up.Status); err != nil {
		return Submission{}, "", err
	}
	sub.Data = up.Data.Clone()
	sub.Status = up.Status
	sub.LastUpdated = NowFunc()
	if up.Notes != nil {
		sub.Notes = *up.Notes
	}

	sub, err = svc.repo.SaveSubmission(sub)
	if err != nil {
		return Submission{}, "", errors.Wrap(err, "saving submission")
	}
	if err := svc.recordChange(sub, from, up.ChangedBy); err != nil {
		return Submission{}, "", err
	}
	return sub, from, nil
}

// SetStatus changes the status (and notes, when given) of the department's latest entry,
// and returns the entry with its previous status.
// Returns ErrNotFound when the department has no submission.
func (svc *Service) SetStatus(deptID int, su StatusUpdate) (Submission, Status, error) {
	if err := validateStatus(su.Status); err != nil {
		return Submission{}, "", err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	sub, err := svc.latest(deptID)
	if err != nil {
		return Submission{}, "", err
	}
	from := sub.Status
	if err := su.Rule.check(from, su.Status); err != nil {
		return Submission{}, "", err
	}
	sub.Status = su.Status
	sub.LastUpdated = NowFunc()
	if su.Notes != nil {
		sub.Notes = *su.Notes
	}

	sub, err = svc.repo.SaveSubmission(sub)
	if err != nil {
		return Submission{}, "", errors.Wrap(err, "saving submission")
	}
	if err := svc.recordChange(sub, from, su.ChangedBy); err != nil {
		return Submission{}, "", err
	}
	return sub, from, nil
}

func (svc *Service) recordChange(sub Submission, from Status, by int) error {
	if from == sub.Status {
		return nil
	}
	ch := StatusChange{
		SubmissionID: sub.ID,
		DepartmentID: sub.DepartmentID,
		From:         from,
		To:           sub.Status,
		ChangedBy:    by,
		Notes:        sub.Notes,
		ChangedAt:    sub.LastUpdated,
	}
	return errors.Wrap(svc.repo.AddStatusChange(ch), "recording status change")
}

// QueryLatest returns the latest entry of every department matching the filter.
// The filter applies to latest entries, not to history.
func (svc *Service) QueryLatest(filter QueryFilter) ([]Submission, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	subs, err := svc.repo.QueryAllSubmissions()
	if err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	latest := LatestPerDepartment(subs)
	filtered := make([]Submission, 0, len(latest))
	for _, sub := range latest {
		if filter.match(sub) {
			filtered = append(filtered, sub)
		}
	}
	return filtered, nil
}

// History returns every entry of a department (insertion order) and its status changes.
func (svc *Service) History(deptID int) ([]Submission, []StatusChange, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	subs, err := svc.repo.QuerySubmissionsByDepartment(deptID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "querying department submissions")
	}
	changes, err := svc.repo.QueryStatusChanges(deptID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "querying status changes")
	}
	return subs, changes, nil
}

// QueryAll returns every entry of every department, in insertion order.
func (svc *Service) QueryAll() ([]Submission, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.repo.QueryAllSubmissions()
}
