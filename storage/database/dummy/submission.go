package dummydb

import (
	"github.com/mohdshetty/grap/core/submission"
)

type submissionRepository struct {
	db *submissionTable
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *DB) submission.Repository {
	return &submissionRepository{db: db.submission}
}

func (repo *submissionRepository) SaveSubmission(sub submission.Submission) (submission.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sub.Data = sub.Data.Clone()
	if sub.ID == 0 {
		var maxID int
		for _, e := range repo.db.entries {
			if e.ID > maxID {
				maxID = e.ID
			}
		}
		sub.ID = maxID + 1
		repo.db.entries = append(repo.db.entries, sub)
		return sub, nil
	}

	for i, e := range repo.db.entries {
		if e.ID == sub.ID {
			repo.db.entries[i] = sub
			return sub, nil
		}
	}
	return submission.Submission{}, submission.ErrNotFound
}

func (repo *submissionRepository) QueryAllSubmissions() ([]submission.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subs := make([]submission.Submission, 0, len(repo.db.entries))
	for _, e := range repo.db.entries {
		e.Data = e.Data.Clone()
		subs = append(subs, e)
	}
	return subs, nil
}

func (repo *submissionRepository) QuerySubmissionsByDepartment(deptID int) ([]submission.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subs := make([]submission.Submission, 0)
	for _, e := range repo.db.entries {
		if e.DepartmentID == deptID {
			e.Data = e.Data.Clone()
			subs = append(subs, e)
		}
	}
	return subs, nil
}

func (repo *submissionRepository) AddStatusChange(ch submission.StatusChange) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.changes = append(repo.db.changes, ch)
	return nil
}

func (repo *submissionRepository) QueryStatusChanges(deptID int) ([]submission.StatusChange, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	changes := make([]submission.StatusChange, 0)
	for _, ch := range repo.db.changes {
		if ch.DepartmentID == deptID {
			changes = append(changes, ch)
		}
	}
	return changes, nil
}
