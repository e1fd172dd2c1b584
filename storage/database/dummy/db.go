package dummydb

import (
	"sync"
	"time"

	"github.com/mohdshetty/grap/core/directory"
	"github.com/mohdshetty/grap/core/notice"
	"github.com/mohdshetty/grap/core/submission"
	"github.com/mohdshetty/grap/core/user"
	"github.com/mohdshetty/grap/storage/database"
)

type (
	// DB keeps every table in memory. Each table has its own lock; rules spanning
	// several rows of a table are checked while holding that table's write lock.
	DB struct {
		user       *userTable
		directory  *directoryTable
		submission *submissionTable
		notice     *noticeTable
	}

	userTable struct {
		sync.RWMutex
		table map[int]*user.User
	}

	directoryTable struct {
		sync.RWMutex
		faculties   map[int]*directory.Faculty
		departments map[int]*directory.Department
	}

	submissionTable struct {
		sync.RWMutex
		entries []submission.Submission // insertion order
		changes []submission.StatusChange
	}

	noticeTable struct {
		sync.RWMutex
		announcements []notice.Announcement
		notifications []notice.Notification
		history       []notice.HistoryLog
		tickets       []notice.SupportTicket
	}
)

// Open returns an empty database, or one filled with recs.
func Open(recs *database.Records) (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[int]*user.User)},
		directory: &directoryTable{
			faculties:   make(map[int]*directory.Faculty),
			departments: make(map[int]*directory.Department),
		},
		submission: &submissionTable{},
		notice:     &noticeTable{},
	}
	if recs == nil {
		return db, nil
	}

	for _, fac := range recs.Faculties {
		fac := fac
		db.directory.faculties[fac.ID] = &fac
	}
	for _, dept := range recs.Departments {
		dept := dept
		db.directory.departments[dept.ID] = &dept
	}
	for _, usr := range recs.Users {
		usr := usr
		db.user.table[usr.ID] = &usr
	}
	for _, sub := range recs.Submissions {
		sub.Data = sub.Data.Clone()
		db.submission.entries = append(db.submission.entries, sub)
	}
	db.notice.announcements = append(db.notice.announcements, recs.Announcements...)
	db.notice.notifications = append(db.notice.notifications, recs.Notifications...)
	db.notice.history = append(db.notice.history, recs.HistoryLogs...)
	db.notice.tickets = append(db.notice.tickets, recs.Tickets...)
	return db, nil
}

// OpenSeeded returns a database filled from the seed file at path, or from the bundled demo dataset when path is empty.
func OpenSeeded(path string) (*DB, error) {
	var (
		seed *database.Seed
		err  error
	)
	if path != "" {
		seed, err = database.LoadSeed(path)
	} else {
		seed, err = database.DefaultSeed()
	}
	if err != nil {
		return nil, err
	}
	recs, err := seed.Resolve(time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return Open(recs)
}
