package dummydb

import (
	"github.com/mohdshetty/grap/core/notice"
)

type noticeRepository struct {
	db *noticeTable
}

var _ notice.Repository = (*noticeRepository)(nil) // interface compliance check

func NewNoticeRepository(db *DB) notice.Repository {
	return &noticeRepository{db: db.notice}
}

func (repo *noticeRepository) CreateAnnouncement(a notice.Announcement) (notice.Announcement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var maxID int
	for _, e := range repo.db.announcements {
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	a.ID = maxID + 1
	repo.db.announcements = append(repo.db.announcements, a)
	return a, nil
}

func (repo *noticeRepository) QueryAnnouncements() ([]notice.Announcement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return append([]notice.Announcement{}, repo.db.announcements...), nil
}

func (repo *noticeRepository) DeleteAnnouncement(id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i, a := range repo.db.announcements {
		if a.ID == id {
			repo.db.announcements = append(repo.db.announcements[:i], repo.db.announcements[i+1:]...)
			return nil
		}
	}
	return notice.ErrNotFound
}

func (repo *noticeRepository) CreateNotification(n notice.Notification) (notice.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var maxID int
	for _, e := range repo.db.notifications {
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	n.ID = maxID + 1
	repo.db.notifications = append(repo.db.notifications, n)
	return n, nil
}

func (repo *noticeRepository) QueryNotifications(userID int) ([]notice.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	notes := make([]notice.Notification, 0)
	for _, n := range repo.db.notifications {
		if n.UserID == userID {
			notes = append(notes, n)
		}
	}
	return notes, nil
}

func (repo *noticeRepository) MarkNotificationsRead(userID int, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	idx := make([]int, 0)
	if len(ids) == 0 {
		for i, n := range repo.db.notifications {
			if n.UserID == userID {
				idx = append(idx, i)
			}
		}
	}
	for _, id := range ids {
		found := false
		for i, n := range repo.db.notifications {
			if n.ID == id && n.UserID == userID {
				idx = append(idx, i)
				found = true
				break
			}
		}
		if !found {
			return notice.ErrNotFound
		}
	}
	for _, i := range idx {
		repo.db.notifications[i].IsRead = true
	}
	return nil
}

func (repo *noticeRepository) CreateHistoryLog(h notice.HistoryLog) (notice.HistoryLog, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var maxID int
	for _, e := range repo.db.history {
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	h.ID = maxID + 1
	repo.db.history = append(repo.db.history, h)
	return h, nil
}

func (repo *noticeRepository) QueryHistoryLogs() ([]notice.HistoryLog, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return append([]notice.HistoryLog{}, repo.db.history...), nil
}

func (repo *noticeRepository) CreateTicket(t notice.SupportTicket) (notice.SupportTicket, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var maxID int
	for _, e := range repo.db.tickets {
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	t.ID = maxID + 1
	repo.db.tickets = append(repo.db.tickets, t)
	return t, nil
}

func (repo *noticeRepository) QueryTickets(userID int) ([]notice.SupportTicket, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tickets := make([]notice.SupportTicket, 0)
	for _, t := range repo.db.tickets {
		if userID == 0 || t.UserID == userID {
			tickets = append(tickets, t)
		}
	}
	return tickets, nil
}

func (repo *noticeRepository) GetTicket(id int) (notice.SupportTicket, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, t := range repo.db.tickets {
		if t.ID == id {
			return t, nil
		}
	}
	return notice.SupportTicket{}, notice.ErrNotFound
}

func (repo *noticeRepository) UpdateTicket(t notice.SupportTicket) (notice.SupportTicket, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i, e := range repo.db.tickets {
		if e.ID == t.ID {
			repo.db.tickets[i] = t
			return t, nil
		}
	}
	return notice.SupportTicket{}, notice.ErrNotFound
}
