package notice

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mohdshetty/grap/core/user"
)

var (
	NowFunc = func() time.Time { return time.Now().UTC() } // mockable

	// errors
	ErrNotFound = errors.New("not found")
)

type (
	Repository interface {
		CreateAnnouncement(a Announcement) (Announcement, error)
		QueryAnnouncements() ([]Announcement, error)
		DeleteAnnouncement(id int) error

		CreateNotification(n Notification) (Notification, error)
		QueryNotifications(userID int) ([]Notification, error)
		// MarkNotificationsRead flags the given notifications of the user as read, or all of them when no id is given.
		// A given id that does not belong to the user yields ErrNotFound and nothing is changed.
		MarkNotificationsRead(userID int, ids ...int) error

		CreateHistoryLog(h HistoryLog) (HistoryLog, error)
		QueryHistoryLogs() ([]HistoryLog, error)

		CreateTicket(t SupportTicket) (SupportTicket, error)
		// QueryTickets returns the tickets opened by userID, or every ticket when userID is 0.
		QueryTickets(userID int) ([]SupportTicket, error)
		GetTicket(id int) (SupportTicket, error)
		UpdateTicket(t SupportTicket) (SupportTicket, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Announcements

// AddAnnouncement publishes an announcement signed by author.
func (svc *Service) AddAnnouncement(na NewAnnouncement, author string) (Announcement, error) {
	na.clean()
	return svc.repo.CreateAnnouncement(Announcement{
		Title:      na.Title,
		Content:    na.Content,
		Timestamp:  NowFunc(),
		AuthorName: author,
	})
}

// Announcements returns all announcements, newest first.
func (svc *Service) Announcements() ([]Announcement, error) {
	anns, err := svc.repo.QueryAnnouncements()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(anns, func(i, j int) bool {
		if !anns[i].Timestamp.Equal(anns[j].Timestamp) {
			return anns[i].Timestamp.After(anns[j].Timestamp)
		}
		return anns[i].ID > anns[j].ID
	})
	return anns, nil
}

func (svc *Service) DeleteAnnouncement(id int) error {
	return svc.repo.DeleteAnnouncement(id)
}

// Notifications

func (svc *Service) Notify(userID int, title, message, link string) (Notification, error) {
	return svc.repo.CreateNotification(Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Timestamp: NowFunc(),
		Link:      link,
	})
}

// Notifications returns the user's notifications, newest first.
func (svc *Service) Notifications(userID int) ([]Notification, error) {
	notes, err := svc.repo.QueryNotifications(userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(notes, func(i, j int) bool {
		if !notes[i].Timestamp.Equal(notes[j].Timestamp) {
			return notes[i].Timestamp.After(notes[j].Timestamp)
		}
		return notes[i].ID > notes[j].ID
	})
	return notes, nil
}

func (svc *Service) UnreadCount(userID int) (int, error) {
	notes, err := svc.repo.QueryNotifications(userID)
	if err != nil {
		return 0, err
	}
	var n int
	for _, note := range notes {
		if !note.IsRead {
			n++
		}
	}
	return n, nil
}

func (svc *Service) MarkAsRead(userID, id int) error {
	return svc.repo.MarkNotificationsRead(userID, id)
}

func (svc *Service) MarkAllAsRead(userID int) error {
	return svc.repo.MarkNotificationsRead(userID)
}

// History

// Record appends an audit-trail entry for an action taken by usr.
func (svc *Service) Record(usr user.User, action, details string) (HistoryLog, error) {
	return svc.repo.CreateHistoryLog(HistoryLog{
		User:      usr.Name,
		Role:      usr.Role,
		Action:    action,
		Details:   details,
		Timestamp: NowFunc(),
	})
}

// History returns the audit trail, newest first.
func (svc *Service) History(filter HistoryFilter) ([]HistoryLog, error) {
	logs, err := svc.repo.QueryHistoryLogs()
	if err != nil {
		return nil, err
	}
	filtered := make([]HistoryLog, 0, len(logs))
	for _, l := range logs {
		if filter.Role == "" || l.Role == filter.Role {
			filtered = append(filtered, l)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		if !filtered[i].Timestamp.Equal(filtered[j].Timestamp) {
			return filtered[i].Timestamp.After(filtered[j].Timestamp)
		}
		return filtered[i].ID > filtered[j].ID
	})
	return filtered, nil
}

// Support tickets

func (svc *Service) OpenTicket(userID int, nt NewTicket) (SupportTicket, error) {
	nt.clean()
	now := NowFunc()
	return svc.repo.CreateTicket(SupportTicket{
		Reference:   "TCK-" + strings.ToUpper(uuid.New().String()[:8]),
		UserID:      userID,
		Subject:     nt.Subject,
		Description: nt.Description,
		Category:    nt.Category,
		Priority:    nt.Priority,
		Status:      TicketOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// Tickets returns the tickets opened by userID (every ticket for 0), newest first.
func (svc *Service) Tickets(userID int) ([]SupportTicket, error) {
	tickets, err := svc.repo.QueryTickets(userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tickets, func(i, j int) bool {
		if !tickets[i].CreatedAt.Equal(tickets[j].CreatedAt) {
			return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
		}
		return tickets[i].ID > tickets[j].ID
	})
	return tickets, nil
}

func (svc *Service) GetTicket(id int) (SupportTicket, error) {
	return svc.repo.GetTicket(id)
}

func (svc *Service) SetTicketStatus(id int, status TicketStatus) (SupportTicket, error) {
	t, err := svc.repo.GetTicket(id)
	if err != nil {
		return SupportTicket{}, err
	}
	t.Status = status
	t.UpdatedAt = NowFunc()
	return svc.repo.UpdateTicket(t)
}
