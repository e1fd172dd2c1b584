package notice

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mohdshetty/grap/core"
	"github.com/mohdshetty/grap/core/user"
)

type Announcement struct {
	ID         int       `json:"id" yaml:"id"`
	Title      string    `json:"title" yaml:"title"`
	Content    string    `json:"content" yaml:"content"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
	AuthorName string    `json:"author_name" yaml:"authorName"`
}

type NewAnnouncement struct {
	Title   string `json:"title" validate:"notblank"`
	Content string `json:"content" validate:"notblank"`
}

func (na *NewAnnouncement) clean() {
	na.Title = core.CleanString(na.Title)
	na.Content = core.CleanString(na.Content)
}

func (na *NewAnnouncement) Validate(validate *validator.Validate) error {
	na.clean()
	return validate.Struct(na)
}

type Notification struct {
	ID        int       `json:"id" yaml:"id"`
	UserID    int       `json:"user_id" yaml:"userId"`
	Title     string    `json:"title" yaml:"title"`
	Message   string    `json:"message" yaml:"message"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	IsRead    bool      `json:"is_read" yaml:"isRead"`
	Link      string    `json:"link,omitempty" yaml:"link,omitempty"`
}

// HistoryLog is one audit-trail entry.
type HistoryLog struct {
	ID        int       `json:"id" yaml:"id"`
	User      string    `json:"user" yaml:"user"`
	Role      user.Role `json:"role" yaml:"role"`
	Action    string    `json:"action" yaml:"action"`
	Details   string    `json:"details" yaml:"details"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

type HistoryFilter struct {
	Role user.Role `query:"role"`
}

type (
	TicketStatus   string
	TicketPriority string
	TicketCategory string
)

const (
	TicketOpen       TicketStatus = "Open"
	TicketInProgress TicketStatus = "In Progress"
	TicketResolved   TicketStatus = "Resolved"
	TicketClosed     TicketStatus = "Closed"

	PriorityLow    TicketPriority = "Low"
	PriorityMedium TicketPriority = "Medium"
	PriorityHigh   TicketPriority = "High"
	PriorityUrgent TicketPriority = "Urgent"

	CategoryTechnical      TicketCategory = "Technical"
	CategoryAcademic       TicketCategory = "Academic"
	CategoryAdministrative TicketCategory = "Administrative"
)

type SupportTicket struct {
	ID          int            `json:"id" yaml:"id"`
	Reference   string         `json:"reference" yaml:"reference"`
	UserID      int            `json:"user_id" yaml:"userId"`
	Subject     string         `json:"subject" yaml:"subject"`
	Description string         `json:"description" yaml:"description"`
	Category    TicketCategory `json:"category" yaml:"category"`
	Priority    TicketPriority `json:"priority" yaml:"priority"`
	Status      TicketStatus   `json:"status" yaml:"status"`
	CreatedAt   time.Time      `json:"created_at" yaml:"createdAt"`
	UpdatedAt   time.Time      `json:"updated_at" yaml:"updatedAt"`
}

type NewTicket struct {
	Subject     string         `json:"subject" validate:"notblank"`
	Description string         `json:"description" validate:"notblank"`
	Category    TicketCategory `json:"category" validate:"required,oneof=Technical Academic Administrative"`
	Priority    TicketPriority `json:"priority" validate:"required,oneof=Low Medium High Urgent"`
}

func (nt *NewTicket) clean() {
	nt.Subject = core.CleanString(nt.Subject)
	nt.Description = core.CleanString(nt.Description)
}

func (nt *NewTicket) Validate(validate *validator.Validate) error {
	nt.clean()
	return validate.Struct(nt)
}

type TicketStatusUpdate struct {
	Status TicketStatus `json:"status" validate:"required,oneof='Open' 'In Progress' 'Resolved' 'Closed'"`
}

func (tu TicketStatusUpdate) Validate(validate *validator.Validate) error { return validate.Struct(tu) }
