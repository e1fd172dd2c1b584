package echoapi_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/mohdshetty/grap/apps/api/echo"
	"github.com/mohdshetty/grap/core/notice"
)

func Test_noticeApi_announcements(t *testing.T) {
	app := setup(t)

	admin := tokenOf(t, adminID)
	anns, err := notice.NewService(noticeRepo).Announcements()
	if err != nil {
		t.Fatalf("Announcements() failed: %v", err)
	}
	seeded := make([]interface{}, len(anns))
	for i := range anns {
		seeded[i] = anns[i]
	}

	runTests(t, app, []httpTest{
		{
			name:     "list",
			method:   http.MethodGet,
			path:     "/v1/announcements",
			token:    tokenOf(t, hodAccID),
			wantCode: http.StatusOK,
			wantData: marchallList(t, seeded...),
		},
		{
			name:     "post not admin",
			method:   http.MethodPost,
			path:     "/v1/announcements",
			body:     []byte(`{"title": "Hello", "content": "World"}`),
			token:    tokenOf(t, deanMgtID),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name:     "post blank",
			method:   http.MethodPost,
			path:     "/v1/announcements",
			body:     []byte(`{"title": "  ", "content": ""}`),
			token:    admin,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"title": "this field cannot be blank", "content": "this field cannot be blank"}),
		},
	})

	t.Run("post", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/announcements", admin, []byte(`{"title": " Deadline ", "content": "Submit by Friday."}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("post code = %d; want 201: %s", rec.Code, rec.Body.String())
		}
		var ann notice.Announcement
		unmarshal(t, rec, &ann)
		assert.Equal(t, 4, ann.ID)
		assert.Equal(t, "Deadline", ann.Title)
		assert.Equal(t, "Dr. Admin", ann.AuthorName)

		var list []notice.Announcement
		getJSON(t, app, "/v1/announcements", tokenOf(t, hodCscID), &list)
		if assert.Len(t, list, 4) {
			assert.Equal(t, ann.ID, list[0].ID)
		}
	})

	runTests(t, app, []httpTest{
		{
			name:     "delete not admin",
			method:   http.MethodDelete,
			path:     "/v1/announcements/1",
			token:    tokenOf(t, hodAccID),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name:     "delete",
			method:   http.MethodDelete,
			path:     "/v1/announcements/1",
			token:    admin,
			wantCode: http.StatusNoContent,
		},
		{
			name:     "delete again",
			method:   http.MethodDelete,
			path:     "/v1/announcements/1",
			token:    admin,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, errNotFound),
		},
	})
}

func Test_noticeApi_notifications(t *testing.T) {
	app := setup(t)

	hod := tokenOf(t, hodAccID)

	t.Run("list", func(t *testing.T) {
		var resp NotificationsResponse
		getJSON(t, app, "/v1/notifications", hod, &resp)
		assert.Equal(t, 1, resp.Unread)
		if assert.Len(t, resp.Notifications, 2) {
			assert.Equal(t, 1, resp.Notifications[0].ID)
			assert.Equal(t, hodAccID, resp.Notifications[0].UserID)
		}

		getJSON(t, app, "/v1/notifications", tokenOf(t, adminID), &resp)
		assert.Equal(t, 3, resp.Unread)
		assert.Len(t, resp.Notifications, 5)
	})

	runTests(t, app, []httpTest{
		{
			name:     "read someone else's",
			method:   http.MethodPost,
			path:     "/v1/notifications/3/read",
			token:    hod,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, errNotFound),
		},
		{
			name:     "read one",
			method:   http.MethodPost,
			path:     "/v1/notifications/1/read",
			token:    hod,
			wantCode: http.StatusNoContent,
		},
		{
			name:     "read all",
			method:   http.MethodPost,
			path:     "/v1/notifications/read-all",
			token:    tokenOf(t, deanMgtID),
			wantCode: http.StatusNoContent,
		},
		{
			name:     "Admin has no dashboard restriction",
			method:   http.MethodGet,
			path:     "/v1/notifications",
			token:    tokenOf(t, adminID),
			wantCode: http.StatusOK,
		},
	})

	for _, id := range []int{hodAccID, deanMgtID} {
		for _, n := range notificationsOf(t, id) {
			assert.True(t, n.IsRead, "notification %d", n.ID)
		}
	}
	// someone else's notification was left alone
	unread := 0
	for _, n := range notificationsOf(t, adminID) {
		if !n.IsRead {
			unread++
		}
	}
	assert.Equal(t, 3, unread)
}

func Test_noticeApi_history(t *testing.T) {
	app := setup(t)

	logs, err := notice.NewService(noticeRepo).History(notice.HistoryFilter{Role: "DEAN"})
	if err != nil {
		t.Fatalf("History() failed: %v", err)
	}
	deanLogs := make([]interface{}, len(logs))
	for i := range logs {
		deanLogs[i] = logs[i]
	}

	runTests(t, app, []httpTest{
		{
			name:     "by role",
			method:   http.MethodGet,
			path:     "/v1/history?role=DEAN",
			token:    tokenOf(t, adminID),
			wantCode: http.StatusOK,
			wantData: marchallList(t, deanLogs...),
		},
		{
			name:     "not admin",
			method:   http.MethodGet,
			path:     "/v1/history",
			token:    tokenOf(t, deanMgtID),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
	})
	if assert.Len(t, logs, 2) {
		assert.Equal(t, 2, logs[0].ID)
		assert.Equal(t, 5, logs[1].ID)
	}

	t.Run("login is recorded", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/login", []byte(`{"username": "dean", "password": "password"}`))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var all []notice.HistoryLog
		getJSON(t, app, "/v1/history", tokenOf(t, adminID), &all)
		if assert.Len(t, all, 9) {
			assert.Equal(t, "User Login", all[0].Action)
			assert.Equal(t, "Bukar Mallam", all[0].User)
		}
	})
}

func Test_noticeApi_tickets(t *testing.T) {
	app := setup(t)

	admin := tokenOf(t, adminID)
	hod := tokenOf(t, hodAccID)

	t.Run("own tickets", func(t *testing.T) {
		var tickets []notice.SupportTicket
		getJSON(t, app, "/v1/tickets", tokenOf(t, 102), &tickets)
		if assert.Len(t, tickets, 1) {
			assert.Equal(t, "TCK-0001", tickets[0].Reference)
		}

		getJSON(t, app, "/v1/tickets", hod, &tickets)
		assert.Empty(t, tickets)

		getJSON(t, app, "/v1/tickets", admin, &tickets)
		assert.Len(t, tickets, 4)
	})

	runTests(t, app, []httpTest{
		{
			name:     "open invalid",
			method:   http.MethodPost,
			path:     "/v1/tickets",
			body:     []byte(`{"subject": "Help", "description": "Please", "category": "Gossip", "priority": "Low"}`),
			token:    hod,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "status not admin",
			method:   http.MethodPost,
			path:     "/v1/tickets/1/status",
			body:     []byte(`{"status": "Closed"}`),
			token:    hod,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name:     "status invalid",
			method:   http.MethodPost,
			path:     "/v1/tickets/1/status",
			body:     []byte(`{"status": "Done"}`),
			token:    admin,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "status unknown ticket",
			method:   http.MethodPost,
			path:     "/v1/tickets/99/status",
			body:     []byte(`{"status": "Closed"}`),
			token:    admin,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, errNotFound),
		},
	})

	t.Run("open", func(t *testing.T) {
		body := []byte(`{"subject": " Wrong totals ", "description": "The faculty report shows wrong totals.", "category": "Technical", "priority": "High"}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/tickets", hod, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("open code = %d; want 201: %s", rec.Code, rec.Body.String())
		}
		var ticket notice.SupportTicket
		unmarshal(t, rec, &ticket)
		assert.Equal(t, hodAccID, ticket.UserID)
		assert.Equal(t, "Wrong totals", ticket.Subject)
		assert.Equal(t, notice.TicketOpen, ticket.Status)
		assert.True(t, strings.HasPrefix(ticket.Reference, "TCK-"), ticket.Reference)
	})

	t.Run("update status", func(t *testing.T) {
		before := len(notificationsOf(t, 102))
		req, rec := newAuthRequest(http.MethodPost, "/v1/tickets/1/status", admin, []byte(`{"status": "In Progress"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status code = %d; want 200: %s", rec.Code, rec.Body.String())
		}
		var ticket notice.SupportTicket
		unmarshal(t, rec, &ticket)
		assert.Equal(t, notice.TicketInProgress, ticket.Status)
		assert.True(t, ticket.UpdatedAt.After(ticket.CreatedAt))

		notes := notificationsOf(t, 102)
		if assert.Len(t, notes, before+1) {
			assert.Equal(t, "Ticket Updated", notes[0].Title)
			assert.Equal(t, "TCK-0001 is now In Progress.", notes[0].Message)
			assert.Equal(t, "/support", notes[0].Link)
		}
	})
}
