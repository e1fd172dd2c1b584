package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mohdshetty/grap/core/notice"
	"github.com/mohdshetty/grap/core/policy"
)

type noticeApi struct {
	svc      *notice.Service
	policy   *policy.Store
	audit    auditor
	validate *validator.Validate
}

func registerNoticeAPI(g *echo.Group, auth []echo.MiddlewareFunc, api *noticeApi) {
	dashboard := featureMiddleware(api.policy, policy.FeatureDashboard)

	ag := g.Group("/announcements", auth...)
	ag.GET("", api.announcements, dashboard)
	ag.POST("", api.createAnnouncement, adminMiddleware())
	ag.DELETE("/:id", api.destroyAnnouncement, adminMiddleware())

	ng := g.Group("/notifications", auth...)
	ng.Use(dashboard)
	ng.GET("", api.notifications)
	ng.POST("/read-all", api.markAllAsRead)
	ng.POST("/:id/read", api.markAsRead)

	hg := g.Group("/history", auth...)
	hg.GET("", api.history, adminMiddleware())

	tg := g.Group("/tickets", auth...)
	tg.GET("", api.tickets, featureMiddleware(api.policy, policy.FeatureSettings))
	tg.POST("", api.createTicket, featureMiddleware(api.policy, policy.FeatureSettings))
	tg.POST("/:id/status", api.setTicketStatus, adminMiddleware())
}

type NotificationsResponse struct {
	Unread        int                   `json:"unread"`
	Notifications []notice.Notification `json:"notifications"`
}

// Handlers

func (api *noticeApi) announcements(ctx echo.Context) error {
	anns, err := api.svc.Announcements()
	if err != nil {
		return errors.Wrap(err, "querying announcements")
	}
	if anns == nil {
		anns = []notice.Announcement{}
	}
	return ctx.JSON(http.StatusOK, anns)
}

func (api *noticeApi) createAnnouncement(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	var data notice.NewAnnouncement
	if err := bindAndValidate(ctx, api.validate, &data, "NewAnnouncement"); err != nil {
		return err
	}

	ann, err := api.svc.AddAnnouncement(data, usr.Name)
	if err != nil {
		return errors.Wrap(err, "adding announcement")
	}
	api.audit.recordf(usr, "Posted Announcement", "Posted %q.", ann.Title)
	return ctx.JSON(http.StatusCreated, ann)
}

func (api *noticeApi) destroyAnnouncement(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteAnnouncement(id); err != nil {
		return errors.Wrap(err, "deleting announcement")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *noticeApi) notifications(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	notes, err := api.svc.Notifications(usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	resp := NotificationsResponse{Notifications: []notice.Notification{}}
	for _, n := range notes {
		if !n.IsRead {
			resp.Unread++
		}
		resp.Notifications = append(resp.Notifications, n)
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *noticeApi) markAsRead(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.MarkAsRead(usr.ID, id); err != nil {
		return errors.Wrap(err, "marking notification as read")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *noticeApi) markAllAsRead(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.MarkAllAsRead(usr.ID); err != nil {
		return errors.Wrap(err, "marking notifications as read")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *noticeApi) history(ctx echo.Context) error {
	filter := new(notice.HistoryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []notice.HistoryLog{})
	}
	logs, err := api.svc.History(*filter)
	if err != nil {
		return errors.Wrap(err, "querying history")
	}
	return ctx.JSON(http.StatusOK, logs)
}

// tickets lists the user's own tickets; admins see every ticket.
func (api *noticeApi) tickets(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	owner := usr.ID
	if usr.IsAdmin() {
		owner = 0
	}
	tickets, err := api.svc.Tickets(owner)
	if err != nil {
		return errors.Wrap(err, "querying tickets")
	}
	if tickets == nil {
		tickets = []notice.SupportTicket{}
	}
	return ctx.JSON(http.StatusOK, tickets)
}

func (api *noticeApi) createTicket(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	var data notice.NewTicket
	if err := bindAndValidate(ctx, api.validate, &data, "NewTicket"); err != nil {
		return err
	}

	ticket, err := api.svc.OpenTicket(usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "opening ticket")
	}
	api.audit.recordf(usr, "Opened Ticket", "Opened %s: %s.", ticket.Reference, ticket.Subject)
	return ctx.JSON(http.StatusCreated, ticket)
}

func (api *noticeApi) setTicketStatus(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var data notice.TicketStatusUpdate
	if err := bindAndValidate(ctx, api.validate, &data, "TicketStatusUpdate"); err != nil {
		return err
	}

	ticket, err := api.svc.SetTicketStatus(id, data.Status)
	if err != nil {
		return errors.Wrap(err, "setting ticket status")
	}
	api.audit.recordf(usr, "Updated Ticket", "%s is now %s.", ticket.Reference, ticket.Status)
	if _, err := api.svc.Notify(ticket.UserID, "Ticket Updated", ticket.Reference+" is now "+string(ticket.Status)+".", "/support"); err != nil {
		api.audit.logger.Error("sending notification", errors.Wrap(err, "ticket updated"), usr)
	}
	return ctx.JSON(http.StatusOK, ticket)
}
