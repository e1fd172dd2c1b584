package echoapi

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/mohdshetty/grap/core"
	"github.com/mohdshetty/grap/core/notice"
	"github.com/mohdshetty/grap/core/user"
)

// auditor writes the history log and user notifications that follow a successful action.
// Failures are logged and never fail the request that triggered them.
type auditor struct {
	notices *notice.Service
	users   *user.Service
	logger  core.Logger
}

func (a auditor) record(usr user.User, action, details string) {
	if _, err := a.notices.Record(usr, action, details); err != nil {
		a.logger.Error("recording history", errors.Wrap(err, action), usr)
	}
}

func (a auditor) recordf(usr user.User, action, format string, args ...interface{}) {
	a.record(usr, action, fmt.Sprintf(format, args...))
}

// notify sends a notification to every active user matched by filter.
func (a auditor) notify(filter user.QueryFilter, title, message, link string) {
	users, err := a.users.Filter(filter)
	if err != nil {
		a.logger.Error("finding users to notify", errors.Wrap(err, title))
		return
	}
	for _, usr := range users {
		if _, err := a.notices.Notify(usr.ID, title, message, link); err != nil {
			a.logger.Error("sending notification", errors.Wrap(err, title), usr)
		}
	}
}
