package controller

import (
	"adminctl/app/devserver/middleware"
	"adminctl/app/devserver/store"
	"adminctl/app/dto"
	"fmt"
	"net/http"
	"strconv"

	"github.com/elliotchance/pie/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/oops"
)

func (s *Server) filterActivityLogs(c *fiber.Ctx) []dto.ActivityLog {
	search := c.Query("search")
	logName := c.Query("log_name")
	event := c.Query("event")

	return pie.Filter(s.store.ActivityLogs(), func(entry dto.ActivityLog) bool {
		if logName != "" && entry.LogName != logName {
			return false
		}
		if event != "" && entry.Event != event {
			return false
		}

		return search == "" || containsFold(entry.Description, search)
	})
}

func (s *Server) ListActivityLogs(c *fiber.Ctx) error {
	return respondList(c, "Activity logs retrieved", s.filterActivityLogs(c), activityLogColumns)
}

func (s *Server) ActivityStats(c *fiber.Ctx) error {
	return respond(c, http.StatusOK, "ok", s.store.ActivityStats())
}

func (s *Server) GetActivityLog(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	entry, err := s.store.ActivityLog(id)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "ok", entry)
}

func (s *Server) DeleteActivityLogs(c *fiber.Ctx) error {
	ids, err := pathIDs(c)
	if err != nil {
		return err
	}

	deleted := s.store.DeleteActivityLogs(ids)
	if deleted == 0 {
		return oops.
			With("status_code", http.StatusNotFound).
			Public("Activity log not found").
			Errorf("no activity logs among %v", ids)
	}

	causer, _ := middleware.CurrentUser(c)
	s.store.AddActivity(store.Activity{
		LogName:     "activity_log",
		Event:       "deleted",
		Description: fmt.Sprintf("Deleted %d activity log(s)", deleted),
		Causer:      &causer,
	})

	return respond(c, http.StatusOK, "Activity logs deleted", fiber.Map{"deleted": deleted})
}

// filterLoginHistory shows every session to holders of login_history.view
// and only their own sessions to everyone else.
func (s *Server) filterLoginHistory(c *fiber.Ctx) ([]dto.LoginHistory, error) {
	usr, err := s.currentUser(c)
	if err != nil {
		return nil, err
	}

	checker, err := middleware.Checker(c, s.store)
	if err != nil {
		return nil, err
	}
	viewAll := checker.HasPermission(dto.PermLoginHistoryView)

	search := c.Query("search")
	status := c.Query("status")
	userID := c.Query("user_id")

	return pie.Filter(s.store.LoginHistory(), func(entry dto.LoginHistory) bool {
		if !viewAll && entry.UserID != usr.ID {
			return false
		}
		if status != "" && entry.Status != status {
			return false
		}
		if userID != "" && strconv.FormatInt(entry.UserID, 10) != userID {
			return false
		}
		if search == "" {
			return true
		}

		name := ""
		if entry.User != nil {
			name = entry.User.Name + " " + entry.User.Email
		}

		return containsFold(entry.IPAddress, search) ||
			containsFold(entry.Device, search) ||
			containsFold(entry.Browser, search) ||
			containsFold(name, search)
	}), nil
}

func (s *Server) ListLoginHistory(c *fiber.Ctx) error {
	entries, err := s.filterLoginHistory(c)
	if err != nil {
		return err
	}

	return respondList(c, "Login history retrieved", entries, loginHistoryColumns)
}

func (s *Server) GetLoginHistory(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	entry, err := s.store.LoginEntry(id)
	if err != nil {
		return err
	}

	usr, err := s.currentUser(c)
	if err != nil {
		return err
	}

	if entry.UserID != usr.ID {
		if err := s.require(c, dto.PermLoginHistoryView); err != nil {
			return err
		}
	}

	return respond(c, http.StatusOK, "ok", entry)
}
