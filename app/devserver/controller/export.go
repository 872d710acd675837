package controller

import (
	"adminctl/app/dto"
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/oops"
)

const exportFormat = "csv"

func checkExportFormat(c *fiber.Ctx) error {
	format := strings.ToLower(c.Query("format", exportFormat))
	if format != exportFormat {
		return oops.
			With("status_code", http.StatusUnprocessableEntity).
			With("fields", map[string][]string{"format": {"Only csv exports are available on the development server."}}).
			Public("Only csv exports are available on the development server.").
			Errorf("unsupported export format %q", format)
	}

	return nil
}

func sendCSV(c *fiber.Ctx, name string, header []string, rows [][]string) error {
	buf := &bytes.Buffer{}

	w := csv.NewWriter(buf)
	if err := w.Write(header); err != nil {
		return oops.Errorf("csv.Write: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return oops.Errorf("csv.WriteAll: %w", err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`.csv"`)

	return c.Status(http.StatusOK).Send(buf.Bytes())
}

func (s *Server) ExportUsers(c *fiber.Ctx) error {
	if err := checkExportFormat(c); err != nil {
		return err
	}

	rows := make([][]string, 0)
	for _, u := range s.filterUsers(c) {
		rows = append(rows, []string{
			strconv.FormatInt(u.ID, 10),
			u.Name,
			u.Email,
			u.Phone,
			strings.Join(u.Roles, ", "),
			u.UserType.Label(),
			u.Status.Label(),
			u.CreatedAt.Format(timestampLayout),
		})
	}

	return sendCSV(c, "users", []string{"ID", "Name", "Email", "Phone", "Roles", "Type", "Status", "Created At"}, rows)
}

func (s *Server) ExportRoles(c *fiber.Ctx) error {
	if err := checkExportFormat(c); err != nil {
		return err
	}

	search := c.Query("search")

	rows := make([][]string, 0)
	for _, r := range s.store.Roles() {
		if search != "" && !containsFold(r.Name, search) {
			continue
		}

		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.Name,
			strings.Join(r.Permissions, ", "),
		})
	}

	return sendCSV(c, "roles", []string{"ID", "Name", "Permissions"}, rows)
}

func (s *Server) ExportActivityLogs(c *fiber.Ctx) error {
	if err := checkExportFormat(c); err != nil {
		return err
	}

	rows := pie.Map(s.filterActivityLogs(c), func(entry dto.ActivityLog) []string {
		causer := "System"
		if entry.Causer != nil {
			causer = entry.Causer.Name
		}

		return []string{
			strconv.FormatInt(entry.ID, 10),
			entry.LogName,
			entry.Event,
			entry.Description,
			causer,
			entry.CreatedAt,
		}
	})

	return sendCSV(c, "activity_logs", []string{"ID", "Log Name", "Event", "Description", "Causer", "Created At"}, rows)
}

func (s *Server) ExportLoginHistory(c *fiber.Ctx) error {
	if err := checkExportFormat(c); err != nil {
		return err
	}

	entries, err := s.filterLoginHistory(c)
	if err != nil {
		return err
	}

	rows := pie.Map(entries, func(entry dto.LoginHistory) []string {
		return []string{
			strconv.FormatInt(entry.ID, 10),
			strconv.FormatInt(entry.UserID, 10),
			entry.IPAddress,
			entry.Device,
			entry.Browser,
			entry.Platform,
			entry.Status,
			entry.LoginAt,
			entry.LogoutAt,
		}
	})

	return sendCSV(c, "login_history", []string{"ID", "User ID", "IP Address", "Device", "Browser", "Platform", "Status", "Login At", "Logout At"}, rows)
}
