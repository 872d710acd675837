package controller

import (
	"adminctl/app/client/api"
	"adminctl/app/config"
	"adminctl/app/devserver/mapper"
	"adminctl/app/devserver/middleware"
	"adminctl/app/devserver/store"
	"adminctl/app/dto"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/do"
	"github.com/samber/oops"
)

type Server struct {
	cfg     *config.Config
	store   *store.Store
	metrics *middleware.Metrics
}

func NewServer(di *do.Injector) *Server {
	return &Server{
		cfg:     do.MustInvoke[*config.Config](di),
		store:   do.MustInvoke[*store.Store](di),
		metrics: do.MustInvoke[*middleware.Metrics](di),
	}
}

func respond(c *fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(mapper.Envelope{
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
	})
}

func respondList[T any](c *fiber.Ctx, message string, items []T, columns []dto.ColumnConfig) error {
	page := mapper.Paginate(items, c.QueryInt("page", dto.DefaultPage), c.QueryInt("limit", dto.DefaultLimit))

	return c.Status(http.StatusOK).JSON(mapper.NewListEnvelope(http.StatusOK, message, page, columns))
}

// bind decodes a JSON body into dst and validates it.
func bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return oops.
			With("status_code", http.StatusBadRequest).
			Public("Malformed request body").
			Errorf("BodyParser: %w", err)
	}

	return bindValidate(dst)
}

func bindValidate(dst any) error {
	return api.Validate(dst) //nolint:wrapcheck
}

func pathID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, oops.
			With("status_code", http.StatusNotFound).
			Public(api.MsgNotFound).
			Errorf("invalid id %q", c.Params("id"))
	}

	return id, nil
}

// pathIDs parses the comma separated ids of batch deletes.
func pathIDs(c *fiber.Ctx) ([]int64, error) {
	var ids []int64

	for _, part := range strings.Split(c.Params("ids"), ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id < 1 {
			return nil, oops.
				With("status_code", http.StatusBadRequest).
				Public("Invalid ids").
				Errorf("invalid id %q", part)
		}

		ids = append(ids, id)
	}

	return ids, nil
}

func containsFold(value, search string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(search))
}

func fieldError(field, msg string) error {
	return oops.
		With("status_code", http.StatusUnprocessableEntity).
		With("fields", map[string][]string{field: {msg}}).
		Public(msg).
		Errorf("%s: %s", field, msg)
}

func (s *Server) currentUser(c *fiber.Ctx) (store.User, error) {
	usr, ok := middleware.CurrentUser(c)
	if !ok {
		return store.User{}, oops.
			With("status_code", http.StatusUnauthorized).
			Public("Unauthenticated.").
			Errorf("no user in context")
	}

	return usr, nil
}

func (s *Server) mapUser(u store.User) (dto.User, error) {
	granted, err := s.store.Granted(u)
	if err != nil {
		return dto.User{}, oops.Errorf("store.Granted: %w", err)
	}

	return mapper.MapUser(u, granted, s.store.Permissions()), nil
}
