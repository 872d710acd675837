package role

import (
	"adminctl/app/client/api"
	"adminctl/app/dto"
	"adminctl/app/service/query"
	"adminctl/app/util/telemetry"
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/samber/do"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel/attribute"
)

var serviceName = "role"

const (
	Path                  = "roles"
	pathAll               = "roles/all"
	pathModulePermissions = "roles/modulePermissions"
)

type Service struct {
	client  *api.Client
	cache   *query.Cache
	tracing *telemetry.Tracing
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		client:  do.MustInvoke[*api.Client](di),
		cache:   do.MustInvoke[*query.Cache](di),
		tracing: do.MustInvoke[*telemetry.Tracing](di),
	}, nil
}

func rolePath(id int64) string {
	return Path + "/" + strconv.FormatInt(id, 10)
}

func (s *Service) List(ctx context.Context, params dto.ListParams) (*dto.ListResponse[dto.Role], error) {
	ctx, span := s.tracing.StartServiceSpan(ctx, serviceName, "list")
	defer span.End()

	list, err := query.List[dto.Role](ctx, s.cache, s.client, Path, params.Values())
	if err != nil {
		return nil, s.tracing.Error(span, err)
	}

	s.tracing.Success(span)

	return list, nil
}

// All returns every role without paging, for pickers.
func (s *Service) All(ctx context.Context) ([]dto.Role, error) {
	ctx, span := s.tracing.StartServiceSpan(ctx, serviceName, "all")
	defer span.End()

	roles, err := query.One[[]dto.Role](ctx, s.cache, s.client, pathAll)
	if err != nil {
		return nil, s.tracing.Error(span, err)
	}

	s.tracing.Success(span)

	return roles, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*dto.Role, error) {
	ctx, span := s.tracing.StartServiceSpan(ctx, serviceName, "get")
	defer span.End()

	span.SetAttributes(attribute.Int64("id", id))

	role, err := query.One[*dto.Role](ctx, s.cache, s.client, rolePath(id))
	if err != nil {
		return nil, s.tracing.Error(span, err)
	}
	if role == nil {
		return nil, s.tracing.Error(span, oops.
			With("status_code", http.StatusNotFound).
			Public(api.MsgNotFound).
			Errorf("role %d not found", id))
	}

	s.tracing.Success(span)

	return role, nil
}

func (s *Service) ModulePermissions(ctx context.Context) ([]dto.ModulePermissions, error) {
	ctx, span := s.tracing.StartServiceSpan(ctx, serviceName, "module_permissions")
	defer span.End()

	resp, err := query.One[dto.ModulePermissionsResponse](ctx, s.cache, s.client, pathModulePermissions)
	if err != nil {
		return nil, s.tracing.Error(span, err)
	}

	s.tracing.Success(span)

	return resp.ModulePermissions, nil
}

func (s *Service) Permissions(ctx context.Context, id int64) ([]dto.Permission, error) {
	ctx, span := s.tracing.StartServiceSpan(ctx, serviceName, "permissions")
	defer span.End()

	permissions, err := query.One[[]dto.Permission](ctx, s.cache, s.client, rolePath(id)+"/permissions")
	if err != nil {
		return nil, s.tracing.Error(span, err)
	}

	s.tracing.Success(span)

	return permissions, nil
}

type permissionsPayload struct {
	Permissions []string `json:"permissions"`
}

// SetPermissions replaces the role's permission set.
func (s *Service) SetPermissions(ctx context.Context, id int64, names []string) error {
	ctx, span := s.tracing.StartServiceSpan(ctx, serviceName, "set_permissions")
	defer span.End()

	if _, err := s.client.Put(ctx, rolePath(id)+"/permissions", permissionsPayload{Permissions: names}); err != nil {
		return s.tracing.Error(span, oops.Errorf("client.Put: %w", err))
	}

	s.cache.Invalidate(Path)
	s.tracing.Success(span)

	return nil
}

func (s *Service) Save(ctx context.Context, form *dto.RoleForm) (*dto.Role, error) {
	ctx, span := s.tracing.StartServiceSpan(ctx, serviceName, "save")
	defer span.End()

	if err := api.Validate(form); err != nil {
		return nil, s.tracing.Error(span, err)
	}

	fields := url.Values{}
	if form.ID != 0 {
		fields.Set("id", strconv.FormatInt(form.ID, 10))
	}
	fields.Set("name", form.Name)
	for _, permission := range form.Permissions {
		fields.Add("permissions[]", permission)
	}

	env, err := s.client.PostForm(ctx, Path, &api.Form{Fields: fields})
	if err != nil {
		return nil, s.tracing.Error(span, oops.Errorf("client.PostForm: %w", err))
	}

	role, err := api.Decode[*dto.Role](env)
	if err != nil {
		return nil, s.tracing.Error(span, err)
	}

	s.tracing.Success(span)

	return role, nil
}

func (s *Service) Delete(ctx context.Context, ids []int64) error {
	ctx, span := s.tracing.StartServiceSpan(ctx, serviceName, "delete")
	defer span.End()

	if len(ids) == 0 {
		return s.tracing.Error(span, oops.Errorf("no ids to delete"))
	}

	if _, err := s.client.Delete(ctx, Path+"/"+api.JoinIDs(ids)); err != nil {
		return s.tracing.Error(span, oops.Errorf("client.Delete: %w", err))
	}

	s.tracing.Success(span)

	return nil
}

func (s *Service) SaveMutation() *query.Mutation[*dto.RoleForm, *dto.Role] {
	return query.NewMutation(s.cache, s.Save, Path)
}

func (s *Service) DeleteMutation() *query.Mutation[[]int64, struct{}] {
	return query.NewMutation(s.cache, func(ctx context.Context, ids []int64) (struct{}, error) {
		return struct{}{}, s.Delete(ctx, ids)
	}, Path)
}
