package user

import (
	"adminctl/app/client/api"
	"adminctl/app/dto"
	"adminctl/app/service/query"
	"adminctl/app/util/telemetry"
	"bytes"
	"context"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/samber/do"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel/attribute"
)

var serviceName = "user"

const Path = "users"

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

func (s *Service) List(ctx context.Context, params dto.ListParams) (*dto.ListResponse[dto.User], error) {
	ctx, span := s.tracing.StartServiceSpan(ctx, serviceName, "list")
	defer span.End()

	list, err := query.List[dto.User](ctx, s.cache, s.client, Path, params.Values())
	if err != nil {
		return nil, s.tracing.Error(span, err)
	}

	s.tracing.Success(span)

	return list, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*dto.User, error) {
	ctx, span := s.tracing.StartServiceSpan(ctx, serviceName, "get")
	defer span.End()

	span.SetAttributes(attribute.Int64("id", id))

	usr, err := query.One[*dto.User](ctx, s.cache, s.client, Path+"/"+strconv.FormatInt(id, 10))
	if err != nil {
		return nil, s.tracing.Error(span, err)
	}
	if usr == nil {
		return nil, s.tracing.Error(span, oops.
			With("status_code", http.StatusNotFound).
			Public(api.MsgNotFound).
			Errorf("user %d not found", id))
	}

	s.tracing.Success(span)

	return usr, nil
}

// Save creates the user when form.ID is zero and updates it otherwise. A
// password is only required on create.
func (s *Service) Save(ctx context.Context, form *dto.UserForm) (*dto.User, error) {
	ctx, span := s.tracing.StartServiceSpan(ctx, serviceName, "save")
	defer span.End()

	if err := api.Validate(form); err != nil {
		return nil, s.tracing.Error(span, err)
	}
	if form.ID == 0 && form.Password == "" {
		return nil, s.tracing.Error(span, oops.
			With("status_code", http.StatusUnprocessableEntity).
			With("fields", map[string][]string{"password": {"password is required"}}).
			Public(api.MsgValidation).
			Errorf("%w: password is required on create", api.ErrAPI))
	}

	payload, err := buildForm(form)
	if err != nil {
		return nil, s.tracing.Error(span, err)
	}

	env, err := s.client.PostForm(ctx, Path, payload)
	if err != nil {
		return nil, s.tracing.Error(span, oops.Errorf("client.PostForm: %w", err))
	}

	usr, err := api.Decode[*dto.User](env)
	if err != nil {
		return nil, s.tracing.Error(span, err)
	}

	s.tracing.Success(span)

	return usr, nil
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

func (s *Service) SaveMutation() *query.Mutation[*dto.UserForm, *dto.User] {
	return query.NewMutation(s.cache, s.Save, Path)
}

func (s *Service) DeleteMutation() *query.Mutation[[]int64, struct{}] {
	return query.NewMutation(s.cache, func(ctx context.Context, ids []int64) (struct{}, error) {
		return struct{}{}, s.Delete(ctx, ids)
	}, Path)
}

func buildForm(form *dto.UserForm) (*api.Form, error) {
	fields := url.Values{}
	if form.ID != 0 {
		fields.Set("id", strconv.FormatInt(form.ID, 10))
	}

	fields.Set("name", form.Name)
	fields.Set("email", form.Email)
	fields.Set("phone", form.Phone)
	fields.Set("user_type", strconv.Itoa(int(form.UserType)))
	fields.Set("status", strconv.Itoa(int(form.Status)))

	optional := map[string]string{
		"password":    form.Password,
		"bio":         form.Bio,
		"address":     form.Address,
		"city":        form.City,
		"country":     form.Country,
		"postal_code": form.PostalCode,
		"gender":      form.Gender,
		"timezone":    form.Timezone,
		"language":    form.Language,
	}
	for key, value := range optional {
		if value != "" {
			fields.Set(key, value)
		}
	}
	if form.DateOfBirth != nil {
		fields.Set("date_of_birth", form.DateOfBirth.Format(openapi_types.DateFormat))
	}

	for _, role := range form.Roles {
		fields.Add("roles[]", role)
	}
	for _, permission := range form.Permissions {
		fields.Add("permissions[]", permission)
	}

	result := &api.Form{Fields: fields}

	if form.Avatar != "" {
		data, err := os.ReadFile(form.Avatar)
		if err != nil {
			return nil, oops.
				With("status_code", http.StatusUnprocessableEntity).
				Public("Cannot read avatar file").
				Errorf("failed to read avatar: %w", err)
		}

		result.Files = append(result.Files, api.File{
			Field:  "avatar",
			Name:   filepath.Base(form.Avatar),
			Reader: bytes.NewReader(data),
		})
	}

	return result, nil
}
