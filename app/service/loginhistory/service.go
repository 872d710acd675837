package loginhistory

import (
	"adminctl/app/client/api"
	"adminctl/app/dto"
	"adminctl/app/service/query"
	"adminctl/app/util/telemetry"
	"context"
	"net/http"
	"strconv"

	"github.com/samber/do"
	"github.com/samber/oops"
)

var serviceName = "login_history"

const Path = "login-history"

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

func (s *Service) List(ctx context.Context, params dto.ListParams) (*dto.ListResponse[dto.LoginHistory], error) {
	ctx, span := s.tracing.StartServiceSpan(ctx, serviceName, "list")
	defer span.End()

	list, err := query.List[dto.LoginHistory](ctx, s.cache, s.client, Path, params.Values())
	if err != nil {
		return nil, s.tracing.Error(span, err)
	}

	s.tracing.Success(span)

	return list, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*dto.LoginHistory, error) {
	ctx, span := s.tracing.StartServiceSpan(ctx, serviceName, "get")
	defer span.End()

	entry, err := query.One[*dto.LoginHistory](ctx, s.cache, s.client, Path+"/"+strconv.FormatInt(id, 10))
	if err != nil {
		return nil, s.tracing.Error(span, err)
	}
	if entry == nil {
		return nil, s.tracing.Error(span, oops.
			With("status_code", http.StatusNotFound).
			Public(api.MsgNotFound).
			Errorf("login history %d not found", id))
	}

	s.tracing.Success(span)

	return entry, nil
}
