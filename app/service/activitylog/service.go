package activitylog

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
	"go.opentelemetry.io/otel/attribute"
)

var serviceName = "activity_log"

const (
	Path      = "activity-logs"
	pathStats = "activity-logs/stats"
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

func (s *Service) List(ctx context.Context, params dto.ListParams) (*dto.ListResponse[dto.ActivityLog], error) {
	ctx, span := s.tracing.StartServiceSpan(ctx, serviceName, "list")
	defer span.End()

	list, err := query.List[dto.ActivityLog](ctx, s.cache, s.client, Path, params.Values())
	if err != nil {
		return nil, s.tracing.Error(span, err)
	}

	s.tracing.Success(span)

	return list, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*dto.ActivityLog, error) {
	ctx, span := s.tracing.StartServiceSpan(ctx, serviceName, "get")
	defer span.End()

	span.SetAttributes(attribute.Int64("id", id))

	entry, err := query.One[*dto.ActivityLog](ctx, s.cache, s.client, Path+"/"+strconv.FormatInt(id, 10))
	if err != nil {
		return nil, s.tracing.Error(span, err)
	}
	if entry == nil {
		return nil, s.tracing.Error(span, oops.
			With("status_code", http.StatusNotFound).
			Public(api.MsgNotFound).
			Errorf("activity log %d not found", id))
	}

	s.tracing.Success(span)

	return entry, nil
}

func (s *Service) Stats(ctx context.Context) (*dto.ActivityLogStats, error) {
	ctx, span := s.tracing.StartServiceSpan(ctx, serviceName, "stats")
	defer span.End()

	stats, err := query.One[dto.ActivityLogStats](ctx, s.cache, s.client, pathStats)
	if err != nil {
		return nil, s.tracing.Error(span, err)
	}

	s.tracing.Success(span)

	return &stats, nil
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

func (s *Service) DeleteMutation() *query.Mutation[[]int64, struct{}] {
	return query.NewMutation(s.cache, func(ctx context.Context, ids []int64) (struct{}, error) {
		return struct{}{}, s.Delete(ctx, ids)
	}, Path)
}
