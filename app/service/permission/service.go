package permission

import (
	"adminctl/app/client/api"
	"adminctl/app/dto"
	"adminctl/app/service/query"
	"adminctl/app/util/telemetry"
	"context"

	"github.com/samber/do"
)

var serviceName = "permission"

const Path = "permissions"

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

func (s *Service) List(ctx context.Context, params dto.ListParams) (*dto.ListResponse[dto.Permission], error) {
	ctx, span := s.tracing.StartServiceSpan(ctx, serviceName, "list")
	defer span.End()

	list, err := query.List[dto.Permission](ctx, s.cache, s.client, Path, params.Values())
	if err != nil {
		return nil, s.tracing.Error(span, err)
	}

	s.tracing.Success(span)

	return list, nil
}

// GroupByModule buckets permissions by their module, keeping first-seen
// module order. Permissions without a module go under "general".
func GroupByModule(permissions []dto.Permission) []dto.ModulePermissions {
	var result []dto.ModulePermissions
	index := make(map[string]int)

	for _, p := range permissions {
		module := p.Module
		if module == "" {
			module = "general"
		}

		i, ok := index[module]
		if !ok {
			i = len(result)
			index[module] = i
			result = append(result, dto.ModulePermissions{Name: module, Slug: module})
		}

		result[i].Permissions = append(result[i].Permissions, p)
	}

	return result
}
