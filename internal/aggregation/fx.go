package aggregation

import (
	"github.com/hydrocore/waterworks/internal/aggregation/preview"
	"github.com/hydrocore/waterworks/internal/aggregation/repository"
	"github.com/hydrocore/waterworks/internal/aggregation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("aggregation.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(preview.NewHub),
)
