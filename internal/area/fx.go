package area

import (
	"github.com/hydrocore/waterworks/internal/area/repository"
	"github.com/hydrocore/waterworks/internal/area/service"
	"go.uber.org/fx"
)

var Module = fx.Module("area.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
