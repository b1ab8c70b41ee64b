package source

import (
	"github.com/hydrocore/waterworks/internal/source/repository"
	"github.com/hydrocore/waterworks/internal/source/service"
	"go.uber.org/fx"
)

var Module = fx.Module("source.service",
	fx.Provide(repository.ProvideTypeRepository),
	fx.Provide(repository.ProvideNameRepository),
	fx.Provide(service.New),
)
