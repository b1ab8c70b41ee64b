package requiredfields

import (
	"github.com/hydrocore/waterworks/internal/requiredfields/repository"
	"github.com/hydrocore/waterworks/internal/requiredfields/service"
	"go.uber.org/fx"
)

var Module = fx.Module("requiredfields.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
