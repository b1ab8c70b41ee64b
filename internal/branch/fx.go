package branch

import (
	"github.com/hydrocore/waterworks/internal/branch/repository"
	"github.com/hydrocore/waterworks/internal/branch/service"
	"go.uber.org/fx"
)

var Module = fx.Module("branch.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
