package monthlyrecord

import (
	"github.com/hydrocore/waterworks/internal/monthlyrecord/repository"
	"github.com/hydrocore/waterworks/internal/monthlyrecord/service"
	"go.uber.org/fx"
)

var Module = fx.Module("monthlyrecord.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
