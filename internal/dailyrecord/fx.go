package dailyrecord

import (
	"github.com/hydrocore/waterworks/internal/dailyrecord/repository"
	"github.com/hydrocore/waterworks/internal/dailyrecord/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dailyrecord.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
