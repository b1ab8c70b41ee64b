package audit

import (
	"github.com/hydrocore/waterworks/internal/audit/repository"
	"github.com/hydrocore/waterworks/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
