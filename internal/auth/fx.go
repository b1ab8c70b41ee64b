package auth

import (
	"github.com/hydrocore/waterworks/internal/auth/repository"
	"github.com/hydrocore/waterworks/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
