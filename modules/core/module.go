package core

import (
	"github.com/fieldstone-hq/fieldstone/modules/core/infrastructure/persistence"
	"github.com/fieldstone-hq/fieldstone/modules/core/presentation/controllers"
	"github.com/fieldstone-hq/fieldstone/modules/core/services"
	"github.com/fieldstone-hq/fieldstone/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.RegisterServices(
		services.NewTenantService(persistence.NewTenantRepository(app.DB()), app.EventPublisher()),
		services.NewUserService(persistence.NewUserRepository(app.DB()), app.EventPublisher()),
	)
	app.RegisterControllers(
		controllers.NewTenantController(app),
		controllers.NewUserController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "core"
}
