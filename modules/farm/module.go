package farm

import (
	"github.com/fieldstone-hq/fieldstone/modules/farm/infrastructure/persistence"
	"github.com/fieldstone-hq/fieldstone/modules/farm/presentation/controllers"
	"github.com/fieldstone-hq/fieldstone/modules/farm/services"
	"github.com/fieldstone-hq/fieldstone/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	farmRepo := persistence.NewFarmRepository(app.DB())
	blockRepo := persistence.NewBlockRepository(app.Client(), app.DB())
	customerRepo := persistence.NewCustomerRepository(app.DB())

	app.RegisterServices(
		services.NewFarmService(farmRepo, app.EventPublisher()),
		services.NewBlockService(blockRepo, farmRepo, app.EventPublisher()),
		services.NewCustomerService(customerRepo, app.EventPublisher()),
		services.NewVehicleService(persistence.NewVehicleRepository(app.DB()), app.EventPublisher()),
		services.NewPlantDataService(persistence.NewPlantDataRepository(app.DB()), app.EventPublisher()),
		services.NewOrderService(persistence.NewOrderRepository(app.DB()), customerRepo, app.EventPublisher()),
		services.NewArchiveService(
			persistence.NewBlockArchiveRepository(app.DB()),
			persistence.NewHarvestRepository(app.DB()),
			persistence.NewCropPriceRepository(app.DB()),
		),
	)
	app.RegisterControllers(
		controllers.NewFarmController(app),
		controllers.NewBlockController(app),
		controllers.NewCustomerController(app),
		controllers.NewVehicleController(app),
		controllers.NewPlantDataController(app),
		controllers.NewOrderController(app),
		controllers.NewArchiveController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "farm"
}
