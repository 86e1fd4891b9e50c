package main

import (
	"context"
	"log"
	"os"
	"runtime/debug"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/fieldstone-hq/fieldstone/internal/migration"
	"github.com/fieldstone-hq/fieldstone/internal/server"
	"github.com/fieldstone-hq/fieldstone/modules/core"
	corepersistence "github.com/fieldstone-hq/fieldstone/modules/core/infrastructure/persistence"
	"github.com/fieldstone-hq/fieldstone/modules/farm"
	farmpersistence "github.com/fieldstone-hq/fieldstone/modules/farm/infrastructure/persistence"
	"github.com/fieldstone-hq/fieldstone/pkg/application"
	"github.com/fieldstone-hq/fieldstone/pkg/configuration"
	"github.com/fieldstone-hq/fieldstone/pkg/eventbus"
	"github.com/fieldstone-hq/fieldstone/pkg/metrics"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), conf.Mongo.Timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.Mongo.URI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatalf("failed to ping mongo: %v", err)
	}
	db := client.Database(conf.Mongo.Database)

	if err := corepersistence.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("failed to ensure core indexes: %v", err)
	}
	if err := farmpersistence.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("failed to ensure farm indexes: %v", err)
	}
	if err := migration.EnsureLedgerIndexes(ctx, db); err != nil {
		log.Fatalf("failed to ensure ledger indexes: %v", err)
	}

	app := application.New(&application.ApplicationOptions{
		Client:   client,
		Database: db,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	if err := application.Load(app, core.NewModule(), farm.NewModule()); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}
	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	serverInstance, err := server.Default(&server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
	})
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}
	log.Printf("Listening on: %s\n", conf.Origin)
	if err := serverInstance.Start(conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
