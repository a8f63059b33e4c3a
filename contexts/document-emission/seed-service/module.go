package seedservice

import (
	"log/slog"

	httpadapter "dceseed/contexts/document-emission/seed-service/adapters/http"
	"dceseed/contexts/document-emission/seed-service/adapters/memory"
	"dceseed/contexts/document-emission/seed-service/application/commands"
	"dceseed/contexts/document-emission/seed-service/application/queries"
	"dceseed/contexts/document-emission/seed-service/application/workers"
	"dceseed/contexts/document-emission/seed-service/ports"
)

// Module is the composition surface for the seed service.
// Runtime wiring consumes the use cases and Handler; Store is exposed for
// tests/inspection when the module runs on the in-memory adapter.
type Module struct {
	SeedDocuments commands.SeedDocumentsUseCase
	SendBurst     commands.SendBurstUseCase
	KeepAlive     workers.KeepAlive
	Handler       httpadapter.Handler
	Store         *memory.Store
}

type Dependencies struct {
	Records               ports.RecordStore
	Queue                 ports.MessageQueue
	Runs                  ports.RunRegistry
	Clock                 ports.Clock
	IDGenerator           ports.IDGenerator
	QueueName             string
	DocumentCollection    string
	DeclarationCollection string
	DeclarationCount      int
	PublishConcurrency    int
	Logger                *slog.Logger
}

// NewModule wires the seed use cases against explicit ports.
func NewModule(deps Dependencies) Module {
	queueName := deps.QueueName
	if queueName == "" {
		queueName = commands.DefaultQueueName
	}

	seedDocuments := commands.SeedDocumentsUseCase{
		Store:                 deps.Records,
		Queue:                 deps.Queue,
		Runs:                  deps.Runs,
		Clock:                 deps.Clock,
		IDGenerator:           deps.IDGenerator,
		QueueName:             queueName,
		DocumentCollection:    deps.DocumentCollection,
		DeclarationCollection: deps.DeclarationCollection,
		DeclarationCount:      deps.DeclarationCount,
		PublishConcurrency:    deps.PublishConcurrency,
		Logger:                deps.Logger,
	}
	sendBurst := commands.SendBurstUseCase{
		Queue:       deps.Queue,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		QueueName:   queueName,
		Logger:      deps.Logger,
	}
	latestRun := queries.GetLatestRunUseCase{
		Runs:   deps.Runs,
		Logger: deps.Logger,
	}

	return Module{
		SeedDocuments: seedDocuments,
		SendBurst:     sendBurst,
		KeepAlive: workers.KeepAlive{
			Queue:     deps.Queue,
			QueueName: queueName,
			Logger:    deps.Logger,
		},
		Handler: httpadapter.Handler{
			SeedDocuments: seedDocuments,
			LatestRun:     latestRun,
			Logger:        deps.Logger,
		},
	}
}

// NewInMemoryModule wires the seed use cases against the in-memory store.
// The queue stays injectable so callers choose the local or a remote queue.
func NewInMemoryModule(queue ports.MessageQueue, declarationCount int, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Records:          store,
		Queue:            queue,
		Runs:             store,
		Clock:            store,
		IDGenerator:      store,
		DeclarationCount: declarationCount,
		Logger:           logger,
	})
	module.Store = store
	return module
}
