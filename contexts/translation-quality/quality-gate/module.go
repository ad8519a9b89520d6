package qualitygate

import (
	"log/slog"

	httpadapter "crowdlingo/contexts/translation-quality/quality-gate/adapters/http"
	"crowdlingo/contexts/translation-quality/quality-gate/adapters/memory"
	"crowdlingo/contexts/translation-quality/quality-gate/application/commands"
	"crowdlingo/contexts/translation-quality/quality-gate/application/queries"
	"crowdlingo/contexts/translation-quality/quality-gate/domain/grading"
	"crowdlingo/contexts/translation-quality/quality-gate/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Quality commands.QualityUseCase
	Exports commands.ExportUseCase
	Queries queries.QualityQueries
	Store   *memory.Store
}

type Dependencies struct {
	Submissions ports.SubmissionReader
	Signals     ports.SignalSource
	Recorder    ports.SignalRecorder
	Probe       ports.AnomalyProbe
	Records     ports.QualityRepository
	Pairs       ports.PairRepository
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Policy      grading.Policy
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	qualityUseCase := commands.QualityUseCase{
		Submissions: deps.Submissions,
		Signals:     deps.Signals,
		Recorder:    deps.Recorder,
		Probe:       deps.Probe,
		Records:     deps.Records,
		Pairs:       deps.Pairs,
		Outbox:      deps.Outbox,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Policy:      deps.Policy,
		Logger:      deps.Logger,
	}
	exportUseCase := commands.ExportUseCase{
		Pairs:  deps.Pairs,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	qualityQueries := queries.QualityQueries{
		Records: deps.Records,
		Pairs:   deps.Pairs,
		Logger:  deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Quality: qualityUseCase,
			Exports: exportUseCase,
			Queries: qualityQueries,
			Logger:  deps.Logger,
		},
		Quality: qualityUseCase,
		Exports: exportUseCase,
		Queries: qualityQueries,
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Submissions: store,
		Signals:     store,
		Recorder:    store,
		Probe:       store,
		Records:     store,
		Pairs:       store,
		Outbox:      store,
		Clock:       store,
		IDGen:       store,
		Policy:      grading.DefaultPolicy(),
		Logger:      logger,
	})
	module.Store = store
	return module
}
