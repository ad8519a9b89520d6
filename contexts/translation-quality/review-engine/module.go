package reviewengine

import (
	"log/slog"

	httpadapter "crowdlingo/contexts/translation-quality/review-engine/adapters/http"
	"crowdlingo/contexts/translation-quality/review-engine/adapters/memory"
	"crowdlingo/contexts/translation-quality/review-engine/application/commands"
	"crowdlingo/contexts/translation-quality/review-engine/application/queries"
	"crowdlingo/contexts/translation-quality/review-engine/domain/entities"
	"crowdlingo/contexts/translation-quality/review-engine/domain/scoring"
	"crowdlingo/contexts/translation-quality/review-engine/ports"
	"crowdlingo/internal/shared/keylock"
)

type Module struct {
	Handler httpadapter.Handler
	Reviews commands.ReviewUseCase
	Queries queries.ReviewQueries
	Store   *memory.Store
}

type Dependencies struct {
	Reviews     ports.ReviewRepository
	Submissions ports.SubmissionRepository
	Reputations ports.ReputationRepository
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Policy      scoring.Policy
	Locks       *keylock.Registry
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	locks := deps.Locks
	if locks == nil {
		locks = keylock.New()
	}
	reviewUseCase := commands.ReviewUseCase{
		Reviews:     deps.Reviews,
		Submissions: deps.Submissions,
		Reputations: deps.Reputations,
		Outbox:      deps.Outbox,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Policy:      deps.Policy,
		Locks:       locks,
		Logger:      deps.Logger,
	}
	reviewQueries := queries.ReviewQueries{
		Reviews:     deps.Reviews,
		Submissions: deps.Submissions,
		Logger:      deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Reviews: reviewUseCase,
			Queries: reviewQueries,
			Logger:  deps.Logger,
		},
		Reviews: reviewUseCase,
		Queries: reviewQueries,
	}
}

func NewInMemoryModule(seed []entities.Submission, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Reviews:     store,
		Submissions: store,
		Reputations: store,
		Outbox:      store,
		Clock:       store,
		IDGen:       store,
		Policy:      scoring.DefaultPolicy(),
		Logger:      logger,
	})
	module.Store = store
	return module
}
