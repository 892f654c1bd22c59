package router

import (
	app "github.com/quizpay/quizpay-api/internal/application"
	"github.com/quizpay/quizpay-api/internal/container"
	pginfra "github.com/quizpay/quizpay-api/internal/infrastructure/postgres"
	handlers "github.com/quizpay/quizpay-api/internal/interface/http"
	"github.com/quizpay/quizpay-api/internal/router/modules"
)

// InitModules wires repositories, services and handlers, and registers
// every feature module with the registry. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	pool := container.GetPGPool()
	logger := container.GetLogger()

	users := pginfra.NewUserRepository(pool)
	questions := pginfra.NewQuestionRepository(pool)
	scoring := pginfra.NewScoringRepository(pool)

	userSvc := app.NewUserService(users, container.GetJWT(), container.GetRedis(), logger, container.GetRabbitPub())
	quizSvc := app.NewQuizService(questions, scoring, users, logger, container.GetES(), cfg.ESQuestionsIndex)

	userHandler := handlers.NewUserHandler(userSvc, logger, cfg.CookieDomain, cfg.CookieSecure)
	quizHandler := handlers.NewQuizHandler(quizSvc, logger)

	r.Add(modules.NewUserModule(userHandler, container.GetJWT()))
	r.Add(modules.NewQuizModule(quizHandler, container.GetJWT()))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
