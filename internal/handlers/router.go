package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"gymlog/internal/middleware"
	"gymlog/internal/services"
	"gymlog/internal/store"
)

// Deps is everything the HTTP layer needs. Guard may be disabled (nil
// secret), in which case userKeys are trusted as sent.
type Deps struct {
	Store          *store.Store
	Analyzer       *services.MealAnalyzer
	MealLogger     *services.MealLogger
	Parser         *services.PlanParser
	Tipper         *services.ExerciseTipper
	Guard          *middleware.UserKeyGuard
	AllowedOrigins []string
	Logger         *zap.Logger
}

func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.ZapRecoverer(logger))
	r.Use(middleware.ZapRequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	profileHandler := NewProfileHandler(d.Store.Profiles, logger)
	entryHandler := NewEntryHandler(d.Store.Entries, d.Store.Profiles, d.MealLogger, logger)
	importHandler := NewImportHandler(d.Store, logger)
	analyzeHandler := NewAnalyzeHandler(d.Analyzer)
	planHandler := NewPlanHandler(d.Parser, logger)
	tipHandler := NewTipHandler(d.Tipper)
	proteinHandler := NewProteinHandler(d.Store.Protein, logger)
	workoutHandler := NewWorkoutHandler()
	userKeyHandler := NewUserKeyHandler(d.Guard, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		api.Post("/user-key", userKeyHandler.MintUserKey)

		api.Get("/protein", proteinHandler.GetProtein)
		api.Post("/protein", proteinHandler.SaveProtein)

		api.Get("/workout/default-plan", workoutHandler.DefaultPlan)
		api.Post("/workout/reconcile", workoutHandler.Reconcile)
		api.Post("/workout/state", workoutHandler.ApplyAction)

		api.Group(func(pr chi.Router) {
			pr.Use(d.Guard.Require)

			pr.Get("/diet-entry", entryHandler.GetEntry)
			pr.Post("/diet-entry", entryHandler.SaveEntry)
			pr.Get("/diet-entry/profile", profileHandler.GetProfile)
			pr.Post("/diet-entry/profile", profileHandler.SaveProfile)
			pr.Post("/diet-entry/analyze", analyzeHandler.AnalyzeMeal)
			pr.Post("/diet-entry/meals", entryHandler.LogMeal)
			pr.Delete("/diet-entry/meals/{mealID}", entryHandler.DeleteMeal)
			pr.Get("/diet-entry/summary", entryHandler.Summary)
			pr.Post("/diet-entry/import", importHandler.ImportHistory)

			pr.Post("/parse-image", planHandler.ParseImage)
			pr.Get("/exercise-tip", tipHandler.ExerciseTip)
		})
	})

	return r
}
