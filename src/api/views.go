package api

import (
	"net/http"
	"time"

	"fundraiser/src/api/controllers"
	"fundraiser/src/api/handlers"
	"fundraiser/src/config"
	"fundraiser/src/database"
	"fundraiser/src/repositories"
	"fundraiser/src/services"
	"fundraiser/src/utils"

	"github.com/go-chi/chi/v5"
)

type Server struct {
	Router  *chi.Mux
	Handler *handlers.Handler
	Port    string
}

func NewServer(cfg *config.Config) (*Server, error) {
	logger := utils.NewLogger(cfg.Service.LogLevel)

	pool, err := database.SetupDB(cfg)
	if err != nil {
		return nil, err
	}
	gormDB, err := database.SetupGormDB(cfg)
	if err != nil {
		return nil, err
	}

	generator := services.NewReportGenerator(
		repositories.NewDonationRepository(pool),
		repositories.NewMemberRepository(pool),
		repositories.NewProjectRepository(pool),
		repositories.NewStatsRepository(pool),
		nil,
	)
	exporter := services.NewReportExporter(cfg.Export.TemplatePath, cfg.Export.CSSPath, nil)
	reportService := services.NewReportService(gormDB, generator, exporter)
	reportsController := controllers.NewReportsController(gormDB, reportService)

	server := &Server{
		Router:  chi.NewRouter(),
		Handler: handlers.NewHandler(logger, reportsController),
		Port:    cfg.Service.Port,
	}
	server.InitRoutes()
	return server, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Get("/alive", handlers.Healthcheck)

	s.Router.Route("/api/organizations/{orgID}/reports", func(r chi.Router) {
		r.Get("/", s.Handler.ListReports)
		r.Post("/", s.Handler.CreateReport)
		r.Get("/types", s.Handler.GetReportTypes)
		r.Post("/generate", s.Handler.GenerateReport)
		r.Post("/export", s.Handler.ExportReport)
		r.Put("/{id}", s.Handler.UpdateReport)
		r.Delete("/{id}", s.Handler.DeleteReport)
	})
}

func NewHTTPServer(server *Server) *http.Server {
	port := server.Port
	if port == "" {
		port = "8000"
	}
	return &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Handler:      server,
	}
}
