package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/pareeksha/pareeksha/internal/api/http"
	auth "github.com/pareeksha/pareeksha/internal/auth/middleware"
	"github.com/pareeksha/pareeksha/internal/config"
	"github.com/pareeksha/pareeksha/internal/db"
	"github.com/pareeksha/pareeksha/internal/exam"
	"github.com/pareeksha/pareeksha/internal/question"
	"github.com/pareeksha/pareeksha/internal/rbac"
	"github.com/pareeksha/pareeksha/internal/report"
	"github.com/pareeksha/pareeksha/internal/student"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	examStore := exam.NewSQLStore(dbh)
	questionStore := question.NewSQLStore(dbh)
	studentStore := student.NewSQLStore(dbh)

	bank := question.NewBank(questionStore)
	engine := exam.NewEngine(examStore, questionStore)
	reports := report.NewEngine(examStore, questionStore, studentStore)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret, cfg.TokenTTL)
	if err := auth.EnsureDefaultAdmin(ctx, dbh, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminPassHash); err != nil {
		log.Fatalf("admin bootstrap failed: %v", err)
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(pub chi.Router) {
		pub.Post("/auth/login", auth.LoginHandler(authSvc, dbh))
		pub.Post("/students/register", api.RegisterStudentHandler(studentStore, dbh))

		// Protected API (JWT -> identity + role in context -> RBAC)
		pub.Group(func(pr chi.Router) {
			pr.Use(auth.JWTMiddleware(authSvc))

			pr.Post("/users/change-password", api.ChangePasswordHandler(dbh))

			pr.Route("/students", func(sr chi.Router) {
				sr.With(rbac.Require("students:list")).Get("/", api.ListStudentsHandler(studentStore))
				sr.With(rbac.Require("student:view-own")).Get("/me", api.MyProfileHandler(studentStore))
				sr.With(rbac.RequireAny("student:view-own", "students:list")).
					Get("/{studentID}", api.GetStudentHandler(studentStore))
			})

			pr.Route("/questions", func(qr chi.Router) {
				qr.With(rbac.Require("question:view")).Get("/", api.ListQuestionsHandler(bank))
				qr.With(rbac.Require("question:create")).Post("/", api.CreateQuestionHandler(bank))
				qr.With(rbac.Require("question:create")).Post("/bulk", api.BulkCreateQuestionsHandler(bank))
				qr.With(rbac.Require("question:view")).Get("/{questionID}", api.GetQuestionHandler(bank))
			})

			pr.Route("/exam-schedules", func(er chi.Router) {
				// Fixed segments before the {scheduleID} routes.
				er.With(rbac.Require("schedule:view")).Get("/upcoming", api.UpcomingSchedulesHandler(engine))

				er.Route("/attempts", func(ar chi.Router) {
					ar.With(rbac.Require("attempt:start")).Post("/start", api.StartAttemptHandler(engine))
					ar.With(rbac.Require("attempt:view-own")).Get("/current", api.CurrentAttemptHandler(engine))
					ar.With(rbac.Require("attempt:view-own")).Get("/mine", api.MyAttemptsHandler(engine))
					ar.With(rbac.Require("attempt:submit")).Post("/{attemptID}/submit", api.SubmitAttemptHandler(engine))
					ar.With(rbac.Require("attempt:view-own")).Get("/{attemptID}/result", api.AttemptResultHandler(engine))
				})

				er.With(rbac.Require("schedule:view")).Get("/", api.ListSchedulesHandler(engine))
				er.With(rbac.Require("schedule:manage")).Post("/", api.CreateScheduleHandler(engine))
				er.With(rbac.Require("schedule:view")).Get("/{scheduleID}", api.GetScheduleHandler(engine))
				er.With(rbac.Require("schedule:manage")).Put("/{scheduleID}", api.UpdateScheduleHandler(engine))
				er.With(rbac.Require("schedule:manage")).Delete("/{scheduleID}", api.DeleteScheduleHandler(engine))

				er.With(rbac.Require("schedule:manage")).Get("/{scheduleID}/registrations", api.ScheduleRegistrationsHandler(engine))

				er.With(rbac.Require("exam:register")).Post("/{scheduleID}/register", api.RegisterHandler(engine))
				er.With(rbac.Require("exam:register")).Delete("/{scheduleID}/register", api.UnregisterHandler(engine))

				er.With(rbac.Require("report:view")).Get("/{scheduleID}/score-report", api.ScoreReportHandler(reports))
			})
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
