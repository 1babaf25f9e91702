package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gfinemax/worklog-mcr-sub000/internal/config"
	appHTTP "github.com/gfinemax/worklog-mcr-sub000/internal/handler/http"
	"github.com/gfinemax/worklog-mcr-sub000/internal/pkg/cron"
	"github.com/gfinemax/worklog-mcr-sub000/internal/pkg/database"
	"github.com/gfinemax/worklog-mcr-sub000/internal/pkg/jwt"
	"github.com/gfinemax/worklog-mcr-sub000/internal/pkg/session"
	"github.com/gfinemax/worklog-mcr-sub000/internal/repository/postgresql"
	authService "github.com/gfinemax/worklog-mcr-sub000/internal/service/auth"
	shiftService "github.com/gfinemax/worklog-mcr-sub000/internal/service/shift"
	worklogService "github.com/gfinemax/worklog-mcr-sub000/internal/service/worklog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	location, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		log.Fatal("Invalid APP_TIMEZONE: ", err)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	shiftConfigRepo := postgresql.NewShiftConfigRepository(db)
	worklogRepo := postgresql.NewWorklogRepository(db)
	rosterRepo := postgresql.NewRosterRepository(db)
	auditRepo := postgresql.NewAuditRepository(db)

	jwtSvc := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	sessions := session.NewStore()

	shiftSvc := shiftService.NewShiftService(shiftConfigRepo, rosterRepo, location)
	worklogSvc := worklogService.NewWorklogService(db, worklogRepo, auditRepo, shiftSvc, sessions, location)
	authSvc := authService.NewAuthService(rosterRepo, auditRepo, shiftSvc, jwtSvc, sessions, location)

	autosaveDebounce, err := time.ParseDuration(cfg.Worklog.AutosaveDebounce)
	if err != nil {
		log.Fatal("Invalid WORKLOG_AUTOSAVE_DEBOUNCE: ", err)
	}
	autosaver := worklogService.NewAutosaver(worklogSvc, autosaveDebounce)
	defer autosaver.Close()

	autoCreateInterval, err := time.ParseDuration(cfg.Worklog.AutoCreateInterval)
	if err != nil {
		log.Fatal("Invalid WORKLOG_AUTOCREATE_INTERVAL: ", err)
	}
	scheduler := cron.NewScheduler()
	cron.NewWorklogJobs(shiftSvc, worklogSvc, location, autoCreateInterval).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	authHandler := appHTTP.NewAuthHandler(authSvc, jwtSvc, autosaver)
	sessionHandler := appHTTP.NewSessionHandler(authSvc, worklogSvc, autosaver)
	worklogHandler := appHTTP.NewWorklogHandler(worklogSvc, authSvc, autosaver)
	shiftHandler := appHTTP.NewShiftHandler(shiftSvc, location)

	router := appHTTP.NewRouter(
		jwtSvc,
		authHandler,
		sessionHandler,
		worklogHandler,
		shiftHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
