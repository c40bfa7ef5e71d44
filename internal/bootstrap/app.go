package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"docshare-backend/internal/access"
	googleauth "docshare-backend/internal/auth"
	"docshare-backend/internal/comments"
	"docshare-backend/internal/documents"
	"docshare-backend/internal/services/health"
	"docshare-backend/internal/shared/config"
	"docshare-backend/internal/shared/mail"
	"docshare-backend/internal/shared/server"
	"docshare-backend/internal/shared/storage/db"
	"docshare-backend/internal/shared/storage/object"
	localstore "docshare-backend/internal/shared/storage/object/local"
	s3store "docshare-backend/internal/shared/storage/object/s3"
	"docshare-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Mailer mail.Mailer

	DocumentsRepo documents.Repo
	AccessRepo    access.Repo
	CommentsRepo  comments.Repo
	UsersRepo     users.Repo

	DocumentsService *documents.Service
	CommentsService  *comments.Service
	UsersService     *users.Service
	Resolver         *access.Resolver
	Invitations      *access.Invitations

	DocumentsHandler *documents.Handler
	AccessHandler    *access.Handler
	CommentsHandler  *comments.Handler
	UsersHandler     *users.Handler
	GoogleAuth       *googleauth.GoogleService
	Health           *health.Service
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Mailer: buildMailer(cfg),
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		Health:          app.Health,
		DocumentHandler: app.DocumentsHandler,
		AccessHandler:   app.AccessHandler,
		CommentHandler:  app.CommentsHandler,
		UserHandler:     app.UsersHandler,
		GoogleAuth:      app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildMailer(cfg config.Config) mail.Mailer {
	mailer := mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
		FromName: cfg.MailFromName,
	})
	if !mailer.IsConfigured() {
		log.Printf("bootstrap: SMTP not configured; invitation emails disabled")
		return nil
	}
	return mailer
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) {
	var docRepo documents.Repo
	var accessRepo access.Repo
	var commentRepo comments.Repo
	var userRepo users.Repo

	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		accessRepo = &access.PGRepo{DB: app.DB}
		commentRepo = &comments.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		accessRepo = access.NewMemoryRepo()
		commentRepo = comments.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
	}

	userSvc := users.NewService(userRepo)

	resolver := &access.Resolver{
		Docs: docRepo,
		Repo: accessRepo,
	}

	commentSvc := &comments.Service{
		Repo:   commentRepo,
		Docs:   docRepo,
		Users:  userSvc,
		Access: resolver,
	}
	// The resolver hydrates threads through the comment service; the
	// comment service gates writes through the resolver. Wired here to
	// keep both packages one-directional.
	resolver.Threads = commentSvc

	docSvc := &documents.Service{
		Store:  app.Store,
		Repo:   docRepo,
		Access: resolver,
		Shared: accessRepo,
	}

	invitations := &access.Invitations{
		Docs:         docRepo,
		Repo:         accessRepo,
		Users:        userSvc,
		Mailer:       app.Mailer,
		ShareBaseURL: app.Config.ShareBaseURL,
		MailTimeout:  app.Config.MailTimeout,
	}

	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
	)

	app.DocumentsRepo = docRepo
	app.AccessRepo = accessRepo
	app.CommentsRepo = commentRepo
	app.UsersRepo = userRepo
	app.DocumentsService = docSvc
	app.CommentsService = commentSvc
	app.UsersService = userSvc
	app.Resolver = resolver
	app.Invitations = invitations
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.AccessHandler = access.NewHandler(invitations, resolver)
	app.CommentsHandler = comments.NewHandler(commentSvc)
	app.UsersHandler = users.NewHandler(userSvc)
	app.GoogleAuth = googleAuthSvc
	app.Health = health.NewService()
}
