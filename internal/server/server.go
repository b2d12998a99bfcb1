package server

import (
	"ctchen222/Simple-Blog/internal/api/controller"
	"ctchen222/Simple-Blog/internal/auth"
	"ctchen222/Simple-Blog/internal/middleware"
	"ctchen222/Simple-Blog/internal/repository"
	"ctchen222/Simple-Blog/internal/sanitize"
	"ctchen222/Simple-Blog/web"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Options holds everything the HTTP layer needs.
type Options struct {
	Tokens *auth.TokenService
	Users  *controller.UserController
	Posts  *controller.PostController

	// LoginAttempts and RegisterAttempts enable throttling when non-nil.
	LoginAttempts    repository.AttemptRepository
	RegisterAttempts repository.AttemptRepository
	AttemptLimit     int
	AttemptWindow    time.Duration
}

type Server struct {
	engine *gin.Engine
}

// NewServer builds the gin engine with views, static assets and every route.
func NewServer(opts Options) (*Server, error) {
	tmpl, err := Templates()
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to open static assets: %w", err)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger())
	engine.SetHTMLTemplate(tmpl)
	engine.StaticFS("/static", http.FS(static))

	s := &Server{engine: engine}
	s.registerRoutes(opts)
	return s, nil
}

// Templates parses the embedded views. Post bodies are rendered with the "markdown" func.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").
		Funcs(template.FuncMap{"markdown": sanitize.ToSafeHTML}).
		ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

func (s *Server) registerRoutes(opts Options) {
	r := s.engine.Group("/", middleware.Authenticate(opts.Tokens))

	r.GET("/", opts.Posts.Home)
	r.GET("/login", opts.Users.LoginPage)
	r.GET("/logout", opts.Users.Logout)
	r.POST("/login",
		middleware.Throttle(opts.LoginAttempts, opts.AttemptLimit, opts.AttemptWindow, "login"),
		opts.Users.Login)
	r.POST("/register",
		middleware.Throttle(opts.RegisterAttempts, opts.AttemptLimit, opts.AttemptWindow, "homepage"),
		opts.Users.Register)

	r.GET("/post/:id", opts.Posts.View)

	authed := r.Group("/", middleware.RequireAuth())
	authed.GET("/create-post", opts.Posts.CreatePage)
	authed.POST("/create-post", opts.Posts.Create)
	authed.GET("/edit-post/:id", opts.Posts.EditPage)
	authed.POST("/edit-post/:id", opts.Posts.Edit)
	authed.POST("/delete-post/:id", opts.Posts.Delete)
}

// Engine exposes the gin engine, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Handler is the engine wrapped with OpenTelemetry HTTP instrumentation.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.engine, "simple-blog",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
