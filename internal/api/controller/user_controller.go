package controller

import (
	"ctchen222/Simple-Blog/internal/api/models"
	"ctchen222/Simple-Blog/internal/api/response"
	"ctchen222/Simple-Blog/internal/api/service"
	"ctchen222/Simple-Blog/internal/auth"
	"ctchen222/Simple-Blog/internal/middleware"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserController handles registration, login and logout.
type UserController struct {
	userService service.UserService
	sessionTTL  int
}

// NewUserController creates a new UserController. Session cookies live as long as the
// tokens issued by tokens.
func NewUserController(userService service.UserService, tokens *auth.TokenService) *UserController {
	return &UserController{
		userService: userService,
		sessionTTL:  int(tokens.TTL().Seconds()),
	}
}

// LoginPage renders the login form.
func (uc *UserController) LoginPage(c *gin.Context) {
	response.Render(c, http.StatusOK, "login", nil)
}

// Register handles the registration form posted from the homepage.
func (uc *UserController) Register(c *gin.Context) {
	var req models.RegisterRequest
	bindForm(c, &req)

	token, err := uc.userService.Register(c.Request.Context(), &req)
	if err != nil {
		if messages, ok := service.ValidationMessages(err); ok {
			response.Errors(c, http.StatusOK, "homepage", messages, nil)
			return
		}
		response.InternalError(c, err)
		return
	}

	uc.setSession(c, token, uc.sessionTTL)
	response.Redirect(c, "/")
}

// Login handles the login form.
func (uc *UserController) Login(c *gin.Context) {
	var req models.LoginRequest
	bindForm(c, &req)

	token, err := uc.userService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Errors(c, http.StatusOK, "login", []string{service.MsgInvalidCredentials}, nil)
			return
		}
		response.InternalError(c, err)
		return
	}

	uc.setSession(c, token, uc.sessionTTL)
	response.Redirect(c, "/")
}

// Logout clears the session cookie.
func (uc *UserController) Logout(c *gin.Context) {
	uc.setSession(c, "", -1)
	response.Redirect(c, "/")
}

func (uc *UserController) setSession(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", true, true)
}

// bindForm fills req from a form or JSON body. Fields the client left out stay empty
// and are reported by validation instead.
func bindForm(c *gin.Context, req any) {
	if err := c.ShouldBind(req); err != nil {
		slog.DebugContext(c.Request.Context(), "Could not bind request body", "error", err)
	}
}
