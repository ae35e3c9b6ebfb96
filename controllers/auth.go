package controllers

import (
	"net/http"
	"time"

	"admin-restful/auth"
	"admin-restful/models"
	"admin-restful/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// AuthController serves registration, login, logout and the current user.
type AuthController struct {
	authService services.AuthService
	userService services.UserService
	cookieName  string
	logger      *zap.Logger
}

func NewAuthController(authService services.AuthService, userService services.UserService, cookieName string, logger *zap.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		userService: userService,
		cookieName:  cookieName,
		logger:      logger,
	}
}

// UserResponse is a user with its role and the role's permission names.
type UserResponse struct {
	ID          uint      `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Role        *RoleRef  `json:"role"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RoleRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func mapModelToUserResponse(user *models.User) UserResponse {
	resp := UserResponse{
		ID:          user.ID,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Email:       user.Email,
		Permissions: []string{},
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
	if user.Role != nil {
		resp.Role = &RoleRef{ID: user.Role.ID, Name: user.Role.Name}
		if names := user.Role.PermissionNames(); len(names) > 0 {
			resp.Permissions = names
		}
	}
	return resp
}

// RegisterRoutes adds the authentication routes. loginLimit throttles
// login attempts; guard protects the current-user route.
func (ctl *AuthController) RegisterRoutes(ws *restful.WebService, guard *Guard, loginLimit restful.FilterFunction) {
	tags := []string{"auth"}

	ws.Route(ws.POST("/register").To(ctl.register).
		Doc("Register a new user").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.RegisterInput{}).
		Returns(http.StatusCreated, "User created", UserResponse{}).
		Returns(http.StatusBadRequest, "Invalid request body or passwords do not match", MessageResponse{}).
		Returns(http.StatusConflict, "Email already exists", MessageResponse{}))

	login := ws.POST("/login").To(ctl.login).
		Doc("Exchange email and password for an access token").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.LoginInput{}).
		Returns(http.StatusOK, "Token issued and set as cookie", DataResponse{}).
		Returns(http.StatusUnauthorized, "Invalid credentials", MessageResponse{}).
		Returns(http.StatusTooManyRequests, "Too many login attempts", MessageResponse{})
	if loginLimit != nil {
		login = login.Filter(loginLimit)
	}
	ws.Route(login)

	ws.Route(ws.POST("/logout").To(ctl.logout).
		Doc("Clear the access token cookie").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusOK, "Logged out", DataResponse{}))

	ws.Route(guard.Protect(ws.GET("/user")).To(ctl.currentUser).
		Doc("The authenticated user").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(DataResponse{}).
		Returns(http.StatusOK, "Current user", DataResponse{}).
		Returns(http.StatusUnauthorized, "Unauthorized", MessageResponse{}))
}

func (ctl *AuthController) register(request *restful.Request, response *restful.Response) {
	input := new(services.RegisterInput)
	if err := request.ReadEntity(input); err != nil {
		writeMessage(response, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	user, err := ctl.userService.Register(request.Request.Context(), input)
	if err != nil {
		writeError(request, response, ctl.logger, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusCreated, mapModelToUserResponse(user), restful.MIME_JSON)
}

func (ctl *AuthController) login(request *restful.Request, response *restful.Response) {
	input := new(services.LoginInput)
	if err := request.ReadEntity(input); err != nil {
		writeMessage(response, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	token, user, err := ctl.authService.Login(request.Request.Context(), input)
	if err != nil {
		writeError(request, response, ctl.logger, err)
		return
	}
	ctl.logger.Info("user logged in", zap.Uint("user_id", user.ID))

	http.SetCookie(response.ResponseWriter, &http.Cookie{
		Name:     ctl.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(auth.TokenTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeData(response, http.StatusOK, token)
}

// logout only clears the cookie. Issued tokens stay valid until they expire.
func (ctl *AuthController) logout(_ *restful.Request, response *restful.Response) {
	http.SetCookie(response.ResponseWriter, &http.Cookie{
		Name:     ctl.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeData(response, http.StatusOK, "logged out")
}

func (ctl *AuthController) currentUser(request *restful.Request, response *restful.Response) {
	user, ok := auth.PrincipalFrom(request)
	if !ok {
		writeError(request, response, ctl.logger, auth.ErrUnauthenticated)
		return
	}
	writeData(response, http.StatusOK, mapModelToUserResponse(user))
}
