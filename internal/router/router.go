// Package router exposes the REST API: signup/signin, content CRUD, share-link toggling
// and public share resolution, plus health and internal stats endpoints.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/brainly/internal/auth"
	"github.com/patric-chuzhbe/brainly/internal/gzippedhttp"
	"github.com/patric-chuzhbe/brainly/internal/logger"
	"github.com/patric-chuzhbe/brainly/internal/models"
	"github.com/patric-chuzhbe/brainly/internal/service"
)

type brainlyService interface {
	Register(ctx context.Context, name, password, email string) error
	Authenticate(ctx context.Context, name, password string) (string, error)
	AddContent(ctx context.Context, userID string, request models.AddContentRequest) (string, error)
	GetUserContents(ctx context.Context, userID string) ([]models.Content, error)
	DeleteContent(ctx context.Context, userID, contentID string) error
	EnableSharing(ctx context.Context, userID string) (string, error)
	DisableSharing(ctx context.Context, userID string) error
	ResolveShareLink(ctx context.Context, hash string) (models.SharedContentResponse, error)
	Ping(ctx context.Context) error
	GetInternalStats(ctx context.Context) (models.InternalStatsResponse, error)
}

type authenticator interface {
	AuthenticateUser(h http.Handler) http.Handler
}

type trustedSubnetChecker interface {
	TrustedOnly(h http.Handler) http.Handler
}

// Router holds the HTTP handlers of the API.
type Router struct {
	svc      brainlyService
	validate *validator.Validate
	env      string
}

// New builds the chi mux with every route and middleware mounted.
func New(
	svc brainlyService,
	theAuth authenticator,
	checker trustedSubnetChecker,
	allowedOrigins []string,
	env string,
) *chi.Mux {
	myRouter := &Router{
		svc:      svc,
		validate: validator.New(),
		env:      env,
	}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
		}),
		gzippedhttp.UngzipRequest,
		gzippedhttp.GzipResponse,
	)

	router.Get(`/`, myRouter.GetRoot)
	router.Get(`/health`, myRouter.GetHealth)
	router.Get(`/ping`, myRouter.GetPing)
	router.With(checker.TrustedOnly).Get(`/api/internal/stats`, myRouter.GetInternalStats)

	router.Route(`/api/v1`, func(r chi.Router) {
		r.Post(`/signup`, myRouter.PostSignup)
		r.Post(`/signin`, myRouter.PostSignin)
		r.Get(`/content/{shareHash}`, myRouter.GetSharedContent)

		r.Group(func(r chi.Router) {
			r.Use(theAuth.AuthenticateUser)
			r.Post(`/content`, myRouter.PostContent)
			r.Get(`/content`, myRouter.GetContent)
			r.Delete(`/content/{contentID}`, myRouter.DeleteContent)
			r.Post(`/share`, myRouter.PostShare)
		})
	})

	return router
}

func (router *Router) GetRoot(response http.ResponseWriter, request *http.Request) {
	writeJSON(response, http.StatusOK, models.MessageResponse{Message: "Brainly API is running!"})
}

func (router *Router) GetHealth(response http.ResponseWriter, request *http.Request) {
	writeJSON(response, http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Env:       router.env,
	})
}

func (router *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	if err := router.svc.Ping(request.Context()); err != nil {
		logger.Log.Debugln("Error calling the `router.svc.Ping()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}
	response.WriteHeader(http.StatusOK)
}

func (router *Router) GetInternalStats(response http.ResponseWriter, request *http.Request) {
	stats, err := router.svc.GetInternalStats(request.Context())
	if err != nil {
		logger.Log.Debugln("Error calling the `router.svc.GetInternalStats()`: ", zap.Error(err))
		writeMessage(response, http.StatusInternalServerError, "Failed to collect stats")
		return
	}
	writeJSON(response, http.StatusOK, stats)
}

func (router *Router) PostSignup(response http.ResponseWriter, request *http.Request) {
	var body models.SignupRequest
	if !router.decodeAndValidate(response, request, &body, "All fields are mandatory") {
		return
	}

	err := router.svc.Register(request.Context(), body.Name, body.Password, body.Email)
	switch {
	case errors.Is(err, service.ErrUserAlreadyExists):
		writeMessage(response, http.StatusBadRequest, "User already exists with this name")
	case err != nil:
		logger.Log.Errorln("Error calling the `router.svc.Register()`: ", zap.Error(err))
		writeMessage(response, http.StatusInternalServerError, "Failed to create account")
	default:
		writeMessage(response, http.StatusCreated, "Account created successfully")
	}
}

func (router *Router) PostSignin(response http.ResponseWriter, request *http.Request) {
	var body models.SigninRequest
	if !router.decodeAndValidate(response, request, &body, "All fields are required") {
		return
	}

	token, err := router.svc.Authenticate(request.Context(), body.Name, body.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		writeMessage(response, http.StatusBadRequest, "Incorrect name or password")
	case err != nil:
		logger.Log.Errorln("Error calling the `router.svc.Authenticate()`: ", zap.Error(err))
		writeMessage(response, http.StatusInternalServerError, "Failed to login")
	default:
		writeJSON(response, http.StatusOK, models.SigninResponse{
			Message: "Login successful",
			Token:   token,
		})
	}
}

func (router *Router) PostContent(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		writeMessage(response, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var body models.AddContentRequest
	if !router.decodeAndValidate(response, request, &body, "Link, type (youtube or twitter) and title are required") {
		return
	}

	if _, err := router.svc.AddContent(request.Context(), userID, body); err != nil {
		logger.Log.Errorln("Error calling the `router.svc.AddContent()`: ", zap.Error(err))
		writeMessage(response, http.StatusInternalServerError, "Failed to add content")
		return
	}

	writeMessage(response, http.StatusOK, "Content added successfully")
}

func (router *Router) GetContent(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		writeMessage(response, http.StatusUnauthorized, "User not authenticated")
		return
	}

	contents, err := router.svc.GetUserContents(request.Context(), userID)
	if err != nil {
		logger.Log.Errorln("Error calling the `router.svc.GetUserContents()`: ", zap.Error(err))
		writeMessage(response, http.StatusInternalServerError, "Failed to fetch content")
		return
	}
	if contents == nil {
		contents = []models.Content{}
	}

	writeJSON(response, http.StatusOK, models.ContentsResponse{Content: contents})
}

func (router *Router) DeleteContent(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		writeMessage(response, http.StatusUnauthorized, "User not authenticated")
		return
	}

	err := router.svc.DeleteContent(request.Context(), userID, chi.URLParam(request, "contentID"))
	switch {
	case errors.Is(err, service.ErrContentNotFound):
		writeMessage(response, http.StatusNotFound, "Content not found or you don't have permission to delete it")
	case err != nil:
		logger.Log.Errorln("Error calling the `router.svc.DeleteContent()`: ", zap.Error(err))
		writeMessage(response, http.StatusInternalServerError, "Failed to delete content")
	default:
		writeMessage(response, http.StatusOK, "Content deleted successfully")
	}
}

func (router *Router) PostShare(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		writeMessage(response, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var body models.ShareRequest
	if !router.decodeAndValidate(response, request, &body, "Share parameter is required") {
		return
	}

	if !*body.Share {
		if err := router.svc.DisableSharing(request.Context(), userID); err != nil {
			logger.Log.Errorln("Error calling the `router.svc.DisableSharing()`: ", zap.Error(err))
			writeMessage(response, http.StatusInternalServerError, "Failed to update sharing preferences")
			return
		}
		writeMessage(response, http.StatusOK, "Link removed")
		return
	}

	hash, err := router.svc.EnableSharing(request.Context(), userID)
	if err != nil {
		logger.Log.Errorln("Error calling the `router.svc.EnableSharing()`: ", zap.Error(err))
		writeMessage(response, http.StatusInternalServerError, "Failed to update sharing preferences")
		return
	}

	writeJSON(response, http.StatusOK, models.ShareResponse{Hash: hash})
}

func (router *Router) GetSharedContent(response http.ResponseWriter, request *http.Request) {
	shared, err := router.svc.ResolveShareLink(request.Context(), chi.URLParam(request, "shareHash"))
	switch {
	case errors.Is(err, service.ErrShareLinkNotFound):
		writeMessage(response, http.StatusNotFound, "Link not found")
	case err != nil:
		logger.Log.Errorln("Error calling the `router.svc.ResolveShareLink()`: ", zap.Error(err))
		writeMessage(response, http.StatusInternalServerError, "Failed to retrieve shared content")
	default:
		if shared.Content == nil {
			shared.Content = []models.Content{}
		}
		writeJSON(response, http.StatusOK, shared)
	}
}

// decodeAndValidate answers 400 with invalidMessage and returns false when the body
// is not JSON or misses required fields.
func (router *Router) decodeAndValidate(
	response http.ResponseWriter,
	request *http.Request,
	target interface{},
	invalidMessage string,
) bool {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		logger.Log.Debugln("Error calling the `json.NewDecoder().Decode()`: ", zap.Error(err))
		writeMessage(response, http.StatusBadRequest, invalidMessage)
		return false
	}

	if err := router.validate.Struct(target); err != nil {
		logger.Log.Debugln("Error calling the `router.validate.Struct()`: ", zap.Error(err))
		writeMessage(response, http.StatusBadRequest, invalidMessage)
		return false
	}

	return true
}

func writeMessage(response http.ResponseWriter, status int, message string) {
	writeJSON(response, status, models.MessageResponse{Message: message})
}

func writeJSON(response http.ResponseWriter, status int, payload interface{}) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)
	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Debugln("Error calling the `json.NewEncoder().Encode()`: ", zap.Error(err))
	}
}
