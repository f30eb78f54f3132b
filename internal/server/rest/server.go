// Package rest exposes the services of the server of record over HTTP with
// echo. Every response is an envelope: {status: "success", data} or
// {status: "error", message}.
package rest

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/cbsr/biobank/internal/common"
	"github.com/cbsr/biobank/internal/logging"
	"github.com/cbsr/biobank/internal/server/auth"
	"github.com/cbsr/biobank/internal/server/services"
	"github.com/cbsr/biobank/internal/server/telemetry"
)

// Services are the business services the handlers call.
type Services struct {
	Studies      *services.StudyService
	Participants *services.ParticipantService
	CeventTypes  *services.CeventTypeService
	Centres      *services.CentreService
	Shipments    *services.ShipmentService
	Users        *services.UserService
}

type Options struct {
	SecretKey   []byte
	SessionTTL  time.Duration
	CORSOrigins []string
	// Metrics enables request counting and GET /metrics when set.
	Metrics *telemetry.Metrics
}

// Handler serves every route of the REST interface.
type Handler struct {
	svc     Services
	secret  []byte
	ttl     time.Duration
	revoked *auth.Revocations
	logger  logging.Logger
}

func NewHandler(svc Services, opts Options, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{
		svc:     svc,
		secret:  opts.SecretKey,
		ttl:     opts.SessionTTL,
		revoked: auth.NewRevocations(opts.SessionTTL),
		logger:  logger,
	}
}

// NewServer builds the echo instance with middleware and all routes.
func NewServer(svc Services, opts Options, logger logging.Logger) *echo.Echo {
	h := NewHandler(svc, opts, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = h.handleError

	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware(telemetry.ServiceName))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     opts.CORSOrigins,
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAccept, common.XSRFHeaderName},
		AllowCredentials: true,
	}))
	e.Use(h.requestLogger())
	if opts.Metrics != nil {
		e.Use(countRequests(opts.Metrics))
		e.GET("/metrics", echo.WrapHandler(opts.Metrics.Handler()))
	}

	h.RegisterRoutes(e)
	return e
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/login", h.handleLogin)
	e.POST("/passreset", h.handlePasswordReset)
	e.POST("/users", h.handleRegister)

	g := e.Group("", h.requireSession)

	g.POST("/logout", h.handleLogout)
	g.GET("/authenticate", h.handleAuthenticate)
	g.GET("/users/:id", h.handleGetUser)
	g.POST("/users/name/:id", h.handleUserName)
	g.POST("/users/email/:id", h.handleUserEmail)
	g.POST("/users/password/:id", h.handleUserPassword)
	g.POST("/users/avatarurl/:id", h.handleUserAvatarURL)
	for _, action := range []string{"activate", "lock", "unlock"} {
		g.POST("/users/"+action+"/:id", h.handleUserState(action))
	}

	g.GET("/studies", h.handleListStudies)
	g.GET("/studies/names", h.handleStudyNames)
	g.GET("/studies/:id", h.handleGetStudy)
	g.POST("/studies", h.handleAddStudy)
	g.POST("/studies/name/:id", h.handleStudyName)
	g.POST("/studies/description/:id", h.handleStudyDescription)
	g.POST("/studies/pannottype/:id", h.handleAddStudyAnnotationType)
	g.POST("/studies/pannottype/:id/:uniqueId", h.handleUpdateStudyAnnotationType)
	g.DELETE("/studies/pannottype/:id/:version/:uniqueId", h.handleRemoveStudyAnnotationType)
	for _, action := range []string{"disable", "enable", "retire", "unretire"} {
		g.POST("/studies/"+action+"/:id", h.handleStudyState(action))
	}
	g.GET("/studies/centres/:id", h.handleStudyLocations)

	g.GET("/studies/cetypes/:studyId", h.handleGetCeventTypes)
	g.POST("/studies/cetypes/:studyId", h.handleAddCeventType)
	g.POST("/studies/cetypes/name/:id", h.handleCeventTypeName)
	g.POST("/studies/cetypes/description/:id", h.handleCeventTypeDescription)
	g.POST("/studies/cetypes/recurring/:id", h.handleCeventTypeRecurring)
	g.POST("/studies/cetypes/annottype/:id", h.handleAddCeventAnnotationType)
	g.POST("/studies/cetypes/annottype/:id/:uniqueId", h.handleUpdateCeventAnnotationType)
	g.DELETE("/studies/cetypes/annottype/:id/:version/:uniqueId", h.handleRemoveCeventAnnotationType)
	g.DELETE("/studies/cetypes/:studyId/:id/:version", h.handleRemoveCeventType)

	g.GET("/participants/:studyId/:id", h.handleGetParticipant)
	g.GET("/participants/uniqueId/:studyId/:uniqueId", h.handleGetParticipantByUniqueID)
	g.POST("/participants/:studyId", h.handleAddParticipant)
	g.POST("/participants/uniqueId/:id", h.handleParticipantUniqueID)
	g.POST("/participants/annot/:id", h.handleAddParticipantAnnotation)
	g.DELETE("/participants/annot/:id/:version/:annotationTypeId", h.handleRemoveParticipantAnnotation)

	g.GET("/centres", h.handleListCentres)
	g.GET("/centres/:id", h.handleGetCentre)
	g.POST("/centres", h.handleAddCentre)
	g.POST("/centres/name/:id", h.handleCentreName)
	g.POST("/centres/description/:id", h.handleCentreDescription)
	for _, action := range []string{"disable", "enable"} {
		g.POST("/centres/"+action+"/:id", h.handleCentreState(action))
	}
	g.POST("/centres/locations", h.handleSearchLocations)
	g.POST("/centres/locations/:id", h.handleAddLocation)
	g.POST("/centres/locations/:id/:uniqueId", h.handleUpdateLocation)
	g.DELETE("/centres/locations/:id/:version/:uniqueId", h.handleRemoveLocation)
	g.POST("/centres/studies/:id", h.handleAddCentreStudy)
	g.DELETE("/centres/studies/:id/:version/:studyId", h.handleRemoveCentreStudy)

	g.GET("/shipments/list/:centreId", h.handleListShipments)
	g.GET("/shipments/:id", h.handleGetShipment)
	g.POST("/shipments", h.handleAddShipment)
	g.POST("/shipments/courier/:id", h.handleShipmentCourier)
	g.POST("/shipments/trackingnumber/:id", h.handleShipmentTrackingNumber)
	g.POST("/shipments/fromlocation/:id", h.handleShipmentFromLocation)
	g.POST("/shipments/tolocation/:id", h.handleShipmentToLocation)
	g.POST("/shipments/state/:id", h.handleShipmentState)
	g.DELETE("/shipments/:id/:version", h.handleRemoveShipment)
}
