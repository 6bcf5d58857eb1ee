package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterConfig bundles the handlers and middleware dependencies.
type RouterConfig struct {
	Logger      *zap.SugaredLogger
	Verifier    TokenVerifier
	Auth        *AuthHandler
	Assignments *AssignmentHandler
	Shipments   *ShipmentHandler
	Masterdata  *MasterdataHandler
	Deliveries  *DeliveryHandler
}

// NewRouter wires the REST surface. Everything except health and auth sits
// behind the bearer-token middleware.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Logger != nil {
		router.Use(RequestLogger(cfg.Logger))
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/auth/register", cfg.Auth.Register)
	router.POST("/auth/login", cfg.Auth.Login)

	api := router.Group("/api")
	api.Use(RequireAuth(cfg.Verifier))
	{
		api.POST("/cities", cfg.Masterdata.CreateCity)
		api.GET("/cities", cfg.Masterdata.ListCities)
		api.POST("/agencies", cfg.Masterdata.CreateAgency)
		api.GET("/agencies", cfg.Masterdata.ListAgencies)
		api.POST("/vehicles", cfg.Masterdata.CreateVehicle)
		api.GET("/vehicles", cfg.Masterdata.ListVehicles)
		api.POST("/parties", cfg.Masterdata.CreateParty)
		api.GET("/parties", cfg.Masterdata.ListParties)
		api.POST("/labourers", cfg.Masterdata.CreateLabourer)
		api.GET("/labourers", cfg.Masterdata.ListLabourers)

		api.POST("/shipments", cfg.Shipments.Create)
		api.GET("/shipments", cfg.Shipments.List)
		api.GET("/shipments/:id", cfg.Shipments.Get)

		api.POST("/deliveries", cfg.Deliveries.Create)
		api.GET("/deliveries", cfg.Deliveries.List)
		api.POST("/returns", cfg.Deliveries.CreateReturn)
		api.GET("/returns", cfg.Deliveries.ListReturns)
		api.POST("/returns/:id/resolve", cfg.Deliveries.ResolveReturn)

		api.POST("/assignments", cfg.Assignments.Create)
		api.GET("/assignments", cfg.Assignments.List)
		api.GET("/assignments/:id", cfg.Assignments.Get)
		api.GET("/assignments/:id/corrections", cfg.Assignments.Corrections)
		api.POST("/assignments/:id/deliver", cfg.Assignments.Deliver)
		api.POST("/assignments/:id/collect", cfg.Assignments.Collect)
		api.POST("/assignments/:id/settle", cfg.Assignments.Settle)
		api.POST("/assignments/:id/cancel", cfg.Assignments.Cancel)
	}

	return router
}
