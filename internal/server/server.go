package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/polarops/internal/analytics"
	analyticsdomain "github.com/smallbiznis/polarops/internal/analytics/domain"
	"github.com/smallbiznis/polarops/internal/analytics/livefeed"
	"github.com/smallbiznis/polarops/internal/config"
	"github.com/smallbiznis/polarops/internal/equipment"
	equipmentdomain "github.com/smallbiznis/polarops/internal/equipment/domain"
	"github.com/smallbiznis/polarops/internal/observability"
	obsmiddleware "github.com/smallbiznis/polarops/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/polarops/internal/observability/metrics"
	obstracing "github.com/smallbiznis/polarops/internal/observability/tracing"
	"github.com/smallbiznis/polarops/internal/ratelimit"
	"github.com/smallbiznis/polarops/internal/servicerequest"
	servicerequestdomain "github.com/smallbiznis/polarops/internal/servicerequest/domain"
	"github.com/smallbiznis/polarops/internal/subscription"
	subscriptiondomain "github.com/smallbiznis/polarops/internal/subscription/domain"
	"github.com/smallbiznis/polarops/internal/technician"
	techniciandomain "github.com/smallbiznis/polarops/internal/technician/domain"
	"github.com/smallbiznis/polarops/internal/workorder"
	workorderdomain "github.com/smallbiznis/polarops/internal/workorder/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	equipment.Module,
	analytics.Module,
	servicerequest.Module,
	workorder.Module,
	technician.Module,
	subscription.Module,
	ratelimit.Module,
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, s *Server) {
	addr := cfg.HTTPAddr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine            *gin.Engine
	cfg               config.Config
	equipmentSvc      equipmentdomain.Service
	analyticsSvc      analyticsdomain.Service
	serviceRequestSvc servicerequestdomain.Service
	workOrderSvc      workorderdomain.Service
	technicianSvc     techniciandomain.Service
	subscriptionSvc   subscriptiondomain.Service
	liveFeed          *livefeed.Hub
	obsMetrics        *obsmetrics.Metrics
	readingLimiter    *ratelimit.ReadingIngestLimiter
}

type ServerParams struct {
	fx.In

	Gin               *gin.Engine
	Cfg               config.Config
	EquipmentSvc      equipmentdomain.Service
	AnalyticsSvc      analyticsdomain.Service
	ServiceRequestSvc servicerequestdomain.Service
	WorkOrderSvc      workorderdomain.Service
	TechnicianSvc     techniciandomain.Service
	SubscriptionSvc   subscriptiondomain.Service
	LiveFeed          *livefeed.Hub                   `optional:"true"`
	ObsMetrics        *obsmetrics.Metrics             `optional:"true"`
	ReadingLimiter    *ratelimit.ReadingIngestLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:            p.Gin,
		cfg:               p.Cfg,
		equipmentSvc:      p.EquipmentSvc,
		analyticsSvc:      p.AnalyticsSvc,
		serviceRequestSvc: p.ServiceRequestSvc,
		workOrderSvc:      p.WorkOrderSvc,
		technicianSvc:     p.TechnicianSvc,
		subscriptionSvc:   p.SubscriptionSvc,
		liveFeed:          p.LiveFeed,
		obsMetrics:        p.ObsMetrics,
		readingLimiter:    p.ReadingLimiter,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.OrgContext())

	api.GET("/equipment", s.ListEquipment)
	api.POST("/equipment", s.CreateEquipment)
	api.GET("/equipment/:id", s.GetEquipmentByID)
	api.PUT("/equipment/:id", s.UpdateEquipment)
	api.PATCH("/equipment/:id/operations", s.UpdateEquipmentOperation)
	api.DELETE("/equipment/:id", s.DeleteEquipment)

	api.GET("/equipment/:id/temperature-readings", s.ListTemperatureReadings)
	api.GET("/equipment/:id/temperature-readings/stream", s.StreamTemperatureReadings)
	api.GET("/equipment/:id/daily-temperature-averages", s.ListDailyTemperatureAverages)
	api.GET("/equipment/:id/energy-readings", s.ListEnergyReadings)
	api.POST("/temperature-readings", s.ReadingIngestRateLimit(), s.RecordTemperatureReading)
	api.POST("/energy-readings", s.ReadingIngestRateLimit(), s.RecordEnergyReading)

	api.GET("/service-requests", s.ListServiceRequests)
	api.POST("/service-requests", s.CreateServiceRequest)
	api.GET("/service-requests/:id", s.GetServiceRequestByID)
	api.PATCH("/service-requests/:id", s.UpdateServiceRequest)
	api.POST("/service-requests/:id/assign", s.AssignServiceRequestTechnician)
	api.POST("/service-requests/:id/resolution", s.AddServiceRequestResolution)
	api.POST("/service-requests/:id/feedback", s.AddServiceRequestFeedback)

	api.GET("/work-orders", s.ListWorkOrders)
	api.POST("/work-orders", s.CreateWorkOrder)
	api.GET("/work-orders/number/:number", s.GetWorkOrderByNumber)
	api.GET("/work-orders/:id", s.GetWorkOrderByID)
	api.POST("/work-orders/:id/assign", s.AssignWorkOrderTechnician)
	api.POST("/work-orders/:id/resolution", s.AddWorkOrderResolution)
	api.POST("/work-orders/:id/feedback", s.AddWorkOrderFeedback)
	api.PATCH("/work-orders/:id/status", s.UpdateWorkOrderStatus)
	api.PATCH("/work-orders/:id/schedule", s.UpdateWorkOrderSchedule)
	api.PATCH("/work-orders/:id/priority", s.UpdateWorkOrderPriority)

	api.GET("/technicians", s.ListTechnicians)
	api.POST("/technicians", s.CreateTechnician)
	api.GET("/technicians/:id", s.GetTechnicianByID)

	api.GET("/subscription-plans", s.ListSubscriptionPlans)
	api.POST("/subscription-plans", s.CreateSubscriptionPlan)
	api.GET("/subscription-plans/:id", s.GetSubscriptionPlanByID)
	api.PUT("/subscription-plans/:id", s.UpdateSubscriptionPlan)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
