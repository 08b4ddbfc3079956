package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/vagaparlabs/vagapark/internal/config"
	customerdomain "github.com/vagaparlabs/vagapark/internal/customer/domain"
	pricingdomain "github.com/vagaparlabs/vagapark/internal/pricing/domain"
	ratedomain "github.com/vagaparlabs/vagapark/internal/rate/domain"
	receiptdomain "github.com/vagaparlabs/vagapark/internal/receipt/domain"
	ticketdomain "github.com/vagaparlabs/vagapark/internal/ticket/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Options(
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(RunHTTP),
)

type Server struct {
	engine *gin.Engine
	log    *zap.Logger
	cfg    config.Config

	db       *gorm.DB
	redis    *redis.Client
	registry *prometheus.Registry

	rateSvc     ratedomain.Service
	rateRepo    ratedomain.Repository
	pricingSvc  pricingdomain.Service
	ticketSvc   ticketdomain.Service
	customerSvc customerdomain.Service
	receiptSvc  receiptdomain.Service
}

type ServerParam struct {
	fx.In

	Engine *gin.Engine
	Log    *zap.Logger
	Config config.Config

	DB       *gorm.DB
	Redis    *redis.Client        `optional:"true"`
	Registry *prometheus.Registry `optional:"true"`

	RateSvc     ratedomain.Service
	RateRepo    ratedomain.Repository
	PricingSvc  pricingdomain.Service
	TicketSvc   ticketdomain.Service
	CustomerSvc customerdomain.Service
	ReceiptSvc  receiptdomain.Service
}

func NewEngine(log *zap.Logger) *gin.Engine {
	if os.Getenv("APP_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(log))
	return engine
}

func NewServer(p ServerParam) *Server {
	return &Server{
		engine: p.Engine,
		log:    p.Log.Named("server"),
		cfg:    p.Config,

		db:       p.DB,
		redis:    p.Redis,
		registry: p.Registry,

		rateSvc:     p.RateSvc,
		rateRepo:    p.RateRepo,
		pricingSvc:  p.PricingSvc,
		ticketSvc:   p.TicketSvc,
		customerSvc: p.CustomerSvc,
		receiptSvc:  p.ReceiptSvc,
	}
}

func (s *Server) RegisterRoutes() {
	s.engine.GET("/readyz", s.GetReadiness)
	if s.registry != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	}

	v1 := s.engine.Group("/v1")

	rates := v1.Group("/rates")
	rates.POST("", s.CreateRate)
	rates.GET("", s.ListRates)
	rates.GET("/:id", s.GetRate)
	rates.PATCH("/:id", s.UpdateRate)
	rates.POST("/:id/windows", s.CreateTimeWindow)
	rates.GET("/:id/windows", s.ListTimeWindows)
	rates.POST("/:id/thresholds", s.CreateThreshold)
	rates.GET("/:id/thresholds", s.ListThresholds)

	tickets := v1.Group("/tickets")
	tickets.POST("", s.OpenTicket)
	tickets.GET("", s.ListTickets)
	tickets.GET("/:id", s.GetTicket)
	tickets.POST("/:id/preview", s.PreviewTicket)
	tickets.POST("/:id/checkout", s.CheckoutTicket)
	tickets.GET("/:id/receipt", s.GetTicketReceipt)

	customers := v1.Group("/customers")
	customers.POST("", s.CreateCustomer)
	customers.GET("", s.ListCustomers)
	customers.GET("/:id", s.GetCustomer)
	customers.PATCH("/:id", s.UpdateCustomer)
	customers.GET("/:id/charge-preview", s.PreviewCustomerCharge)

	v1.POST("/pricing/preview", s.PreviewPrice)
}

func RunHTTP(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
