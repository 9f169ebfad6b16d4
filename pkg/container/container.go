package container

import (
	"context"
	"fmt"

	"busticket-backend/internal/config"
	"busticket-backend/internal/infrastructure/cache"
	"busticket-backend/internal/infrastructure/database"
	"busticket-backend/pkg/jwt"
	"busticket-backend/pkg/logger"

	bookingHandler "busticket-backend/internal/domains/booking/handler"
	bookingRepo "busticket-backend/internal/domains/booking/repository"
	bookingService "busticket-backend/internal/domains/booking/service"
	couponHandler "busticket-backend/internal/domains/coupon/handler"
	couponRepo "busticket-backend/internal/domains/coupon/repository"
	couponService "busticket-backend/internal/domains/coupon/service"
	"busticket-backend/internal/domains/payment/gateway"
	"busticket-backend/internal/domains/payment/gateway/vnpay"
	paymentHandler "busticket-backend/internal/domains/payment/handler"
	paymentRepo "busticket-backend/internal/domains/payment/repository"
	paymentService "busticket-backend/internal/domains/payment/service"
	ticketHandler "busticket-backend/internal/domains/ticket/handler"
	ticketRepo "busticket-backend/internal/domains/ticket/repository"
	ticketService "busticket-backend/internal/domains/ticket/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph. Everything in it is
// a singleton built once at startup, in dependency order.
type Container struct {
	// Infrastructure
	Config     *config.Config
	DB         *database.PostgresDB
	Redis      *cache.RedisClient
	JWTManager *jwt.Manager
	Gateway    gateway.PaymentGateway

	// Repositories
	CouponRepo     couponRepo.CouponRepository
	BookingRepo    bookingRepo.BookingRepository
	ReconcileRepo  paymentRepo.ReconciliationRepository
	TicketReadRepo ticketRepo.TicketReadRepository

	// Services
	CouponService    couponService.Service
	BookingService   bookingService.Service
	ReconcileService paymentService.Service
	TicketService    ticketService.Service

	// Handlers
	CouponHandler  *couponHandler.CouponHandler
	BookingHandler *bookingHandler.BookingHandler
	PaymentHandler *paymentHandler.PaymentHandler
	TicketHandler  *ticketHandler.TicketHandler
}

// NewContainer builds the whole graph:
// config -> infrastructure -> repositories -> services -> handlers.
func NewContainer(ctx context.Context) (*Container, error) {
	c := &Container{}

	// ========================================
	// STEP 1: CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Init(cfg.App.Environment)

	// ========================================
	// STEP 2: INFRASTRUCTURE
	// ========================================
	c.DB = database.NewPostgresDB(&cfg.Database)
	if err := c.DB.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	c.Redis = cache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Redis.Connect(ctx); err != nil {
		c.DB.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret)

	gw, err := vnpay.NewGateway(vnpay.NewConfig(
		cfg.VNPay.TmnCode,
		cfg.VNPay.HashSecret,
		cfg.VNPay.BaseURL,
		cfg.VNPay.ReturnURL,
	))
	if err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to build payment gateway: %w", err)
	}
	c.Gateway = gw

	// ========================================
	// STEP 3: REPOSITORIES
	// ========================================
	c.CouponRepo = couponRepo.NewPostgresCouponRepository(c.DB.Pool)
	c.BookingRepo = bookingRepo.NewPostgresBookingRepository(c.DB.Pool)
	c.ReconcileRepo = paymentRepo.NewPostgresReconciliationRepository(c.DB.Pool)
	c.TicketReadRepo = ticketRepo.NewPostgresTicketReadRepository(c.DB.Pool)

	// ========================================
	// STEP 4: SERVICES
	// ========================================
	c.CouponService = couponService.NewCouponService(c.CouponRepo)

	seatLocker := bookingService.NewRedisSeatLocker(c.Redis, cfg.Booking.SeatLockTTL)
	c.BookingService = bookingService.NewBookingService(c.BookingRepo, c.CouponService, c.Gateway, seatLocker)

	c.ReconcileService = paymentService.NewReconcileService(
		c.ReconcileRepo,
		c.CouponService,
		c.Gateway,
		cfg.Booking.PendingOrderTTL,
	)

	c.TicketService = ticketService.NewTicketService(c.TicketReadRepo)

	// ========================================
	// STEP 5: HANDLERS
	// ========================================
	c.CouponHandler = couponHandler.NewCouponHandler(c.CouponService)
	c.BookingHandler = bookingHandler.NewBookingHandler(c.BookingService)
	c.PaymentHandler = paymentHandler.NewPaymentHandler(c.ReconcileService, cfg.VNPay.ResultPageURL)
	c.TicketHandler = ticketHandler.NewTicketHandler(c.TicketService)

	logger.Info("Container initialized", map[string]interface{}{
		"environment": cfg.App.Environment,
	})
	return c, nil
}

// Cleanup releases infrastructure connections in reverse order
func (c *Container) Cleanup() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logger.Error("Failed to close redis client", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
