package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Options struct {
	Addr        string
	JWTSecret   []byte
	CORSOrigins []string
	Production  bool
	// RateLimitPerMinute ограничивает создание броней и резервов с одного IP, 0 отключает лимит
	RateLimitPerMinute int
	RateLimitBurst     int
}

// NewRouter собирает gin.Engine со всеми маршрутами API
func NewRouter(svc Services, opts Options, logger *zap.Logger) *gin.Engine {
	if opts.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	_ = r.SetTrustedProxies(nil)

	r.Use(requestID(), recovery(logger), accessLog(logger))
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))

	h := &handler{svc: svc, logger: logger}

	r.GET("/health", h.health)

	api := r.Group("/api")

	// Публичные маршруты
	api.POST("/users", optionalAuth(opts.JWTSecret), h.registerUser)
	api.GET("/rooms", h.listRooms)
	api.GET("/rooms/:id", h.getRoom)
	api.GET("/rooms/:id/availability", h.roomAvailability)

	authed := api.Group("")
	authed.Use(requireAuth(opts.JWTSecret))

	var limiter *ipRateLimiter
	if opts.RateLimitPerMinute > 0 {
		limiter = newIPRateLimiter(opts.RateLimitPerMinute, max(opts.RateLimitBurst, 1), 10*time.Minute)
	}
	// limited добавляет лимит по IP перед обработчиком создания
	limited := func(next gin.HandlerFunc) []gin.HandlerFunc {
		if limiter == nil {
			return []gin.HandlerFunc{next}
		}
		return []gin.HandlerFunc{rateLimit(limiter), next}
	}

	authed.GET("/me", h.me)

	rooms := authed.Group("/rooms")
	{
		rooms.POST("", h.createRoom)
		rooms.PATCH("/:id", h.updateRoom)
		rooms.DELETE("/:id", h.deactivateRoom)
	}

	bookings := authed.Group("/bookings")
	{
		bookings.POST("", limited(h.createBooking)...)
		bookings.GET("", h.listBookings)
		bookings.GET("/:id", h.getBooking)
		bookings.PATCH("/:id", h.updateBooking)
		bookings.POST("/:id/cancel", h.cancelBooking)
		bookings.POST("/:id/confirm", h.bookingTransition(svc.Bookings.ConfirmBooking))
		bookings.POST("/:id/check-in", h.bookingTransition(svc.Bookings.CheckInGuest))
		bookings.POST("/:id/check-out", h.bookingTransition(svc.Bookings.CheckOutGuest))
	}

	reservations := authed.Group("/reservations")
	{
		reservations.POST("", limited(h.createReservation)...)
		reservations.GET("", h.listReservations)
		reservations.GET("/:id", h.getReservation)
		reservations.DELETE("/:id", h.deleteReservation)
		reservations.POST("/:id/confirm", h.confirmReservation)
		reservations.POST("/:id/cancel", h.cancelReservation)
		reservations.POST("/:id/convert", h.convertReservation)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", headerRequestID},
		ExposeHeaders:    []string{"Content-Length", headerRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowCredentials = false
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

// Server HTTP сервер API с корректной остановкой
type Server struct {
	http   *http.Server
	logger *zap.Logger
}

func NewServer(svc Services, opts Options, logger *zap.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              opts.Addr,
			Handler:           NewRouter(svc, opts, logger),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
	}
}

// Start блокируется до остановки сервера
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.http.Addr))

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
