package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/hotel_manager/internal/config"
	"github.com/Freeeeeet/hotel_manager/internal/controller"
	"github.com/Freeeeeet/hotel_manager/internal/controller/handlers"
	"github.com/Freeeeeet/hotel_manager/internal/model"
	"github.com/Freeeeeet/hotel_manager/internal/repository"
	"github.com/Freeeeeet/hotel_manager/internal/repository/base"
	"github.com/Freeeeeet/hotel_manager/internal/repository/memory"
	"github.com/Freeeeeet/hotel_manager/internal/service"
	"github.com/Freeeeeet/hotel_manager/internal/transport/web"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	shutdownTimeout = 10 * time.Second
	devTokenTTL     = 24 * time.Hour
)

// storage хранилища одного бэкенда: postgres или память
type storage struct {
	tx           service.TxManager
	rooms        service.RoomStore
	bookings     service.BookingStore
	reservations service.ReservationStore
	users        service.UserStore
	close        func()
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("✅ Connected to database")

	if cfg.MigrationsEnabled {
		migrator, err := NewMigrator(pool, logger)
		if err != nil {
			pool.Close()
			return nil, err
		}
		err = migrator.Run(ctx)
		_ = migrator.Close()
		if err != nil {
			pool.Close()
			return nil, err
		}
	}

	return &storage{
		tx:           base.NewTxManager(pool),
		rooms:        repository.NewRoomRepository(pool),
		bookings:     repository.NewBookingRepository(pool),
		reservations: repository.NewReservationRepository(pool),
		users:        repository.NewUserRepository(pool),
		close:        pool.Close,
	}, nil
}

// openMemory хранилище в памяти с одним администратором.
// Вне production в лог пишется токен администратора для ручной проверки API.
func openMemory(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	store := memory.New()

	admin := &model.User{Email: "admin@hotel.local", FullName: "Administrator", Role: model.RoleAdmin}
	if err := store.Users().Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	logger.Warn("⚠️  Using in-memory storage, data is lost on restart")
	if !cfg.IsProduction() {
		token, err := web.IssueToken([]byte(cfg.JWTSecret), admin.Principal(), devTokenTTL)
		if err != nil {
			return nil, fmt.Errorf("issue admin token: %w", err)
		}
		logger.Info("Development admin token", zap.Int64("user_id", admin.ID), zap.String("token", token))
	}

	return &storage{
		tx:           store,
		rooms:        store.Rooms(),
		bookings:     store.Bookings(),
		reservations: store.Reservations(),
		users:        store.Users(),
		close:        func() {},
	}, nil
}

// Run собирает приложение и блокируется до отмены ctx или падения HTTP сервера
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	var (
		st  *storage
		err error
	)
	switch cfg.Storage {
	case config.StorageMemory:
		st, err = openMemory(ctx, cfg, logger)
	default:
		st, err = openPostgres(ctx, cfg, logger)
	}
	if err != nil {
		return err
	}
	defer st.close()

	var (
		tgBot    *bot.Bot
		notifier = service.NopNotifier()
	)
	if cfg.BotEnabled() {
		tgBot, err = bot.New(cfg.TelegramToken)
		if err != nil {
			return fmt.Errorf("create bot: %w", err)
		}
		if cfg.StaffChatID != 0 {
			notifier = controller.NewStaffNotifier(tgBot, cfg.StaffChatID, logger)
		}
	}

	availability := service.NewAvailabilityEngine(st.bookings, st.reservations)
	roomState := service.NewRoomStateManager(st.rooms, logger)

	users := service.NewUserService(st.users, logger)
	rooms := service.NewRoomService(st.rooms, availability, logger)
	bookings := service.NewBookingService(st.tx, st.rooms, st.bookings, st.users, availability, roomState, notifier, logger)
	reservations := service.NewReservationService(st.tx, st.rooms, st.bookings, st.reservations, st.users, availability, roomState, notifier, logger)

	if tgBot != nil {
		botController := controller.NewBotController(tgBot, handlers.NewHandlers(users, rooms, bookings, reservations, logger), logger)
		if err := botController.RegisterHandlers(ctx); err != nil {
			logger.Warn("Bot commands menu not set", zap.Error(err))
		}
		go botController.Start(ctx) //nolint:errcheck
	}

	if cfg.ExpirySweepInterval > 0 {
		scheduler, err := NewScheduler(reservations, cfg.ExpirySweepInterval, logger)
		if err != nil {
			return err
		}
		if err := scheduler.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := scheduler.Stop(); err != nil {
				logger.Error("Failed to stop scheduler", zap.Error(err))
			}
		}()
	}

	srv := web.NewServer(web.Services{
		Rooms:        rooms,
		Bookings:     bookings,
		Reservations: reservations,
		Users:        users,
	}, web.Options{
		Addr:               cfg.HTTPAddr,
		JWTSecret:          []byte(cfg.JWTSecret),
		CORSOrigins:        cfg.CORSOrigins,
		Production:         cfg.IsProduction(),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		RateLimitBurst:     cfg.RateLimitBurst,
	}, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info("🚀 Hotel manager is running",
		zap.String("storage", cfg.Storage),
		zap.Bool("bot", tgBot != nil),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("Application stopped gracefully")
	return nil
}
