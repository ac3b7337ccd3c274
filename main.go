package main

import (
	"bidhub/account"
	"bidhub/bizerror"
	"bidhub/broadcast"
	"bidhub/chat"
	"bidhub/client/s3"
	"bidhub/common"
	"bidhub/config"
	"bidhub/domain"
	"bidhub/domain/bidding"
	"bidhub/event"
	"bidhub/infra/tracing"
	"bidhub/notification"
	"bidhub/persistence"
	"bidhub/servehttp"
	"bidhub/session"
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config failed %v\n", err)
	}
	if err := common.ConfigureLogging(cfg.ServiceName, cfg.LogLevel); err != nil {
		logrus.Fatalf("configure logging failed %v\n", err)
	}
	logrus.Info("service start")

	tracerCloser, err := tracing.Bootstrap(cfg.ServiceName, cfg.TracingEnabled)
	if err != nil {
		logrus.Fatalf("tracing bootstrap failed %v\n", err)
	}
	defer tracerCloser.Close()

	// create database (no conflict)
	dbConfig := &persistence.DatabaseConfig{DriverType: cfg.DBDriver, DriverArgs: cfg.DBArgs}
	if dbConfig.DriverType == persistence.DriverMysql {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		logrus.Fatalf("database conneciton failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB(context.Background()).AutoMigrate(&account.User{}, &domain.WorkUnit{}, &domain.Bid{},
		&event.EventRecord{}, &notification.Notification{}, &chat.Room{}, &chat.Pairing{}).Error
	if err != nil {
		logrus.Fatalf("database migration failed %v\n", err)
	}

	if err := s3.Bootstrap(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey, cfg.OSSBucket); err != nil {
		logrus.Fatalf("oss bootstrap failed %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	group, ctx := errgroup.WithContext(ctx)

	hub := broadcast.NewHub(broadcast.DefaultSubscriberBuffer)
	broadcast.ActiveBroadcaster = hub
	if cfg.RedisAddr != "" {
		client, err := broadcast.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logrus.Fatalf("redis connection failed %v\n", err)
		}
		defer client.Close()
		relay := broadcast.NewRedisRelay(client)
		broadcast.ActiveBroadcaster = relay
		group.Go(func() error {
			return relay.Run(ctx, hub)
		})
	}

	engine := gin.Default()
	engine.Use(bizerror.ErrorHandling())
	engine.Use(tracing.TracingIngress())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, cfg.ServiceName)
	})

	auth := session.SimpleAuthFilter()
	bidding.RegisterWorkUnitsRestAPI(engine, auth)
	bidding.RegisterBidsRestAPI(engine, auth)
	notification.RegisterNotificationsRestAPI(engine, auth)
	broadcast.RegisterStreamHandler(engine, hub, auth)
	chat.RegisterRoomsRestAPI(engine, []gin.HandlerFunc{servehttp.RateLimit(servehttp.NewLimiter(cfg.RoomCreateRate))}, auth)

	group.Go(func() error {
		return servehttp.StartHTTPServer(ctx, cfg.HTTPAddr, engine)
	})
	if err := group.Wait(); err != nil {
		logrus.Errorf("service stopped with error %v", err)
		return
	}
	logrus.Info("[QUIT] service exiting")
}
