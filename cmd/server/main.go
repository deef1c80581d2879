package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/msvetlov/shopping_api/internal/config"
	"github.com/msvetlov/shopping_api/internal/es"
	"github.com/msvetlov/shopping_api/internal/handlers"
	"github.com/msvetlov/shopping_api/internal/imagestore"
	"github.com/msvetlov/shopping_api/internal/logging"
	loggingmw "github.com/msvetlov/shopping_api/internal/middleware/logging"
	"github.com/msvetlov/shopping_api/internal/mykafka"
	"github.com/msvetlov/shopping_api/internal/repo"
	"github.com/msvetlov/shopping_api/internal/service/order"
	"github.com/msvetlov/shopping_api/internal/service/token"
	httpserver "github.com/msvetlov/shopping_api/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	images, err := imagestore.New(configuration.IMAGE_DIR)
	if err != nil {
		log.Fatal(err)
	}

	prod := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}

	tokens := &token.TokenService{
		DB:            db,
		JWTSecret:     []byte(configuration.JWT_SECRET),
		RefreshSecret: []byte(configuration.REFRESH_SECRET),
	}

	stores := repo.New(db)
	orderSvc := order.New(stores)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		ProductHandler: &handlers.ProductHandler{DB: db, Images: images, Producer: prod},
		OrderHandler:   &handlers.OrderHandler{Svc: orderSvc, Producer: prod},
		AuthHandler:    &handlers.AuthHandler{DB: db, Tokens: tokens, Producer: prod},
		SearchHandler:  &handlers.SearchHandler{ES: esClient, Index: "products"},
		TokenService:   tokens,
		ImageDir:       configuration.IMAGE_DIR,
	})

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
