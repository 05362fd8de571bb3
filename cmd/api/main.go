package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"marketchat/internal/adapter/api"
	"marketchat/internal/adapter/api/handler"
	apimiddleware "marketchat/internal/adapter/api/middleware"
	"marketchat/internal/adapter/api/router"
	"marketchat/internal/adapter/repository"
	"marketchat/internal/infrastructure/mongodb"
	"marketchat/internal/usecase"
	"marketchat/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	mongoClient, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, time.Duration(cfg.ConnectTimeout)*time.Second)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Close(ctx)

	db := mongoClient.Database()

	if err := repository.EnsureChatRoomIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to ensure chat room indexes: %v", err)
	}
	if err := repository.EnsureMessageIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to ensure message indexes: %v", err)
	}

	chatRoomRepo := repository.NewMongoChatRoomRepository(db)
	messageRepo := repository.NewMongoMessageRepository(db)
	userDirectory := repository.NewMongoUserDirectory(db)
	productCatalog := repository.NewMongoProductCatalog(db)

	chatRoomUseCase := usecase.NewChatRoomUseCase(chatRoomRepo, messageRepo, userDirectory, productCatalog)
	messageUseCase := usecase.NewMessageUseCase(messageRepo, chatRoomRepo, chatRoomUseCase, userDirectory)
	chatUseCase := usecase.NewChatUseCase(chatRoomUseCase, messageUseCase, mongoClient)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	identityMiddleware := apimiddleware.NewIdentityMiddleware()
	chatHandler := handler.NewChatHandler(chatUseCase)

	router.Setup(e, chatHandler, identityMiddleware)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
