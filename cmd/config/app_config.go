package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"Foodgram/internal/api/handlers"
	"Foodgram/internal/api/routes"
	"Foodgram/internal/middleware"
	"Foodgram/internal/utils"
	"Foodgram/internal/utils/storage"
	"Foodgram/pkg/catalog"
	"Foodgram/pkg/jwt"
	"Foodgram/pkg/recipe"
	"Foodgram/pkg/shoppinglist"
	"Foodgram/pkg/social"
	"Foodgram/pkg/user"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET is not configured")

// NewJWTService builds the token service from JWT_SECRET, which must be set.
func NewJWTService() (jwt.JWTService, error) {
	secret := utils.GetConfig("JWT_SECRET")
	if secret == "" {
		return nil, ErrMissingJWTSecret
	}
	return jwt.NewJWTService(secret), nil
}

func NewFiber() *fiber.App {
	return fiber.New(fiber.Config{
		AppName:     "Foodgram",
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
}

func NewApp(db *gorm.DB) (*fiber.App, error) {
	jwtService, err := NewJWTService()
	if err != nil {
		return nil, err
	}
	app := NewFiber()

	// setting up logging and limiter
	if err := os.MkdirAll("./logs", os.ModePerm); err != nil {
		return nil, fmt.Errorf("error creating logs directory: %w", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "UTC",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        50,
		Expiration: 1 * time.Second,
	}))

	// utils
	var s3 storage.AwsS3
	if utils.GetConfig("AWS_S3_BUCKET") != "" {
		s3 = storage.NewAwsS3()
	}

	SetupRoutes(app, db, s3, jwtService)
	return app, nil
}

// SetupRoutes wires repositories, services and handlers onto app.
// A nil s3 stores recipe images as submitted.
func SetupRoutes(app *fiber.App, db *gorm.DB, s3 storage.AwsS3, jwtService jwt.JWTService) {
	utils.InitValidator()
	validator := utils.Validate
	middlewares := middleware.NewMiddleware()

	// Repository
	userRepository := user.NewUserRepository(db)
	catalogRepository := catalog.NewCatalogRepository(db)
	recipeRepository := recipe.NewRecipeRepository(db)
	socialRepository := social.NewSocialRepository(db)
	shoppingListRepository := shoppinglist.NewShoppingListRepository(db)

	// Service
	userService := user.NewUserService(userRepository, jwtService)
	catalogService := catalog.NewCatalogService(catalogRepository, validator)
	recipeService := recipe.NewRecipeService(recipeRepository, catalogRepository, s3)
	socialService := social.NewSocialService(socialRepository, recipeRepository, userRepository)
	shoppingListService := shoppinglist.NewShoppingListService(shoppingListRepository, socialService, userRepository)

	// Handler
	userHandler := handlers.NewUserHandler(userService, socialService, validator)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	recipeHandler := handlers.NewRecipeHandler(recipeService, socialService, validator)
	shoppingCartHandler := handlers.NewShoppingCartHandler(socialService, shoppingListService)

	// routes
	routesConfig := routes.Config{
		App:                 app,
		UserHandler:         userHandler,
		CatalogHandler:      catalogHandler,
		RecipeHandler:       recipeHandler,
		ShoppingCartHandler: shoppingCartHandler,
		Middleware:          middlewares,
		JWTService:          jwtService,
	}
	routesConfig.Setup()
}
