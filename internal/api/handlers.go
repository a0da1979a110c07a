package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pakodev28/foodgram-project-react/internal/middleware"
	"github.com/pakodev28/foodgram-project-react/internal/service"
	"gorm.io/gorm"
)

func init() {
	// report binding errors under the JSON field names
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// Dependencies are the services the HTTP handlers are built from.
// The rate limiters are nil when Redis is not configured.
type Dependencies struct {
	DB            *gorm.DB
	Auth          service.IAuthService
	Users         service.IUserService
	Recipes       service.IRecipeService
	Tags          service.ITagService
	Ingredients   service.IIngredientService
	CreateLimiter *middleware.RateLimiter
	UpdateLimiter *middleware.RateLimiter
	PageSize      int
}

// HealthCheck returns the health status of the API
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{
			"status":  "healthy",
			"message": "Foodgram API is running",
		}
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
				err = sqlDB.PingContext(ctx)
				cancel()
			}
			if err != nil {
				log.Printf("[HealthCheck] database unavailable: %v", err)
				status = http.StatusServiceUnavailable
				body["status"] = "unhealthy"
				body["message"] = "database unavailable"
			}
		}
		c.JSON(status, body)
	}
}

// RegisterRoutes registers all API routes under /api
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health", HealthCheck(deps.DB))

	apiGroup := router.Group("/api")
	apiGroup.GET("/health", HealthCheck(deps.DB))

	NewAuthHandler(deps.Auth).RegisterRoutes(apiGroup)
	NewUserHandler(deps.Users, deps.Auth, deps.PageSize).RegisterRoutes(apiGroup)
	NewTagHandler(deps.Tags, deps.Auth, deps.DB).RegisterRoutes(apiGroup)
	NewIngredientHandler(deps.Ingredients, deps.Auth, deps.DB).RegisterRoutes(apiGroup)
	NewRecipeHandler(deps.Recipes, deps.Auth, deps.PageSize, deps.CreateLimiter, deps.UpdateLimiter).RegisterRoutes(apiGroup)

	if deps.CreateLimiter != nil && deps.UpdateLimiter != nil {
		RegisterRateLimitRoutes(apiGroup, deps.Auth, deps.CreateLimiter, deps.UpdateLimiter)
	}
}

// RegisterRateLimitRoutes registers endpoints for checking rate limit status
func RegisterRateLimitRoutes(router *gin.RouterGroup, auth middleware.TokenValidator, creationLimiter, modificationLimiter *middleware.RateLimiter) {
	rateLimits := router.Group("/rate-limits")
	rateLimits.Use(middleware.AuthMiddleware(auth))
	{
		rateLimits.GET("/recipe-creation", func(c *gin.Context) {
			userID, _ := currentUserID(c)
			remaining, resetTime, err := creationLimiter.GetRemainingRequests(c.Request.Context(), userID.String())
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check rate limit"})
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"remaining":  remaining,
				"reset_time": resetTime.Unix(),
				"window":     "1h",
			})
		})

		rateLimits.GET("/recipe-modification/:id", func(c *gin.Context) {
			userID, _ := currentUserID(c)
			recipeID, ok := pathUUID(c, "id")
			if !ok {
				return
			}
			key := fmt.Sprintf("%s:%s", userID, recipeID)
			remaining, resetTime, err := modificationLimiter.GetRemainingRequests(c.Request.Context(), key)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check rate limit"})
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"remaining":  remaining,
				"reset_time": resetTime.Unix(),
				"window":     "1h",
				"recipe_id":  recipeID,
			})
		})
	}
}

// currentUserID returns the id set by the auth middleware
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// viewerID is currentUserID for endpoints open to anonymous callers
func viewerID(c *gin.Context) *uuid.UUID {
	if id, ok := currentUserID(c); ok {
		return &id
	}
	return nil
}

// pathUUID parses a path parameter. Malformed ids cannot match any row, so
// they answer 404.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the request body and writes the 400 response on failure
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondError(c, err)
		return false
	}
	return true
}

// respondError maps service and binding errors to HTTP responses
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	var bindErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, verr.Fields)
	case errors.As(err, &bindErrs):
		c.JSON(http.StatusBadRequest, validationMessages(bindErrs))
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "non_field_errors"
		}
		c.JSON(http.StatusBadRequest, gin.H{field: []string{fmt.Sprintf("Expected a value of type %s.", typeErr.Type)}})
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed JSON body"})
	case errors.Is(err, io.EOF):
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body is required"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not have permission to perform this action"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"non_field_errors": []string{"Unable to log in with provided credentials."}})
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenRevoked):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSelfSubscription),
		errors.Is(err, service.ErrAlreadyExists),
		errors.Is(err, service.ErrNotInList):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("[API] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}

func validationMessages(errs validator.ValidationErrors) map[string][]string {
	out := make(map[string][]string, len(errs))
	for _, fe := range errs {
		var msg string
		switch fe.Tag() {
		case "required":
			msg = "This field is required."
		case "email":
			msg = "Enter a valid email address."
		case "hexcolor":
			msg = "Enter a valid hex color, e.g. #49B64E."
		case "min":
			msg = fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		case "max":
			msg = fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		default:
			msg = "Invalid value."
		}
		out[fe.Field()] = append(out[fe.Field()], msg)
	}
	return out
}
