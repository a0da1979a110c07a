package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pakodev28/foodgram-project-react/internal/middleware"
	"github.com/pakodev28/foodgram-project-react/internal/models"
	"github.com/pakodev28/foodgram-project-react/internal/service"
	"github.com/pakodev28/foodgram-project-react/internal/types"
)

// UserHandler serves accounts and subscriptions
type UserHandler struct {
	userService service.IUserService
	auth        middleware.TokenValidator
	pageSize    int
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(userService service.IUserService, auth middleware.TokenValidator, pageSize int) *UserHandler {
	return &UserHandler{
		userService: userService,
		auth:        auth,
		pageSize:    pageSize,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.auth)
	optionalAuth := middleware.OptionalAuth(h.auth)

	users := router.Group("/users")
	{
		users.GET("", optionalAuth, h.ListUsers)
		users.POST("", h.Register)
		users.GET("/me", requireAuth, h.Me)
		users.POST("/set_password", requireAuth, h.SetPassword)
		users.GET("/subscriptions", requireAuth, h.Subscriptions)
		users.GET("/:id", optionalAuth, h.GetUser)
		users.GET("/:id/subscribe", requireAuth, h.Subscribe)
		users.POST("/:id/subscribe", requireAuth, h.Subscribe)
		users.DELETE("/:id/subscribe", requireAuth, h.Unsubscribe)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page := pageRequest(c, h.pageSize)
	users, total, err := h.userService.ListUsers(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}

	rendered, err := h.userService.RenderUsers(c.Request.Context(), viewerID(c), users)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, page, total, rendered))
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, service.ToUserResponse(user, false))
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := currentUserID(c)
	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.ToUserResponse(user, false))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	rendered, err := h.userService.RenderUsers(c.Request.Context(), viewerID(c), []models.User{*user})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rendered[0])
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	userID, _ := currentUserID(c)
	if err := h.userService.SetPassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	limit, ok := recipesLimit(c)
	if !ok {
		return
	}

	userID, _ := currentUserID(c)
	page := pageRequest(c, h.pageSize)
	subs, total, err := h.userService.Subscriptions(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, page, total, subs))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	limit, ok := recipesLimit(c)
	if !ok {
		return
	}

	userID, _ := currentUserID(c)
	author, err := h.userService.Subscribe(c.Request.Context(), userID, authorID)
	if err != nil {
		respondError(c, err)
		return
	}

	sub, err := h.userService.RenderSubscription(c.Request.Context(), author, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	userID, _ := currentUserID(c)
	if err := h.userService.Unsubscribe(c.Request.Context(), userID, authorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// recipesLimit parses ?recipes_limit; 0 means no limit
func recipesLimit(c *gin.Context) (int, bool) {
	raw := c.Query("recipes_limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"recipes_limit": []string{"A non-negative integer is required."}})
		return 0, false
	}
	return limit, true
}
