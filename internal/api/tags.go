package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pakodev28/foodgram-project-react/internal/middleware"
	"github.com/pakodev28/foodgram-project-react/internal/service"
	"github.com/pakodev28/foodgram-project-react/internal/types"
	"gorm.io/gorm"
)

// TagHandler serves the tag catalog. Tags are not paginated.
type TagHandler struct {
	tagService service.ITagService
	auth       middleware.TokenValidator
	db         *gorm.DB
}

// NewTagHandler creates a new TagHandler instance
func NewTagHandler(tagService service.ITagService, auth middleware.TokenValidator, db *gorm.DB) *TagHandler {
	return &TagHandler{tagService: tagService, auth: auth, db: db}
}

func (h *TagHandler) RegisterRoutes(router *gin.RouterGroup) {
	tags := router.Group("/tags")
	{
		tags.GET("", h.ListTags)
		tags.GET("/:id", h.GetTag)
		tags.POST("", middleware.AuthMiddleware(h.auth), middleware.RequireAdmin(h.db), h.CreateTag)
	}
}

func (h *TagHandler) ListTags(c *gin.Context) {
	tags, err := h.tagService.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]types.TagResponse, len(tags))
	for i := range tags {
		out[i] = service.ToTagResponse(&tags[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *TagHandler) GetTag(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	tag, err := h.tagService.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.ToTagResponse(tag))
}

func (h *TagHandler) CreateTag(c *gin.Context) {
	var req types.CreateTagRequest
	if !bindJSON(c, &req) {
		return
	}
	tag, err := h.tagService.CreateTag(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, service.ToTagResponse(tag))
}
