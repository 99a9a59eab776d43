package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"herstory/internal/model"
	"herstory/internal/service"
)

// BlogHandler handles blog post endpoints.
type BlogHandler struct {
	postService service.PostService
}

// NewBlogHandler creates a new blog handler.
func NewBlogHandler(postService service.PostService) *BlogHandler {
	return &BlogHandler{postService: postService}
}

// PostsResponse wraps the post list.
type PostsResponse struct {
	Posts []model.BlogPost `json:"posts"`
}

// ListPosts godoc
// @Summary List blog posts, most recent first
// @Tags blog
// @Produce json
// @Success 200 {object} PostsResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /blog [get]
func (h *BlogHandler) ListPosts(c echo.Context) error {
	posts, err := h.postService.List(c.Request().Context())
	if err != nil {
		return respondError(c, "list posts", err)
	}
	return c.JSON(http.StatusOK, PostsResponse{Posts: posts})
}

// GetPost godoc
// @Summary Get blog post by id
// @Tags blog
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} model.BlogPost
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /blog/{id} [get]
func (h *BlogHandler) GetPost(c echo.Context) error {
	post, err := h.postService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, "get post", err)
	}
	return c.JSON(http.StatusOK, post)
}

// CreatePost godoc
// @Summary Create blog post
// @Tags blog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param post body model.PostInput true "Post payload"
// @Success 201 {object} model.BlogPost
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /blog [post]
func (h *BlogHandler) CreatePost(c echo.Context) error {
	var in model.PostInput
	if err := c.Bind(&in); err != nil {
		return invalidBody()
	}

	post, err := h.postService.Create(c.Request().Context(), in)
	if err != nil {
		return respondError(c, "create post", err)
	}
	return c.JSON(http.StatusCreated, post)
}

// UpdatePost godoc
// @Summary Replace blog post
// @Tags blog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param post body model.PostInput true "Post payload"
// @Success 200 {object} model.BlogPost
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /blog/{id} [put]
func (h *BlogHandler) UpdatePost(c echo.Context) error {
	var in model.PostInput
	if err := c.Bind(&in); err != nil {
		return invalidBody()
	}

	post, err := h.postService.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return respondError(c, "update post", err)
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost godoc
// @Summary Delete blog post
// @Tags blog
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /blog/{id} [delete]
func (h *BlogHandler) DeletePost(c echo.Context) error {
	if err := h.postService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, "delete post", err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
