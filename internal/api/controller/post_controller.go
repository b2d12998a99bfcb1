package controller

import (
	"ctchen222/Simple-Blog/internal/api/models"
	"ctchen222/Simple-Blog/internal/api/response"
	"ctchen222/Simple-Blog/internal/api/service"
	"ctchen222/Simple-Blog/internal/middleware"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// PostController handles the dashboard and post CRUD pages.
type PostController struct {
	postService service.PostService
}

// NewPostController creates a new PostController.
func NewPostController(postService service.PostService) *PostController {
	return &PostController{
		postService: postService,
	}
}

// Home shows the dashboard to signed-in users and the landing page to everyone else.
func (pc *PostController) Home(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Render(c, http.StatusOK, "homepage", nil)
		return
	}

	posts, err := pc.postService.ListByAuthor(c.Request.Context(), user.UserID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Render(c, http.StatusOK, "dashboard", gin.H{"posts": posts})
}

// CreatePage renders an empty post form.
func (pc *PostController) CreatePage(c *gin.Context) {
	response.Render(c, http.StatusOK, "create-post", nil)
}

// Create stores a new post written by the current user.
func (pc *PostController) Create(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req models.PostRequest
	bindForm(c, &req)

	post, err := pc.postService.Create(c.Request.Context(), user.UserID, &req)
	if err != nil {
		if messages, ok := service.ValidationMessages(err); ok {
			response.Errors(c, http.StatusOK, "create-post", messages, gin.H{"post": req})
			return
		}
		response.InternalError(c, err)
		return
	}

	response.Redirect(c, postPath(post.ID))
}

// View shows a single post. Edit and delete controls appear only for its author.
func (pc *PostController) View(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		response.Redirect(c, "/")
		return
	}

	viewer, _ := middleware.CurrentUser(c)
	post, isAuthor, err := pc.postService.View(c.Request.Context(), id, viewer)
	if err != nil {
		pc.handleLookupError(c, err)
		return
	}

	response.Render(c, http.StatusOK, "single-post", gin.H{"post": post, "isAuthor": isAuthor})
}

// EditPage renders the edit form for a post the current user wrote.
func (pc *PostController) EditPage(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		response.Redirect(c, "/")
		return
	}
	user, _ := middleware.CurrentUser(c)

	post, err := pc.postService.GetOwned(c.Request.Context(), id, user.UserID)
	if err != nil {
		pc.handleLookupError(c, err)
		return
	}

	response.Render(c, http.StatusOK, "edit-post", gin.H{"post": post})
}

// Edit saves changes to a post the current user wrote.
func (pc *PostController) Edit(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		response.Redirect(c, "/")
		return
	}
	user, _ := middleware.CurrentUser(c)

	var req models.PostRequest
	bindForm(c, &req)

	post, err := pc.postService.Update(c.Request.Context(), id, user.UserID, &req)
	if err != nil {
		if messages, ok := service.ValidationMessages(err); ok {
			response.Errors(c, http.StatusOK, "edit-post", messages, gin.H{"post": post})
			return
		}
		pc.handleLookupError(c, err)
		return
	}

	response.Redirect(c, postPath(post.ID))
}

// Delete removes a post the current user wrote.
func (pc *PostController) Delete(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		response.Redirect(c, "/")
		return
	}
	user, _ := middleware.CurrentUser(c)

	if err := pc.postService.Delete(c.Request.Context(), id, user.UserID); err != nil {
		pc.handleLookupError(c, err)
		return
	}

	response.Redirect(c, "/")
}

// handleLookupError sends missing and foreign posts home; anything else is a 500.
func (pc *PostController) handleLookupError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrPostNotFound) {
		response.Redirect(c, "/")
		return
	}
	response.InternalError(c, err)
}

func postID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func postPath(id int64) string {
	return fmt.Sprintf("/post/%d", id)
}
