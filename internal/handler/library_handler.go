package handler

import (
	"errors"
	"net/http"

	"skillhub/internal/logging"
	"skillhub/internal/model"
	"skillhub/internal/service"

	"github.com/gin-gonic/gin"
)

// LibraryHandler serves the caller's cart, favorites and enrolled courses. The user always comes from the token.
type LibraryHandler struct {
	service service.LibraryService
	log     logging.Logger
}

func NewLibraryHandler(s service.LibraryService, log logging.Logger) *LibraryHandler {
	return &LibraryHandler{service: s, log: log}
}

func bindSubcategoryRef(c *gin.Context) (int, bool) {
	var req model.SubcategoryRef
	if err := c.ShouldBind(&req); err != nil {
		validationFailed(c, bindingErrors(err))
		return 0, false
	}
	return req.SubcategoryID, true
}

func (h *LibraryHandler) AddToCart(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	subcategoryID, ok := bindSubcategoryRef(c)
	if !ok {
		return
	}

	err := h.service.AddToCart(c.Request.Context(), userID, subcategoryID)
	switch {
	case err == nil:
		respond(c, http.StatusCreated, "Item added to cart successfully", nil)
	case errors.Is(err, service.ErrAlreadyExists):
		fail(c, http.StatusConflict, "Item already in cart")
	case errors.Is(err, service.ErrNotFound):
		fail(c, http.StatusNotFound, msgSubcategoryNotFound)
	default:
		internalError(c, h.log, "add to cart failed", err)
	}
}

func (h *LibraryHandler) Cart(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	items, err := h.service.Cart(c.Request.Context(), userID)
	if err != nil {
		internalError(c, h.log, "list cart failed", err)
		return
	}
	respond(c, http.StatusOK, "Cart items fetched successfully", items)
}

func (h *LibraryHandler) RemoveFromCart(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	subcategoryID, ok := idParam(c, "subcategory_id", "Item not found in cart.")
	if !ok {
		return
	}

	err := h.service.RemoveFromCart(c.Request.Context(), userID, subcategoryID)
	switch {
	case err == nil:
		respond(c, http.StatusOK, "Item removed from cart successfully.", nil)
	case errors.Is(err, service.ErrNotFound):
		fail(c, http.StatusNotFound, "Item not found in cart.")
	default:
		internalError(c, h.log, "remove from cart failed", err)
	}
}

func (h *LibraryHandler) ToggleFavorite(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	subcategoryID, ok := bindSubcategoryRef(c)
	if !ok {
		return
	}

	added, err := h.service.ToggleFavorite(c.Request.Context(), userID, subcategoryID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			fail(c, http.StatusNotFound, msgSubcategoryNotFound)
			return
		}
		internalError(c, h.log, "toggle favorite failed", err)
		return
	}

	message := "Removed from favorites"
	if added {
		message = "Added to favorites"
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "message": message, "is_favourite": added})
}

func (h *LibraryHandler) Favorites(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	items, err := h.service.Favorites(c.Request.Context(), userID)
	if err != nil {
		internalError(c, h.log, "list favorites failed", err)
		return
	}
	respond(c, http.StatusOK, "Favorites fetched successfully", items)
}

func (h *LibraryHandler) RemoveFavorite(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	subcategoryID, ok := idParam(c, "subcategory_id", "Favorite not found for this user.")
	if !ok {
		return
	}

	err := h.service.RemoveFavorite(c.Request.Context(), userID, subcategoryID)
	switch {
	case err == nil:
		respond(c, http.StatusOK, "Favorite removed successfully.", nil)
	case errors.Is(err, service.ErrNotFound):
		fail(c, http.StatusNotFound, "Favorite not found for this user.")
	default:
		internalError(c, h.log, "remove favorite failed", err)
	}
}

func (h *LibraryHandler) AddMyCourse(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	subcategoryID, ok := bindSubcategoryRef(c)
	if !ok {
		return
	}

	course, err := h.service.AddMyCourse(c.Request.Context(), userID, subcategoryID)
	switch {
	case err == nil:
		respond(c, http.StatusCreated, "Course added to user successfully", course)
	case errors.Is(err, service.ErrAlreadyExists):
		fail(c, http.StatusConflict, "Course already purchased by this user")
	case errors.Is(err, service.ErrNotFound):
		fail(c, http.StatusNotFound, msgSubcategoryNotFound)
	default:
		internalError(c, h.log, "add my course failed", err)
	}
}

func (h *LibraryHandler) MyCourses(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	courses, err := h.service.MyCourses(c.Request.Context(), userID)
	if err != nil {
		internalError(c, h.log, "list my courses failed", err)
		return
	}
	respond(c, http.StatusOK, "Courses fetched successfully", courses)
}

// RegisterLibraryRoutes registers cart, favorites and my-courses routes
func (h *LibraryHandler) RegisterLibraryRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	cart := rg.Group("/cart", authMW)
	{
		cart.POST("", h.AddToCart)
		cart.GET("", h.Cart)
		cart.DELETE("/:subcategory_id", h.RemoveFromCart)
	}

	favorites := rg.Group("/favorites", authMW)
	{
		favorites.POST("", h.ToggleFavorite)
		favorites.GET("", h.Favorites)
		favorites.DELETE("/:subcategory_id", h.RemoveFavorite)
	}

	myCourses := rg.Group("/my-courses", authMW)
	{
		myCourses.POST("", h.AddMyCourse)
		myCourses.GET("", h.MyCourses)
	}
}
