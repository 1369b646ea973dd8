package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"skillhub/internal/logging"
	"skillhub/internal/model"
	"skillhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	msgCategoryNotFound    = "Category not found"
	msgSubcategoryNotFound = "Subcategory not found"
)

// CatalogHandler serves categories and subcategories
type CatalogHandler struct {
	categories    service.CategoryService
	subcategories service.SubcategoryService
	log           logging.Logger
}

func NewCatalogHandler(categories service.CategoryService, subcategories service.SubcategoryService, log logging.Logger) *CatalogHandler {
	return &CatalogHandler{categories: categories, subcategories: subcategories, log: log}
}

type categoryForm struct {
	Name string `form:"name" json:"name" binding:"required,max=255"`
}

func toUpload(fh *multipart.FileHeader) *model.Upload {
	return &model.Upload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open:     func() (io.ReadCloser, error) { return fh.Open() },
	}
}

// formUpload returns the named file of a multipart request, or nil when none was sent.
func formUpload(c *gin.Context, name string) *model.Upload {
	fh, err := c.FormFile(name)
	if err != nil {
		return nil
	}
	return toUpload(fh)
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		internalError(c, h.log, "list categories failed", err)
		return
	}
	respond(c, http.StatusOK, "Categories fetched successfully", categories)
}

func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, ok := idParam(c, "id", msgCategoryNotFound)
	if !ok {
		return
	}
	category, err := h.categories.Get(c.Request.Context(), id)
	if err != nil {
		h.catalogError(c, err, msgCategoryNotFound, "get category failed")
		return
	}
	respond(c, http.StatusOK, "Category fetched successfully", category)
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var form categoryForm
	if err := c.ShouldBind(&form); err != nil {
		validationFailed(c, bindingErrors(err))
		return
	}
	category, err := h.categories.Create(c.Request.Context(), form.Name, formUpload(c, "image"))
	if err != nil {
		h.catalogError(c, err, msgCategoryNotFound, "create category failed")
		return
	}
	respond(c, http.StatusCreated, "Category created successfully", category)
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := idParam(c, "id", msgCategoryNotFound)
	if !ok {
		return
	}
	var form categoryForm
	if err := c.ShouldBind(&form); err != nil {
		validationFailed(c, bindingErrors(err))
		return
	}
	category, err := h.categories.Update(c.Request.Context(), id, form.Name, formUpload(c, "image"))
	if err != nil {
		h.catalogError(c, err, msgCategoryNotFound, "update category failed")
		return
	}
	respond(c, http.StatusOK, "Category updated", category)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := idParam(c, "id", msgCategoryNotFound)
	if !ok {
		return
	}
	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		h.catalogError(c, err, msgCategoryNotFound, "delete category failed")
		return
	}
	respond(c, http.StatusOK, "Category deleted", nil)
}

func (h *CatalogHandler) ListSubcategories(c *gin.Context) {
	subs, err := h.subcategories.List(c.Request.Context())
	if err != nil {
		internalError(c, h.log, "list subcategories failed", err)
		return
	}
	respond(c, http.StatusOK, "Subcategories fetched successfully", subs)
}

func (h *CatalogHandler) ListSubcategoriesByCategory(c *gin.Context) {
	id, ok := idParam(c, "id", msgCategoryNotFound)
	if !ok {
		return
	}
	category, subs, err := h.subcategories.ListByCategory(c.Request.Context(), id)
	if err != nil {
		h.catalogError(c, err, msgCategoryNotFound, "list subcategories by category failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        true,
		"category_name": category.Name,
		"subcategories": subs,
	})
}

func (h *CatalogHandler) GetSubcategory(c *gin.Context) {
	id, ok := idParam(c, "id", msgSubcategoryNotFound)
	if !ok {
		return
	}
	sub, err := h.subcategories.Get(c.Request.Context(), id)
	if err != nil {
		h.catalogError(c, err, msgSubcategoryNotFound, "get subcategory failed")
		return
	}
	respond(c, http.StatusOK, "Subcategory fetched successfully", sub)
}

const videoFieldPrefix = "video_file_"

// bindSubcategory reads a subcategory from a JSON body, or from a multipart form whose "data"
// field holds the JSON and whose files are "images" and "video_file_<module index>".
func bindSubcategory(c *gin.Context) (model.SubcategoryRequest, service.SubcategoryMedia, error) {
	var req model.SubcategoryRequest
	var media service.SubcategoryMedia

	if !strings.HasPrefix(c.ContentType(), gin.MIMEMultipartPOSTForm) {
		return req, media, c.ShouldBindJSON(&req)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return req, media, err
	}
	if err := json.Unmarshal([]byte(c.PostForm("data")), &req); err != nil {
		return req, media, err
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		return req, media, err
	}

	if files := form.File["images"]; len(files) > 0 {
		media.Image = toUpload(files[0])
	}
	for field, files := range form.File {
		if !strings.HasPrefix(field, videoFieldPrefix) || len(files) == 0 {
			continue
		}
		index, err := strconv.Atoi(strings.TrimPrefix(field, videoFieldPrefix))
		if err != nil {
			continue
		}
		if media.Videos == nil {
			media.Videos = map[int]*model.Upload{}
		}
		media.Videos[index] = toUpload(files[0])
	}
	return req, media, nil
}

func (h *CatalogHandler) CreateSubcategory(c *gin.Context) {
	req, media, err := bindSubcategory(c)
	if err != nil {
		validationFailed(c, bindingErrors(err))
		return
	}
	sub, err := h.subcategories.Create(c.Request.Context(), req, media)
	if err != nil {
		h.catalogError(c, err, msgSubcategoryNotFound, "create subcategory failed")
		return
	}
	respond(c, http.StatusCreated, "Subcategory created successfully", sub)
}

func (h *CatalogHandler) UpdateSubcategory(c *gin.Context) {
	id, ok := idParam(c, "id", msgSubcategoryNotFound)
	if !ok {
		return
	}
	req, media, err := bindSubcategory(c)
	if err != nil {
		validationFailed(c, bindingErrors(err))
		return
	}
	sub, err := h.subcategories.Update(c.Request.Context(), id, req, media)
	if err != nil {
		h.catalogError(c, err, msgSubcategoryNotFound, "update subcategory failed")
		return
	}
	respond(c, http.StatusOK, "Subcategory updated successfully", sub)
}

func (h *CatalogHandler) DeleteSubcategory(c *gin.Context) {
	id, ok := idParam(c, "id", msgSubcategoryNotFound)
	if !ok {
		return
	}
	if err := h.subcategories.Delete(c.Request.Context(), id); err != nil {
		h.catalogError(c, err, msgSubcategoryNotFound, "delete subcategory failed")
		return
	}
	respond(c, http.StatusOK, "Subcategory deleted", nil)
}

func (h *CatalogHandler) catalogError(c *gin.Context, err error, notFound, logMsg string) {
	if handleValidation(c, err) {
		return
	}
	if errors.Is(err, service.ErrNotFound) {
		fail(c, http.StatusNotFound, notFound)
		return
	}
	internalError(c, h.log, logMsg, err)
}

// RegisterCatalogRoutes registers category and subcategory routes
func (h *CatalogHandler) RegisterCatalogRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	categories := rg.Group("/categories")
	categories.Use(authMW)
	{
		categories.GET("", h.ListCategories)
		categories.GET("/:id", h.GetCategory)
		categories.GET("/:id/subcategories", h.ListSubcategoriesByCategory)
		categories.POST("", adminMW, h.CreateCategory)
		categories.PUT("/:id", adminMW, h.UpdateCategory)
		categories.POST("/:id", adminMW, h.UpdateCategory) // multipart clients cannot always send PUT
		categories.DELETE("/:id", adminMW, h.DeleteCategory)
	}

	subcategories := rg.Group("/subcategories")
	subcategories.Use(authMW)
	{
		subcategories.GET("", h.ListSubcategories)
		subcategories.GET("/:id", h.GetSubcategory)
		subcategories.POST("", adminMW, h.CreateSubcategory)
		subcategories.PUT("/:id", adminMW, h.UpdateSubcategory)
		subcategories.POST("/:id", adminMW, h.UpdateSubcategory)
		subcategories.DELETE("/:id", adminMW, h.DeleteSubcategory)
	}
}
