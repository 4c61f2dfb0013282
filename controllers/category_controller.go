package controllers

import (
	"errors"
	"net/http"

	"debatehub/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CategoryController serves the category catalogue.
type CategoryController struct {
	categories store.CategoryStore
	log        *logrus.Logger
}

func NewCategoryController(categories store.CategoryStore, log *logrus.Logger) *CategoryController {
	return &CategoryController{categories: categories, log: log}
}

// ListCategories handles GET /categories
func (cc *CategoryController) ListCategories(c *gin.Context) {
	list, err := cc.categories.List(c.Request.Context())
	if err != nil {
		respondError(c, cc.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetCategory handles GET /categories/:id
func (cc *CategoryController) GetCategory(c *gin.Context) {
	category, err := cc.categories.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		respondError(c, cc.log, err)
		return
	}
	c.JSON(http.StatusOK, category)
}
