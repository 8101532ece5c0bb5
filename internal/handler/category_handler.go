package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/service"
)

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// GetCategories 返回分类列表及每个分类下已上线文章的数量
func (a *API) GetCategories(c *gin.Context) {
	usages, err := a.categories.PublishedUsage()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取分类列表失败")
		return
	}

	response := make([]gin.H, 0, len(usages))
	for _, usage := range usages {
		response = append(response, gin.H{
			"id":         usage.ID,
			"name":       usage.Name,
			"post_count": usage.Count,
		})
	}

	c.JSON(http.StatusOK, gin.H{"categories": response})
}

// CreateCategory 创建新分类
func (a *API) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if !bindJSON(c, &req, "分类名称不能为空") {
		return
	}

	category, err := a.categories.Create(req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryExists):
			respondFieldError(c, "name", "分类已存在")
		case errors.Is(err, service.ErrCategoryRequired):
			respondFieldError(c, "name", "分类名称不能为空")
		default:
			respondError(c, http.StatusInternalServerError, "创建分类失败")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "分类创建成功", "category": gin.H{"id": category.ID, "name": category.Name}})
}

// DeleteCategory 删除未被文章引用的分类
func (a *API) DeleteCategory(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的分类ID")
		return
	}

	if err := a.categories.Delete(id); err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryInUse):
			respondError(c, http.StatusBadRequest, "分类下仍有文章，无法删除")
		case errors.Is(err, service.ErrCategoryNotFound):
			respondError(c, http.StatusNotFound, "分类不存在")
		default:
			respondError(c, http.StatusInternalServerError, "删除分类失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "分类删除成功", "id": id})
}
