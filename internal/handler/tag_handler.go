package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetTags 返回标签列表及每个标签下已上线文章的数量
func (a *API) GetTags(c *gin.Context) {
	usages, err := a.tags.PublishedUsage()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取标签列表失败")
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

	c.JSON(http.StatusOK, gin.H{"tags": response})
}
