package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/service"
)

type postRequest struct {
	Title              string `json:"title"`
	Description        string `json:"description"`
	Content            string `json:"content"`
	Category           string `json:"category"`
	Tags               string `json:"tags"`
	Status             string `json:"status"`
	Featured           bool   `json:"featured"`
	ScheduledPublishAt string `json:"scheduled_publish_at"`
}

// postUpdateRequest 的字段均为指针，缺省字段保持原值。
// scheduled_publish_at 传空字符串表示取消定时发布。
type postUpdateRequest struct {
	Title              *string `json:"title"`
	Description        *string `json:"description"`
	Content            *string `json:"content"`
	Category           *string `json:"category"`
	Tags               *string `json:"tags"`
	Status             *string `json:"status"`
	Featured           *bool   `json:"featured"`
	ScheduledPublishAt *string `json:"scheduled_publish_at"`
}

// CreatePost 创建新文章
func (a *API) CreatePost(c *gin.Context) {
	var req postRequest
	if !bindJSON(c, &req, "请求格式不正确") {
		return
	}

	scheduledAt, ok := parseScheduleField(c, req.ScheduledPublishAt)
	if !ok {
		return
	}

	input := service.PostInput{
		Title:              req.Title,
		Description:        req.Description,
		Content:            req.Content,
		Category:           req.Category,
		Tags:               service.SplitTagList(req.Tags),
		Status:             req.Status,
		Featured:           req.Featured,
		ScheduledPublishAt: scheduledAt,
		UserID:             currentUserID(c),
	}

	post, err := a.posts.Create(input)
	if err != nil {
		respondPostWriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "文章创建成功", "post": postView(*post, true)})
}

// UpdatePost 更新文章，未提供的字段保持不变
func (a *API) UpdatePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的文章ID")
		return
	}

	var req postUpdateRequest
	if !bindJSON(c, &req, "请求格式不正确") {
		return
	}

	update := service.PostUpdate{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Category:    req.Category,
		Status:      req.Status,
		Featured:    req.Featured,
	}

	if req.Tags != nil {
		names := service.SplitTagList(*req.Tags)
		update.Tags = &names
	}

	if req.ScheduledPublishAt != nil {
		if strings.TrimSpace(*req.ScheduledPublishAt) == "" {
			update.ClearSchedule = true
		} else {
			scheduledAt, ok := parseScheduleField(c, *req.ScheduledPublishAt)
			if !ok {
				return
			}
			update.ScheduledPublishAt = scheduledAt
		}
	}

	post, err := a.posts.Update(id, update)
	if err != nil {
		respondPostWriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "文章更新成功", "post": postView(*post, true)})
}

// DeletePost 删除文章并返回被删除的ID
func (a *API) DeletePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的文章ID")
		return
	}

	if err := a.posts.Delete(id); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "文章不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除文章失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "文章删除成功", "id": id})
}

// GetPost 获取单篇文章，响应附带净化后的 HTML 内容
func (a *API) GetPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的文章ID")
		return
	}

	post, err := a.posts.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "文章不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取文章失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": postView(*post, true)})
}

// GetPosts 获取文章列表，支持 status=draft|published|all 筛选
func (a *API) GetPosts(c *gin.Context) {
	filter := service.PostFilter{Status: c.Query("status")}

	posts, err := a.posts.List(filter)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			respondFieldError(c, "status", "无效的状态筛选")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取文章列表失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": postViews(posts), "total": len(posts)})
}

// ListRecentPosts 按发布时间倒序返回已上线文章，支持分页与精选筛选
func (a *API) ListRecentPosts(c *gin.Context) {
	limit := parseNonNegativeInt(c.DefaultQuery("limit", "10"), 10)
	offset := parseNonNegativeInt(c.DefaultQuery("offset", "0"), 0)

	var featured *bool
	if raw := strings.TrimSpace(c.Query("isFeatured")); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			respondFieldError(c, "isFeatured", "无效的精选筛选")
			return
		}
		featured = &value
	}

	result, err := a.posts.ListRecent(limit, offset, featured)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取文章列表失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":  postViews(result.Posts),
		"total":  result.Total,
		"limit":  result.Limit,
		"offset": result.Offset,
	})
}

// ListPostsByCategory 返回指定分类下的已上线文章
func (a *API) ListPostsByCategory(c *gin.Context) {
	category := c.Param("category")
	limit := parseNonNegativeInt(c.DefaultQuery("limit", "10"), 10)
	offset := parseNonNegativeInt(c.DefaultQuery("offset", "0"), 0)

	result, err := a.posts.ListByCategory(category, limit, offset)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			respondError(c, http.StatusNotFound, "分类不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取文章列表失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": strings.TrimSpace(category),
		"posts":    postViews(result.Posts),
		"total":    result.Total,
		"limit":    result.Limit,
		"offset":   result.Offset,
	})
}

// PublishScheduledPosts 由外部定时器触发，晋升所有到期的定时发布文章
func (a *API) PublishScheduledPosts(c *gin.Context) {
	ids, err := a.scheduler.Run(time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "定时发布执行失败")
		return
	}

	message := "定时发布完成"
	if len(ids) == 0 {
		message = "没有到期的定时发布文章"
	}

	c.JSON(http.StatusOK, gin.H{"message": message, "published_ids": ids})
}

func respondPostWriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		respondError(c, http.StatusNotFound, "文章不存在")
	case errors.Is(err, service.ErrTitleRequired):
		respondFieldError(c, "title", "标题不能为空")
	case errors.Is(err, service.ErrInvalidStatus):
		respondFieldError(c, "status", "无效的文章状态")
	case errors.Is(err, service.ErrCategoryNotFound):
		respondFieldError(c, "category", "分类不存在")
	default:
		respondError(c, http.StatusInternalServerError, "保存文章失败")
	}
}

func parseScheduleField(c *gin.Context, raw string) (*time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, true
	}

	at, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		respondFieldError(c, "scheduled_publish_at", "定时发布时间格式不正确，需要 RFC3339")
		return nil, false
	}
	return &at, true
}

func postView(post db.Post, includeContent bool) gin.H {
	view := gin.H{
		"id":                   post.ID,
		"title":                post.Title,
		"description":          post.Description,
		"category":             post.Category.Name,
		"tags":                 post.TagNames(),
		"author":               post.User.Username,
		"reading_time":         post.ReadingTime,
		"status":               post.Status,
		"featured":             post.Featured,
		"created_at":           post.CreatedAt,
		"published_at":         post.PublishedAt,
		"scheduled_publish_at": post.ScheduledPublishAt,
	}

	if includeContent {
		view["content"] = post.Content
		view["content_html"] = renderMarkdown(post.Content)
	}

	return view
}

func postViews(posts []db.Post) []gin.H {
	views := make([]gin.H, 0, len(posts))
	for _, post := range posts {
		views = append(views, postView(post, false))
	}
	return views
}
