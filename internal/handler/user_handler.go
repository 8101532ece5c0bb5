package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/service"
)

type userRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// GetUsers 返回后台账号列表
func (a *API) GetUsers(c *gin.Context) {
	users, err := a.users.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取用户列表失败")
		return
	}

	response := make([]gin.H, 0, len(users))
	for _, user := range users {
		response = append(response, userView(user))
	}

	c.JSON(http.StatusOK, gin.H{"users": response})
}

// CreateUser 创建后台账号
func (a *API) CreateUser(c *gin.Context) {
	var req userRequest
	if !bindJSON(c, &req, "请求格式不正确") {
		return
	}

	user, err := a.users.Create(service.UserInput(req))
	if err != nil {
		respondUserWriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "用户创建成功", "user": userView(*user)})
}

// UpdateUser 修改账号的角色或密码
func (a *API) UpdateUser(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的用户ID")
		return
	}

	var req userRequest
	if !bindJSON(c, &req, "请求格式不正确") {
		return
	}

	user, err := a.users.Update(id, service.UserInput(req))
	if err != nil {
		respondUserWriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "用户更新成功", "user": userView(*user)})
}

// DeleteUser 删除后台账号
func (a *API) DeleteUser(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的用户ID")
		return
	}

	if err := a.users.Delete(id); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "用户不存在")
		case errors.Is(err, service.ErrUserHasPosts):
			respondError(c, http.StatusBadRequest, "该用户仍有文章，无法删除")
		default:
			respondError(c, http.StatusInternalServerError, "删除用户失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "用户删除成功", "id": id})
}

func respondUserWriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		respondError(c, http.StatusNotFound, "用户不存在")
	case errors.Is(err, service.ErrUserExists):
		respondFieldError(c, "username", "用户名已被占用")
	case errors.Is(err, service.ErrUsernameRequired):
		respondFieldError(c, "username", "用户名不能为空")
	case errors.Is(err, service.ErrPasswordRequired):
		respondFieldError(c, "password", "密码不能为空")
	case errors.Is(err, service.ErrInvalidRole):
		respondFieldError(c, "role", "无效的角色")
	default:
		respondError(c, http.StatusInternalServerError, "保存用户失败")
	}
}

func userView(user db.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"role":       user.Role,
		"created_at": user.CreatedAt,
	}
}
