package handler

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/service"
)

const (
	sessionUserIDKey   = "user_id"
	sessionUsernameKey = "username"
	sessionRoleKey     = "role"

	contextUserIDKey = "__current_user_id"
	contextRoleKey   = "__current_user_role"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 处理后台登录请求并写入会话
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req, "用户名和密码不能为空") {
		return
	}

	user, err := a.users.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "用户名或密码错误")
			return
		}
		respondError(c, http.StatusInternalServerError, "登录失败")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserIDKey, user.ID)
	session.Set(sessionUsernameKey, user.Username)
	session.Set(sessionRoleKey, user.Role)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "登录成功", "user": userView(*user)})
}

// Logout 处理用户登出
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已退出登录"})
}

// AuthRequired 校验会话并把当前用户信息写入请求上下文
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(sessionUserIDKey)
		if userID == nil {
			respondError(c, http.StatusUnauthorized, "请先登录")
			c.Abort()
			return
		}

		if id, ok := userID.(uint); ok {
			c.Set(contextUserIDKey, id)
		}
		if role, ok := session.Get(sessionRoleKey).(string); ok {
			c.Set(contextRoleKey, role)
		}
		c.Next()
	}
}

// RequireCapability 基于角色枚举做统一的权限判定
func RequireCapability(capability service.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, _ := c.Get(contextRoleKey)
		roleValue, _ := raw.(string)

		role, err := service.ParseRole(roleValue)
		if err != nil || !role.Can(capability) {
			respondError(c, http.StatusForbidden, "没有执行该操作的权限")
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentUserID(c *gin.Context) uint {
	if raw, ok := c.Get(contextUserIDKey); ok {
		if id, ok := raw.(uint); ok {
			return id
		}
	}
	return 0
}
