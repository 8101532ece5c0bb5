package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/handler"
	"github.com/inkwell/internal/service"
	"gorm.io/gorm"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(gdb *gorm.DB, sessionSecret, uploadDir, uploadURLPath string) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	r.Use(sessions.Sessions("inkwell_session", store))

	api := handler.NewAPI(gdb, uploadDir, uploadURLPath)

	// 上传文件静态服务
	r.Static(uploadURLPath, uploadDir)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// 登录登出
	r.POST("/admin/login", api.Login)
	r.GET("/admin/logout", api.Logout)

	// 公开的只读接口
	r.GET("/posts/recent", api.ListRecentPosts)
	r.GET("/posts/category/:category", api.ListPostsByCategory)
	r.GET("/posts/:id", api.GetPost)
	r.GET("/categories", api.GetCategories)
	r.GET("/tags", api.GetTags)

	// 定时发布由外部定时器触发
	r.GET("/posts/publish-scheduled-posts", api.PublishScheduledPosts)

	// 需要认证的后台接口
	auth := r.Group("")
	auth.Use(handler.AuthRequired())
	{
		posts := auth.Group("")
		posts.Use(handler.RequireCapability(service.CapManagePosts))
		{
			posts.GET("/posts", api.GetPosts)
			posts.POST("/posts", api.CreatePost)
			posts.PUT("/posts/:id", api.UpdatePost)
			posts.DELETE("/posts/:id", api.DeletePost)
			posts.POST("/uploads", api.UploadImage)
		}

		taxonomy := auth.Group("")
		taxonomy.Use(handler.RequireCapability(service.CapManageTaxonomy))
		{
			taxonomy.POST("/categories", api.CreateCategory)
			taxonomy.DELETE("/categories/:id", api.DeleteCategory)
		}

		users := auth.Group("")
		users.Use(handler.RequireCapability(service.CapManageUsers))
		{
			users.GET("/users", api.GetUsers)
			users.POST("/users", api.CreateUser)
			users.PUT("/users/:id", api.UpdateUser)
			users.DELETE("/users/:id", api.DeleteUser)
		}
	}

	return r
}
