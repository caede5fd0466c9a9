package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ui-guide-go/internal/middleware"
	"ui-guide-go/internal/service"
)

// Services 汇总路由需要的全部业务服务。
type Services struct {
	Conversations service.ConversationService
	Guides        service.GuideService
	Preferences   service.PreferenceService
	Chat          service.ChatService
	Guidance      service.GuidanceService
	Exports       service.ExportService
	Monitor       *service.StatusMonitor
}

// NewRouter 创建路由引擎并注册全部路由。
func NewRouter(s Services) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	conversationHandler := NewConversationHandler(s.Conversations, s.Chat, s.Exports)
	guideHandler := NewGuideHandler(s.Guides, s.Guidance, s.Exports)
	preferenceHandler := NewPreferenceHandler(s.Preferences)
	statusHandler := NewStatusHandler(s.Monitor)

	apiV1 := r.Group("/api/v1")
	{
		conversations := apiV1.Group("/conversations")
		{
			conversations.GET("", conversationHandler.List)
			conversations.POST("", conversationHandler.Create)
			conversations.GET("/:id", conversationHandler.Get)
			conversations.PATCH("/:id", conversationHandler.Rename)
			conversations.DELETE("/:id", conversationHandler.Delete)
			conversations.PUT("/:id/active", conversationHandler.Activate)
			conversations.POST("/:id/messages", conversationHandler.SendMessage)
			conversations.DELETE("/:id/messages/pending", conversationHandler.CancelMessage)
			conversations.GET("/:id/export", conversationHandler.Export)
		}

		guides := apiV1.Group("/guides")
		{
			guides.GET("", guideHandler.List)
			guides.POST("", guideHandler.Generate)
			guides.DELETE("/pending", guideHandler.CancelPending)
			guides.GET("/:id", guideHandler.Get)
			guides.PATCH("/:id", guideHandler.Rename)
			guides.DELETE("/:id", guideHandler.Delete)
			guides.GET("/:id/export", guideHandler.Export)
			guides.POST("/:id/feedback", guideHandler.Feedback)
		}

		apiV1.GET("/preferences", preferenceHandler.Get)
		apiV1.PUT("/preferences", preferenceHandler.Update)

		apiV1.GET("/status", statusHandler.Get)
		apiV1.GET("/status/ws", statusHandler.Stream)
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
