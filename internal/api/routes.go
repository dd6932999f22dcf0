package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.POST("/auth/login", handler.Login)

		api.GET("/properties", handler.GetProperties)
		api.GET("/properties/:id", handler.GetProperty)
		api.POST("/properties/:id/view", handler.IncrementViews)

		api.POST("/leads", handler.CreateLead)

		api.GET("/amenities", handler.GetAmenities)
		api.GET("/bairros/hulls", handler.GetBairroHulls)

		admin := api.Group("")
		admin.Use(handler.RequireAuth())
		{
			admin.POST("/properties", handler.CreateProperty)
			admin.PUT("/properties/:id", handler.UpdateProperty)
			admin.DELETE("/properties/:id", handler.DeleteProperty)
			admin.PATCH("/properties/:id/featured", handler.ToggleFeatured)

			admin.GET("/leads", handler.GetLeads)
			admin.GET("/stats", handler.GetStats)

			admin.GET("/notifications", handler.GetNotificationConfig)
			admin.PUT("/notifications", handler.UpdateNotificationConfig)

			admin.POST("/upload", handler.UploadImage)
		}
	}
}
