package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bit2424/LunchLog/controllers"
	"github.com/bit2424/LunchLog/middlewares"
	"github.com/bit2424/LunchLog/repository"
	"github.com/bit2424/LunchLog/services"
)

type Deps struct {
	DB              *gorm.DB
	Receipts        *services.ReceiptService
	Recommendations *services.RecommendationService
	Restaurants     *repository.RestaurantRepository
	Stats           *repository.StatsRepository
	Tasks           services.Enqueuer
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	r.Use(middlewares.CORSMiddleware())
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	// Controllers
	receiptCtrl := controllers.NewReceiptController(deps.Receipts)
	restCtrl := controllers.NewRestaurantController(deps.Restaurants, deps.Tasks)
	recCtrl := controllers.NewRecommendationController(deps.Recommendations)
	profileCtrl := controllers.NewProfileController(deps.Stats)

	auth := r.Group("/", middlewares.RequireUser(deps.DB))
	{
		auth.POST("/receipts", receiptCtrl.Create)
		auth.GET("/receipts", receiptCtrl.List)
		auth.GET("/receipts/:id", receiptCtrl.Detail)

		auth.GET("/restaurants", restCtrl.List)
		auth.GET("/restaurants/:id", restCtrl.Detail)
		auth.POST("/restaurants/:id/refresh", restCtrl.Refresh)

		rec := auth.Group("/recommendations")
		{
			rec.GET("/good", recCtrl.Good)
			rec.GET("/cheap", recCtrl.Cheap)
			rec.GET("/cuisine-match", recCtrl.CuisineMatch)
			rec.GET("/all", recCtrl.All)
		}

		auth.GET("/profile/stats", profileCtrl.Stats)
	}
}
