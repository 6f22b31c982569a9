package routes

import (
	"github.com/gin-gonic/gin"

	"relief_resource_sync/app"
	"relief_resource_sync/controllers"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	s := controllers.GetSrv(a)
	resourceCtl := controllers.NewResourceController(s)
	txCtl := controllers.NewTransactionController(s)
	agencyCtl := controllers.NewAgencyController(s)
	syncCtl := controllers.NewSyncController(s)

	actorMW := app.ActorID("anonymous")

	api := r.Group("/api", actorMW)

	// ------------------------------
	// Resources & audit history
	// ------------------------------
	resources := api.Group("/resources")
	{
		resources.GET("", resourceCtl.ListResources)
		resources.POST("", resourceCtl.CreateResource)
		resources.GET("/:id", resourceCtl.GetResource)
		resources.PUT("/:id", resourceCtl.UpdateResource)
		resources.DELETE("/:id", resourceCtl.DeleteResource)
		resources.POST("/:id/borrow", txCtl.Borrow)
	}
	api.GET("/history", resourceCtl.ListHistory) // ?resourceId=

	// ------------------------------
	// Lending transactions
	// ------------------------------
	txs := api.Group("/transactions")
	{
		txs.GET("", txCtl.ListTransactions) // ?status=active|completed&resourceId=
		txs.POST("/:id/return", txCtl.Return)
	}
	multi := api.Group("/multi-transactions")
	{
		multi.GET("", txCtl.ListMultiTransactions) // ?status=active|completed
		multi.POST("", txCtl.BorrowMulti)
		multi.POST("/:id/items/:itemId/return", txCtl.ReturnMultiItem)
	}
	api.GET("/borrowers", txCtl.ListBorrowers)

	// ------------------------------
	// Agencies
	// ------------------------------
	agencies := api.Group("/agencies")
	{
		agencies.GET("", agencyCtl.ListAgencies)
		agencies.POST("", agencyCtl.CreateAgency)
		agencies.PUT("/:id", agencyCtl.UpdateAgency)
		agencies.DELETE("/:id", agencyCtl.DeleteAgency)
	}

	// ------------------------------
	// Sync diagnostics
	// ------------------------------
	syncGrp := api.Group("/sync")
	{
		syncGrp.GET("/status", syncCtl.Status)
		syncGrp.POST("/connectivity", syncCtl.SetConnectivity)
		syncGrp.POST("/drain", syncCtl.Drain)
	}
}
