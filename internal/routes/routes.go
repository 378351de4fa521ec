package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/pmarkun/editaisparticipativos/internal/handlers"
)

func RegisterPublicRoutes(rg *gin.RouterGroup, voting *handlers.VotingHandler, calls *handlers.CallsHandler) {
	{
		rg.GET("/challenge", voting.GetChallenge)
		rg.POST("/votes", voting.SubmitVote)

		rg.GET("/calls", calls.GetCalls)
		rg.GET("/calls/:slug", calls.GetCall)
		rg.GET("/calls/:slug/projects", calls.GetProjects)

		rg.GET("/projects/:id", calls.GetProject)
	}
}

func RegisterSubmitterRoutes(rg *gin.RouterGroup, calls *handlers.CallsHandler) {
	{
		rg.POST("/calls/:slug/projects", calls.SubmitProject)
		rg.PUT("/projects/:id", calls.UpdateProject)
	}
}

func RegisterAdminRoutes(rg *gin.RouterGroup, calls *handlers.CallsHandler, reports *handlers.ReportHandler) {
	{
		rg.POST("/calls", calls.CreateCall)
		rg.PUT("/calls/:id", calls.UpdateCall)

		rg.GET("/calls/:slug/report", reports.GetReport)
	}
}
