package controller

import (
	"classroom_backend/internal/service"
	"classroom_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	Dashboard *service.DashboardService
}

func NewDashboardController(dashboard *service.DashboardService) *DashboardController {
	return &DashboardController{Dashboard: dashboard}
}

// MyOverview godoc
// @Summary The caller's standing in a class
// @Description Best percentage per quiz, weighted overall average, material completion.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.StudentOverview}
// @Router /api/v1/classes/{id}/overview [get]
func (c *DashboardController) MyOverview(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	overview, err := c.Dashboard.StudentOverview(ctx.Request.Context(), user, ctx.Param("id"), user.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

// StudentOverview godoc
// @Summary One student's standing, for the class teacher
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Router /api/v1/classes/{id}/students/{studentId}/overview [get]
func (c *DashboardController) StudentOverview(ctx *gin.Context) {
	studentID := util.MustParseUint(ctx.Param("studentId"))
	overview, err := c.Dashboard.StudentOverview(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("id"), studentID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

// ClassReport godoc
// @Summary Whole-class report with per-student averages
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.ClassReport}
// @Router /api/v1/classes/{id}/report [get]
func (c *DashboardController) ClassReport(ctx *gin.Context) {
	report, err := c.Dashboard.ClassReport(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, report)
}
