package controller

import (
	"classroom_backend/internal/service"
	"classroom_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GradingController struct {
	GradingService *service.EssayGradingService
}

func NewGradingController(gradingService *service.EssayGradingService) *GradingController {
	return &GradingController{GradingService: gradingService}
}

// PendingReviews godoc
// @Summary Attempts awaiting essay grading
// @Tags grading
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.PendingReview}
// @Router /api/v1/quizzes/{id}/pending-reviews [get]
func (c *GradingController) PendingReviews(ctx *gin.Context) {
	reviews, err := c.GradingService.PendingReviews(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, reviews)
}

// Grade godoc
// @Summary Score one essay submission
// @Description Records a teacher's score and feedback. Re-grading overwrites. The attempt completes when nothing ungraded remains.
// @Tags grading
// @Accept json
// @Produce json
// @Security BearerAuth
// @Failure 400 {object} util.Response "score out of range"
// @Router /api/v1/submissions/{id}/grade [post]
func (c *GradingController) Grade(ctx *gin.Context) {
	var req service.GradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sub, err := c.GradingService.Grade(util.GetUserFromContext(ctx), ctx.Param("id"), req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, sub)
}

// Finalize godoc
// @Summary Force an attempt out of pending review
// @Description Ungraded essays keep scoring zero. Safe to retry.
// @Tags grading
// @Produce json
// @Security BearerAuth
// @Router /api/v1/attempts/{id}/finalize [post]
func (c *GradingController) Finalize(ctx *gin.Context) {
	view, err := c.GradingService.Finalize(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, view)
}
