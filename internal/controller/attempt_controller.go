package controller

import (
	"classroom_backend/internal/service"
	"classroom_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService    *service.AttemptService
	CheckpointService *service.CheckpointService
}

func NewAttemptController(attemptService *service.AttemptService, checkpointService *service.CheckpointService) *AttemptController {
	return &AttemptController{AttemptService: attemptService, CheckpointService: checkpointService}
}

// Start godoc
// @Summary Start or resume an attempt
// @Description Opens a new attempt, or returns the caller's in-progress one with saved answers.
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Success 201 {object} util.Response{data=service.AttemptView}
// @Failure 409 {object} util.Response "attempt limit reached or quiz unavailable"
// @Router /api/v1/quizzes/{id}/attempts [post]
func (c *AttemptController) Start(ctx *gin.Context) {
	view, err := c.AttemptService.StartAttempt(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	if view.Resumed {
		util.Success(ctx, view)
		return
	}
	util.Created(ctx, view)
}

// Submit godoc
// @Summary Submit answers and close the attempt
// @Tags attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.AttemptView}
// @Failure 409 {object} util.Response "attempt already ended"
// @Router /api/v1/attempts/{id}/submit [post]
func (c *AttemptController) Submit(ctx *gin.Context) {
	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.AttemptService.SubmitAttempt(util.GetUserFromContext(ctx), ctx.Param("id"), req.Answers)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Cancel godoc
// @Summary Abandon an in-progress attempt
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Router /api/v1/attempts/{id}/cancel [post]
func (c *AttemptController) Cancel(ctx *gin.Context) {
	view, err := c.AttemptService.CancelAttempt(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Get godoc
// @Summary One attempt's status and score
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Router /api/v1/attempts/{id} [get]
func (c *AttemptController) Get(ctx *gin.Context) {
	view, err := c.AttemptService.GetAttempt(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// History godoc
// @Summary The caller's attempts at a quiz
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Router /api/v1/quizzes/{id}/attempts [get]
func (c *AttemptController) History(ctx *gin.Context) {
	views, err := c.AttemptService.History(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, views)
}

// ListByQuiz godoc
// @Summary Every attempt at a quiz, for the class teacher
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Router /api/v1/quizzes/{id}/results [get]
func (c *AttemptController) ListByQuiz(ctx *gin.Context) {
	views, err := c.AttemptService.ListByQuiz(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, views)
}

// SaveCheckpoint godoc
// @Summary Save a draft answer mid-attempt
// @Tags attempts
// @Accept json
// @Security BearerAuth
// @Router /api/v1/quizzes/{id}/checkpoint [put]
func (c *AttemptController) SaveCheckpoint(ctx *gin.Context) {
	var req service.CheckpointRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.CheckpointService.Save(util.GetUserFromContext(ctx), ctx.Param("id"), req); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Checkpoints godoc
// @Summary Saved draft answers for the caller's open attempt
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Router /api/v1/quizzes/{id}/checkpoint [get]
func (c *AttemptController) Checkpoints(ctx *gin.Context) {
	answers, err := c.CheckpointService.Saved(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, answers)
}
