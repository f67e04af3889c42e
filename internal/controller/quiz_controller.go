package controller

import (
	"classroom_backend/internal/model"
	"classroom_backend/internal/service"
	"classroom_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// Create godoc
// @Summary Create a quiz with its questions
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} util.Response{data=model.Quiz}
// @Router /api/v1/classes/{id}/quizzes [post]
func (c *QuizController) Create(ctx *gin.Context) {
	var req service.QuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.Create(util.GetUserFromContext(ctx), ctx.Param("id"), req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// ListByClass godoc
// @Summary Quizzes of a class
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Router /api/v1/classes/{id}/quizzes [get]
func (c *QuizController) ListByClass(ctx *gin.Context) {
	quizzes, err := c.QuizService.ListByClass(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// Get godoc
// @Summary One quiz with questions
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Router /api/v1/quizzes/{id} [get]
func (c *QuizController) Get(ctx *gin.Context) {
	detail, err := c.QuizService.Get(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// Update godoc
// @Summary Update a quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /api/v1/quizzes/{id} [put]
func (c *QuizController) Update(ctx *gin.Context) {
	var req service.QuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.Update(util.GetUserFromContext(ctx), ctx.Param("id"), req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetStatus godoc
// @Summary Move a quiz between draft, published and archived
// @Tags quizzes
// @Accept json
// @Security BearerAuth
// @Router /api/v1/quizzes/{id}/status [put]
func (c *QuizController) SetStatus(ctx *gin.Context) {
	var req statusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.SetStatus(util.GetUserFromContext(ctx), ctx.Param("id"), model.QuizStatus(req.Status))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// Delete godoc
// @Summary Delete a quiz and every attempt at it
// @Tags quizzes
// @Security BearerAuth
// @Router /api/v1/quizzes/{id} [delete]
func (c *QuizController) Delete(ctx *gin.Context) {
	if err := c.QuizService.Delete(util.GetUserFromContext(ctx), ctx.Param("id")); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
