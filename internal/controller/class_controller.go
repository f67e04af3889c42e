package controller

import (
	"classroom_backend/internal/service"
	"classroom_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ClassController struct {
	ClassService *service.ClassService
}

func NewClassController(classService *service.ClassService) *ClassController {
	return &ClassController{ClassService: classService}
}

// Create godoc
// @Summary Create a class
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} util.Response{data=model.Class}
// @Router /api/v1/classes [post]
func (c *ClassController) Create(ctx *gin.Context) {
	var req service.ClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	class, err := c.ClassService.Create(util.GetUserFromContext(ctx), req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, class)
}

// List godoc
// @Summary Classes visible to the caller
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Class}
// @Router /api/v1/classes [get]
func (c *ClassController) List(ctx *gin.Context) {
	classes, err := c.ClassService.List(util.GetUserFromContext(ctx))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, classes)
}

// Get godoc
// @Summary One class
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Router /api/v1/classes/{id} [get]
func (c *ClassController) Get(ctx *gin.Context) {
	class, err := c.ClassService.Get(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, class)
}

// Update godoc
// @Summary Update class metadata
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /api/v1/classes/{id} [put]
func (c *ClassController) Update(ctx *gin.Context) {
	var req service.ClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	class, err := c.ClassService.Update(util.GetUserFromContext(ctx), ctx.Param("id"), req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, class)
}

// Archive godoc
// @Summary Archive a class
// @Tags classes
// @Security BearerAuth
// @Router /api/v1/classes/{id}/archive [post]
func (c *ClassController) Archive(ctx *gin.Context) {
	if err := c.ClassService.Archive(util.GetUserFromContext(ctx), ctx.Param("id")); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Delete godoc
// @Summary Delete a class and all its content
// @Tags classes
// @Security BearerAuth
// @Router /api/v1/classes/{id} [delete]
func (c *ClassController) Delete(ctx *gin.Context) {
	if err := c.ClassService.Delete(util.GetUserFromContext(ctx), ctx.Param("id")); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Enroll godoc
// @Summary Enroll a student by email
// @Tags classes
// @Accept json
// @Security BearerAuth
// @Router /api/v1/classes/{id}/students [post]
func (c *ClassController) Enroll(ctx *gin.Context) {
	var req service.EnrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ClassService.Enroll(util.GetUserFromContext(ctx), ctx.Param("id"), req); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, nil)
}

// Unenroll godoc
// @Summary Remove a student from the roster
// @Tags classes
// @Security BearerAuth
// @Router /api/v1/classes/{id}/students/{studentId} [delete]
func (c *ClassController) Unenroll(ctx *gin.Context) {
	studentID := util.MustParseUint(ctx.Param("studentId"))
	if err := c.ClassService.Unenroll(util.GetUserFromContext(ctx), ctx.Param("id"), studentID); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Roster godoc
// @Summary Enrolled students
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Router /api/v1/classes/{id}/students [get]
func (c *ClassController) Roster(ctx *gin.Context) {
	students, err := c.ClassService.Roster(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, students)
}
