package controller

import (
	"classroom_backend/internal/model"
	"classroom_backend/internal/service"
	"classroom_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MaterialController struct {
	MaterialService *service.MaterialService
}

func NewMaterialController(materialService *service.MaterialService) *MaterialController {
	return &MaterialController{MaterialService: materialService}
}

// Upload godoc
// @Summary Upload a material file to a class
// @Tags materials
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Success 201 {object} util.Response{data=model.Material}
// @Router /api/v1/classes/{id}/materials [post]
func (c *MaterialController) Upload(ctx *gin.Context) {
	var req service.MaterialUploadRequest
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	material, err := c.MaterialService.Upload(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("id"), req, file)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, material)
}

// List godoc
// @Summary Materials of a class
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Router /api/v1/classes/{id}/materials [get]
func (c *MaterialController) List(ctx *gin.Context) {
	materials, err := c.MaterialService.List(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, materials)
}

// Delete godoc
// @Summary Remove a material
// @Tags materials
// @Security BearerAuth
// @Router /api/v1/materials/{id} [delete]
func (c *MaterialController) Delete(ctx *gin.Context) {
	if err := c.MaterialService.Delete(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("id")); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type progressRequest struct {
	Status string `json:"status" binding:"required"`
}

// MarkProgress godoc
// @Summary Record reading progress on a material
// @Tags materials
// @Accept json
// @Security BearerAuth
// @Router /api/v1/materials/{id}/progress [put]
func (c *MaterialController) MarkProgress(ctx *gin.Context) {
	var req progressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err := c.MaterialService.MarkProgress(util.GetUserFromContext(ctx), ctx.Param("id"), model.MaterialStatus(req.Status))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
