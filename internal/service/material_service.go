package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"classroom_backend/internal/model"
	"classroom_backend/internal/repository"
	"classroom_backend/internal/util"
	"classroom_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MaterialService struct {
	MaterialRepo *repository.MaterialRepository
	Access       *AccessChecker
	Storage      StorageProvider
}

func NewMaterialService(materialRepo *repository.MaterialRepository, access *AccessChecker, storage StorageProvider) *MaterialService {
	return &MaterialService{MaterialRepo: materialRepo, Access: access, Storage: storage}
}

type MaterialUploadRequest struct {
	Title string `form:"title" binding:"required"`
	Topic string `form:"topic"`
}

// Upload stores a material file and registers it against the class.
func (s *MaterialService) Upload(ctx context.Context, user *util.Claims, classID string, req MaterialUploadRequest, file *multipart.FileHeader) (*model.Material, error) {
	if err := s.Access.RequireClassOwner(classID, user); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtension(ext) {
		return nil, fmt.Errorf("file type %q not allowed", ext)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	objectName := fmt.Sprintf("materials/%s/%d%s", classID, time.Now().UnixNano(), ext)
	url, err := s.Storage.Upload(ctx, objectName, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	material := &model.Material{
		ClassID:    classID,
		Title:      req.Title,
		Topic:      req.Topic,
		FileURL:    url,
		UploaderID: user.UserID,
	}
	if err := s.MaterialRepo.Create(material); err != nil {
		return nil, err
	}
	logger.Log.Info("material uploaded",
		zap.String("materialId", material.ID),
		zap.String("classId", classID),
		zap.Int64("size", file.Size))
	return material, nil
}

func (s *MaterialService) List(user *util.Claims, classID string) ([]model.Material, error) {
	if err := s.Access.RequireMember(classID, user); err != nil {
		return nil, err
	}
	return s.MaterialRepo.ListByClass(classID)
}

func (s *MaterialService) Delete(ctx context.Context, user *util.Claims, materialID string) error {
	material, err := s.MaterialRepo.FindByID(materialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrMaterialNotFound
		}
		return err
	}
	if err := s.Access.RequireClassOwner(material.ClassID, user); err != nil {
		return err
	}

	if err := s.MaterialRepo.Delete(materialID); err != nil {
		return err
	}
	// The DB row is the source of truth; an orphaned object is only
	// wasted space.
	if key, ok := strings.CutPrefix(material.FileURL, "/uploads/"); ok {
		if err := s.Storage.Delete(ctx, key); err != nil {
			logger.Log.Warn("material object cleanup failed",
				zap.String("materialId", materialID), zap.Error(err))
		}
	}
	return nil
}

// MarkProgress records the caller's completion state for one material.
func (s *MaterialService) MarkProgress(user *util.Claims, materialID string, status model.MaterialStatus) error {
	material, err := s.MaterialRepo.FindByID(materialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrMaterialNotFound
		}
		return err
	}
	if err := s.Access.RequireMember(material.ClassID, user); err != nil {
		return err
	}
	if status != model.MaterialInProgress && status != model.MaterialCompleted {
		status = model.MaterialInProgress
	}

	return s.MaterialRepo.UpsertProgress(&model.MaterialProgress{
		MaterialID: materialID,
		UserID:     user.UserID,
		Status:     status,
	})
}

func allowedExtension(ext string) bool {
	for _, allowed := range util.AllowedMaterialExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
