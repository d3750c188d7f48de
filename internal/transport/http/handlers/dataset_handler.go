package handlers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/csvflow/backend/internal/core/ports"
	"github.com/csvflow/backend/internal/domain"
	"github.com/csvflow/backend/internal/infrastructure/logger"
	"github.com/csvflow/backend/internal/transport/http/dto"
	"github.com/csvflow/backend/internal/transport/http/middleware"
)

type DatasetHandler struct {
	datasets ports.DatasetRepository
	store    ports.DatasetStore
	logger   *logger.Logger
}

func NewDatasetHandler(datasets ports.DatasetRepository, store ports.DatasetStore, logger *logger.Logger) *DatasetHandler {
	return &DatasetHandler{datasets: datasets, store: store, logger: logger}
}

func (h *DatasetHandler) Upload(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "no file provided"})
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".csv") {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid file format, only CSV files are allowed",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		h.logger.Errorw("dataset_upload_open_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "file upload failed"})
	}
	defer src.Close()

	storagePath := fmt.Sprintf("csv_files/%s/%s_%s",
		time.Now().Format("2006/01/02"), uuid.New().String(), filepath.Base(fileHeader.Filename))

	size, err := h.store.Write(c.Context(), storagePath, src)
	if err != nil {
		h.logger.Errorw("dataset_upload_store_failed", "path", storagePath, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "file upload failed"})
	}

	dataset := &domain.Dataset{
		UserID:       userID,
		OriginalName: fileHeader.Filename,
		StoragePath:  storagePath,
		FileSize:     size,
	}
	if err := h.datasets.Create(c.Context(), dataset); err != nil {
		h.logger.Errorw("dataset_upload_record_failed", "path", storagePath, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "file upload failed"})
	}

	h.logger.Infow("dataset_upload_ok", "id", dataset.ID, "user_id", userID, "bytes", size)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "File uploaded successfully",
		"file_id": dataset.ID,
	})
}

func (h *DatasetHandler) List(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	datasets, err := h.datasets.GetByUser(c.Context(), userID)
	if err != nil {
		h.logger.Errorw("dataset_list_failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(datasets)
}
