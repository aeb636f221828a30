package api

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

// GetSnapshot serves the current snapshot document. The display service
// polls this endpoint (or the file directly) at its configured interval.
func (h *Handler) GetSnapshot(c *gin.Context) {
	data, err := os.ReadFile(h.snapshotPath)
	if os.IsNotExist(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No data available"})
		return
	}
	if err != nil {
		slog.Error("Failed to read snapshot", "path", h.snapshotPath, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read snapshot"})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if info, err := os.Stat(h.snapshotPath); err == nil {
		health["snapshot_updated_at"] = info.ModTime().Format(time.RFC3339)
	} else {
		health["snapshot_updated_at"] = nil
	}

	c.JSON(http.StatusOK, health)
}

// APIRefresh enqueues an immediate pipeline refresh.
func (h *Handler) APIRefresh(c *gin.Context) {
	task := h.newRefreshTask()

	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing refresh task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue refresh task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Refresh task enqueued",
		"task": gin.H{
			"id":   task.GetID(),
			"type": task.GetType(),
		},
	})
}
