package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/podlens/podlens/app/batch"
	"github.com/podlens/podlens/app/database"
	"github.com/podlens/podlens/app/youtube"
)

func NewHandler(analyzer BatchAnalyzerInterface, analysisRepo database.AnalysisRepository,
	videoRepo database.VideoRepository) *Handler {
	return &Handler{
		analyzer:     analyzer,
		analysisRepo: analysisRepo,
		videoRepo:    videoRepo,
	}
}

// GetDiscover runs channel discovery without scheduling analysis
func (h *Handler) GetDiscover(c *gin.Context) {
	daysBack, _ := strconv.Atoi(c.DefaultQuery("days_back", "0"))

	videos, err := h.analyzer.Discover(c.Request.Context(), daysBack)
	if err != nil {
		if errors.Is(err, batch.ErrNoChannels) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No channels configured"})
			return
		}
		if errors.Is(err, youtube.ErrQuotaExceeded) {
			quotaExceeded(c, err)
			return
		}
		slog.Error("Discovery failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Discovery failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"videos": videos,
		"total":  len(videos),
	})
}

// GetRecent lists recently discovered videos
func (h *Handler) GetRecent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	videos, err := h.videoRepo.GetRecentVideos(limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_recent_videos", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"videos": videos,
		"total":  len(videos),
	})
}

// PostBatchAnalyze discovers recent videos and runs a batch over them
func (h *Handler) PostBatchAnalyze(c *gin.Context) {
	var req BatchAnalyzeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}
	}

	report, err := h.analyzer.AnalyzeRecent(c.Request.Context(), req.DaysBack)
	if err != nil {
		if errors.Is(err, batch.ErrNoChannels) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No channels configured"})
			return
		}
		if errors.Is(err, youtube.ErrQuotaExceeded) {
			quotaExceeded(c, err)
			return
		}
		slog.Error("Batch analysis failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Batch analysis failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// PostBatchAnalyzeVideos runs a batch over an explicit URL list
func (h *Handler) PostBatchAnalyzeVideos(c *gin.Context) {
	var req BatchVideosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if len(req.VideoURLs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "video_urls is required"})
		return
	}

	report, err := h.analyzer.AnalyzeVideos(c.Request.Context(), req.VideoURLs)
	if err != nil {
		if errors.Is(err, batch.ErrNoMetadataProvider) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Video metadata lookups require a YouTube API key"})
			return
		}
		if errors.Is(err, youtube.ErrQuotaExceeded) {
			quotaExceeded(c, err)
			return
		}
		slog.Error("Batch analysis failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Batch analysis failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetBatchProgress returns the live progress snapshot for a batch
func (h *Handler) GetBatchProgress(c *gin.Context) {
	batchID := c.Param("batch_id")

	progress, ok := h.analyzer.Progress(batchID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found", "batch_id": batchID})
		return
	}

	c.JSON(http.StatusOK, progress)
}

// PostAnalyze analyzes a single video by URL
func (h *Handler) PostAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.VideoURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "video_url is required"})
		return
	}

	record, existing, err := h.analyzer.AnalyzeSingle(c.Request.Context(), req.VideoURL)
	if err != nil {
		if errors.Is(err, batch.ErrNoMetadataProvider) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Video metadata lookups require a YouTube API key"})
			return
		}
		if errors.Is(err, youtube.ErrQuotaExceeded) {
			quotaExceeded(c, err)
			return
		}
		slog.Error("Analysis failed", "video_url", req.VideoURL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"already_analyzed": existing,
		"result":           record,
	})
}

// GetResults returns the stored analysis for one video
func (h *Handler) GetResults(c *gin.Context) {
	videoID := c.Param("video_id")

	record, err := h.analysisRepo.GetAnalysis(videoID)
	if err != nil {
		slog.Error("Database error", "operation", "get_analysis", "video_id", videoID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found", "video_id": videoID})
		return
	}

	c.JSON(http.StatusOK, record)
}

// GetAnalyses returns a page of stored analyses, optionally filtered by channel
func (h *Handler) GetAnalyses(c *gin.Context) {
	channelID := c.Query("channel_id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))

	result, err := h.analysisRepo.GetAnalysesPage(channelID, page, pageSize)
	if err != nil {
		slog.Error("Database error", "operation", "get_analyses_page", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRecentAnalyses returns analyses created within the last N days
func (h *Handler) GetRecentAnalyses(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	if days < 1 {
		days = 7
	}

	records, err := h.analysisRepo.GetRecentAnalyses(days)
	if err != nil {
		slog.Error("Database error", "operation", "get_recent_analyses", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"analyses": records, "total_count": len(records)})
}

// PostReanalyze re-runs analysis for one stored video
func (h *Handler) PostReanalyze(c *gin.Context) {
	videoID := c.Param("video_id")

	record, err := h.analyzer.ReanalyzeVideo(c.Request.Context(), videoID)
	if err != nil {
		if errors.Is(err, batch.ErrAnalysisNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found", "video_id": videoID})
			return
		}
		if errors.Is(err, batch.ErrNoMetadataProvider) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Video metadata lookups require a YouTube API key"})
			return
		}
		if errors.Is(err, youtube.ErrQuotaExceeded) {
			quotaExceeded(c, err)
			return
		}
		slog.Error("Re-analysis failed", "video_id", videoID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Re-analysis failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, record)
}

// PostReanalyzeFailed sweeps every stored failed analysis
func (h *Handler) PostReanalyzeFailed(c *gin.Context) {
	report, err := h.analyzer.ReanalyzeFailed(c.Request.Context())
	if err != nil {
		slog.Error("Failed-analysis sweep failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Re-analysis sweep failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// PostAnalyzeUnanalyzed sweeps discovered videos that were never analyzed
func (h *Handler) PostAnalyzeUnanalyzed(c *gin.Context) {
	report, err := h.analyzer.AnalyzeUnanalyzed(c.Request.Context())
	if err != nil {
		slog.Error("Unanalyzed sweep failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unanalyzed sweep failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{"status": "ok"}

	if _, err := h.videoRepo.GetRecentVideos(1); err == nil {
		health["database"] = "ok"
	} else {
		health["database"] = "error"
	}

	c.JSON(http.StatusOK, health)
}

func quotaExceeded(c *gin.Context, err error) {
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error":   "YouTube API quota exceeded",
		"message": "Retry after the daily quota resets, or reduce discovery frequency",
		"details": err.Error(),
	})
}
