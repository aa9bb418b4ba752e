package server

import (
	"image"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mediplant/internal/classify"
	"mediplant/internal/history"
	"mediplant/internal/plant"
	"mediplant/internal/version"
)

// classifyResponse is the classification result enriched with plant
// metadata when available.
type classifyResponse struct {
	classify.Result
	Info *plant.Info `json:"info,omitempty"`
}

// handleHealth reports liveness and whether the artifacts loaded.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"version":        version.String(),
		"model_loaded":   s.classifier.Available(),
		"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
	})
}

// handleClassify accepts a multipart image upload in the "image" field
// and returns the ranked prediction. Classification failures are part of
// the contract: they come back as 200 with success=false so UI callers
// can render a retry state without special-casing status codes.
func (s *Server) handleClassify(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "no image file provided, use the 'image' form field",
		})
		return
	}

	topK := s.cfg.Models.TopK
	if v := c.Query("top_k"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			topK = n
		}
	}

	result := s.classifyUpload(fileHeader, topK)

	s.recordHistory(c, fileHeader.Filename, result.Result)

	if result.Success {
		s.log.Info("classified image",
			zap.String("filename", fileHeader.Filename),
			zap.String("predicted", result.PredictedClass),
			zap.Float64("confidence", result.Confidence))
	} else {
		s.log.Warn("classification failed",
			zap.String("filename", fileHeader.Filename),
			zap.String("error", result.Error))
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) classifyUpload(fileHeader *multipart.FileHeader, topK int) classifyResponse {
	f, err := fileHeader.Open()
	if err != nil {
		return classifyResponse{Result: classify.Result{Success: false, Error: "failed to read upload: " + err.Error()}}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return classifyResponse{Result: classify.Result{Success: false, Error: "image decode failed: " + err.Error()}}
	}

	result := s.classifier.ClassifyImage(img, topK)

	resp := classifyResponse{Result: result}
	if result.Success {
		if info, ok := s.classifier.Info(result.PredictedClass); ok {
			resp.Info = &info
		}
	}
	return resp
}

func (s *Server) recordHistory(c *gin.Context, filename string, result classify.Result) {
	if s.history == nil {
		return
	}
	_, err := s.history.Record(c.Request.Context(), history.Entry{
		Filename:   filename,
		Predicted:  result.PredictedClass,
		Confidence: result.Confidence,
		Success:    result.Success,
		Error:      result.Error,
	})
	if err != nil {
		s.log.Warn("failed to record history", zap.Error(err))
	}
}

// handlePlants lists the known classes with their metadata.
func (s *Server) handlePlants(c *gin.Context) {
	labels := s.classifier.Labels()
	if len(labels) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "label table not loaded",
		})
		return
	}

	plants := make([]gin.H, 0, len(labels))
	for i, name := range labels {
		entry := gin.H{"index": i, "name": name}
		if info, ok := s.classifier.Info(name); ok {
			entry["info"] = info
		}
		plants = append(plants, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"plants": plants,
		"count":  len(plants),
	})
}

// handleHistory returns recent classifications, newest first.
func (s *Server) handleHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "history store not available",
		})
		return
	}

	limit := 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := s.history.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"history": entries,
		"count":   len(entries),
	})
}
