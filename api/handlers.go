package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/satori/go.uuid"

	"github.com/corvidscan/svcprobe/scanner"
)

// Server bundles dependencies for HTTP handlers.
type Server struct {
	store TaskStore
}

func NewServer(store TaskStore) *Server {
	return &Server{store: store}
}

// RegisterRoutes attaches handlers to the provided Gin engine.
func (s *Server) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", s.healthHandler)
	router.POST("/detections", s.createDetectionHandler)
	router.GET("/detections/:id", s.getDetectionHandler)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeUserError renders a scanner.UserError in the API's ErrorResponse
// shape, so engine-level and HTTP-level errors look the same on the wire.
func writeUserError(c *gin.Context, status int, err *scanner.UserError) {
	c.JSON(status, ErrorResponse{Code: err.Code, Message: err.Message})
}

// createDetectionHandler godoc
// @Summary      Submit a service detection job
// @Description  Queues a single host:port for probe-based service detection.
// @Tags         detections
// @Accept       json
// @Produce      json
// @Param        request body CreateDetectionRequest true "detection target"
// @Success      202 {object} DetectionAcceptedResponse
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /detections [post]
func (s *Server) createDetectionHandler(c *gin.Context) {
	var req CreateDetectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "invalid_request", Message: err.Error()})
		return
	}

	if _, ok := parseProtocol(req.Protocol); !ok {
		writeUserError(c, http.StatusBadRequest, scanner.ErrInvalidProtocol(req.Protocol))
		return
	}

	task := &DetectionTask{
		ID:        uuid.NewV4().String(),
		Status:    "pending",
		Host:      req.Host,
		Port:      req.Port,
		Protocol:  req.Protocol,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateTask(task); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: "store_error", Message: "failed to persist task"})
		return
	}

	if err := s.store.PushToQueue(task.ID); err != nil {
		task.Status = "failed"
		task.Error = "failed to queue task"
		now := time.Now().UTC()
		task.CompletedAt = &now
		_ = s.store.UpdateTask(task)

		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: "queue_error", Message: "failed to queue task"})
		return
	}

	c.JSON(http.StatusAccepted, DetectionAcceptedResponse{ID: task.ID, Status: task.Status})
}

// getDetectionHandler godoc
// @Summary      Fetch a detection job's status and result
// @Tags         detections
// @Produce      json
// @Param        id path string true "detection task id"
// @Success      200 {object} DetectionTask
// @Failure      404 {object} ErrorResponse
// @Router       /detections/{id} [get]
func (s *Server) getDetectionHandler(c *gin.Context) {
	id := c.Param("id")
	if !isValidTaskID(id) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "invalid_id", Message: "task id must be a v4 uuid"})
		return
	}

	task, err := s.store.GetTask(id)
	if err != nil {
		if err == ErrTaskNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{Code: "not_found", Message: "task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: "store_error", Message: "failed to load task"})
		return
	}

	c.JSON(http.StatusOK, task)
}

func parseProtocol(s string) (scanner.Protocol, bool) {
	switch s {
	case "tcp":
		return scanner.ProtocolTCP, true
	case "udp":
		return scanner.ProtocolUDP, true
	default:
		return 0, false
	}
}
