// Package flowstub serves a local stand-in for the workflow API: a run
// endpoint that answers in the nested flow-output shape and an SSE endpoint
// that replays the answer word by word.
package flowstub

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"engagement-insights/models"
	"engagement-insights/services"
	"engagement-insights/utils"
	"engagement-insights/workflow"
)

// Server holds pending streams between a run and the client following it.
type Server struct {
	token    string
	logger   *utils.Logger
	insights *services.InsightService

	mu      sync.Mutex
	pending map[string][]string
}

// New creates a Server. An empty token disables the bearer check.
func New(token string, logger *utils.Logger) *Server {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Server{
		token:    token,
		logger:   logger,
		insights: services.NewInsightService(logger),
		pending:  make(map[string][]string),
	}
}

// Router wires the run and stream endpoints.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	authed := router.Group("/", s.requireToken)
	authed.POST("/lf/:tenant/api/v1/run/:flow", s.handleRun)
	authed.GET("/stream/:id", s.handleStream)
	return router
}

func (s *Server) requireToken(c *gin.Context) {
	if s.token == "" {
		return
	}
	if c.GetHeader("Authorization") != "Bearer "+s.token {
		c.String(http.StatusUnauthorized, `{"detail":"invalid token"}`)
		c.Abort()
	}
}

func (s *Server) handleRun(c *gin.Context) {
	var req workflow.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, `{"detail":"malformed run request"}`)
		return
	}

	var records []models.EngagementRecord
	if err := json.Unmarshal([]byte(req.InputValue), &records); err != nil {
		c.String(http.StatusUnprocessableEntity, `{"detail":"input_value is not a list of engagement records"}`)
		return
	}
	result, err := s.insights.Generate(records)
	if err != nil {
		c.String(http.StatusUnprocessableEntity, `{"detail":"no records to analyse"}`)
		return
	}

	session := uuid.NewString()
	artifacts := gin.H{"message": result.Insight}
	if c.Query("stream") == "true" {
		id := uuid.NewString()
		s.mu.Lock()
		s.pending[id] = strings.Fields(result.Insight)
		s.mu.Unlock()
		artifacts["stream_url"] = "/stream/" + id
	}
	s.logger.Info("[flowstub] run %s/%s session %s (%d records)",
		c.Param("tenant"), c.Param("flow"), session, len(records))

	message := gin.H{"text": result.Insight, "sender": "Machine"}
	c.JSON(http.StatusOK, gin.H{
		"session_id": session,
		"outputs": []gin.H{{
			"inputs": gin.H{"input_value": req.InputValue},
			"outputs": []gin.H{{
				"results":   gin.H{"message": message},
				"outputs":   gin.H{"message": gin.H{"message": message, "type": "object"}},
				"artifacts": artifacts,
			}},
		}},
	})
}

// handleStream replays a pending answer once; the id is consumed.
func (s *Server) handleStream(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	chunks, ok := s.pending[id]
	delete(s.pending, id)
	s.mu.Unlock()
	if !ok {
		c.String(http.StatusNotFound, `{"detail":"unknown stream"}`)
		return
	}

	c.Header("Content-Type", sse.ContentType)
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)

	for _, chunk := range chunks {
		if c.Request.Context().Err() != nil {
			return
		}
		_ = sse.Encode(c.Writer, sse.Event{Event: "token", Data: gin.H{"chunk": chunk + " "}})
		c.Writer.Flush()
	}
	_ = sse.Encode(c.Writer, sse.Event{Event: "close", Data: gin.H{"message": "Stream closed"}})
	c.Writer.Flush()
	s.logger.Debug("[flowstub] stream %s replayed %d chunks", id, len(chunks))
}

// Pending reports how many streams have not been followed yet.
func (s *Server) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
