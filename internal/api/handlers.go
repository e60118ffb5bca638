package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/caffeineduck/pyplay/gallery"
	"github.com/caffeineduck/pyplay/playground"
	"github.com/gin-gonic/gin"
)

type exampleSummary struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	View  string `json:"view"`
}

// listExamples handles GET /v1/examples
func (s *Server) listExamples(c *gin.Context) {
	all := gallery.All()
	result := make([]exampleSummary, 0, len(all))
	for _, ex := range all {
		result = append(result, exampleSummary{Name: ex.Name, Title: ex.Title, View: string(ex.View)})
	}
	c.JSON(http.StatusOK, gin.H{"examples": result})
}

// getExample handles GET /v1/examples/:name
func (s *Server) getExample(c *gin.Context) {
	ex, err := gallery.Get(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Example not found"})
		return
	}
	c.JSON(http.StatusOK, ex)
}

type createSessionRequest struct {
	// ID resumes a previous session's storage.
	ID     string `json:"id,omitempty"`
	Locale string `json:"locale,omitempty"`
}

type createSessionResponse struct {
	SessionID string           `json:"session_id"`
	Resumed   bool             `json:"resumed"`
	State     playground.State `json:"state"`
}

// createSession handles POST /v1/sessions
func (s *Server) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	lang := s.opts.Catalog.Match(req.Locale, c.GetHeader("Accept-Language"), s.opts.Locale)
	sess, resumed, err := s.sessions.create(req.ID, lang)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": fmt.Sprintf("Failed to create session: %v", err)})
		return
	}

	status := http.StatusCreated
	if resumed {
		status = http.StatusOK
	}
	c.JSON(status, createSessionResponse{
		SessionID: sess.id,
		Resumed:   resumed,
		State:     sess.ws.Snapshot(),
	})
}

// getSession handles GET /v1/sessions/:id
func (s *Server) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, sessionFrom(c).ws.Snapshot())
}

// deleteSession handles DELETE /v1/sessions/:id
func (s *Server) deleteSession(c *gin.Context) {
	s.sessions.close(sessionFrom(c).id)
	c.Status(http.StatusNoContent)
}

type putCodeRequest struct {
	Code string `json:"code"`
}

// putCode handles PUT /v1/sessions/:id/code
func (s *Server) putCode(c *gin.Context) {
	var req putCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	ws := sessionFrom(c).ws
	ws.SetContent(req.Code)
	c.JSON(http.StatusOK, ws.Snapshot())
}

// download handles GET /v1/sessions/:id/download
func (s *Server) download(c *gin.Context) {
	f := sessionFrom(c).ws.Download()
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Name))
	c.Data(http.StatusOK, f.MIME+"; charset=utf-8", f.Data)
}

type commandResponse struct {
	Result any              `json:"result,omitempty"`
	State  playground.State `json:"state"`
}

// command handles POST /v1/sessions/:id/<name>, and POST .../commands when
// name is empty and the body carries the type.
func (s *Server) command(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cmd Command
		if err := c.ShouldBindJSON(&cmd); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if name != "" {
			cmd.Type = name
		}

		ws := sessionFrom(c).ws
		result, err := dispatch(c.Request.Context(), ws, cmd)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error(), "state": ws.Snapshot()})
			return
		}
		c.JSON(http.StatusOK, commandResponse{Result: result, State: ws.Snapshot()})
	}
}
