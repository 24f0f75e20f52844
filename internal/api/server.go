package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/audit"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/models"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/status"
)

// JobSource reads pending rows from the sheet for the dashboard.
type JobSource interface {
	ReadJobs(ctx context.Context, filter ...status.Status) ([]models.JobRecord, error)
}

// Server is the read-only dashboard over the audit history and the
// sheet. It never mutates anything; the workflows own all writes.
type Server struct {
	audit  *audit.Store
	ledger JobSource
}

func New(auditStore *audit.Store, ledger JobSource) *Server {
	return &Server{audit: auditStore, ledger: ledger}
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(config))

	api := r.Group("/api/v1")
	{
		api.GET("/health", healthCheck)
		api.GET("/applications", s.listApplications)
		api.GET("/status-changes", s.listStatusChanges)
		api.GET("/jobs/pending", s.listPendingJobs)
	}
	return r
}

// Run blocks serving the dashboard on addr.
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listApplications(c *gin.Context) {
	attempts, err := s.audit.RecentApplications(limitParam(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read applications: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": attempts})
}

func (s *Server) listStatusChanges(c *gin.Context) {
	events, err := s.audit.RecentStatusChanges(limitParam(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read status changes: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": events})
}

func (s *Server) listPendingJobs(c *gin.Context) {
	jobs, err := s.ledger.ReadJobs(c.Request.Context(), status.NotApplied)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read sheet: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": jobs})
}

func limitParam(c *gin.Context) int {
	n, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || n <= 0 {
		return 100
	}
	return n
}
