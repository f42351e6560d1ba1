package status

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse はヘルスチェックの応答
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ServerInfo はリスナーの設定情報
type ServerInfo struct {
	Host            string `json:"host"`
	Port            int    `json:"port"`
	WWWRoot         string `json:"wwwroot"`
	DefaultDocument string `json:"defaultdocument"`
	MimeTypes       string `json:"mimetypes"`
}

// StatusResponse はステータス確認の応答
type StatusResponse struct {
	Status      string     `json:"status"`
	InstanceID  string     `json:"instance_id"`
	Version     string     `json:"version"`
	Server      ServerInfo `json:"server"`
	Connections Snapshot   `json:"connections"`
	Timestamp   time.Time  `json:"timestamp"`
}

// handleHealth はヘルスチェックエンドポイント
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	})
}

// handleStatus はステータス確認エンドポイント
func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Status:     "running",
		InstanceID: s.instanceID,
		Version:    s.version,
		Server: ServerInfo{
			Host:            s.config.Server.Host,
			Port:            s.config.Server.Port,
			WWWRoot:         s.config.Server.WWWRoot,
			DefaultDocument: s.config.Server.DefaultDocument,
			MimeTypes:       s.mimeTypes.String(),
		},
		Connections: s.stats.Snapshot(),
		Timestamp:   time.Now(),
	})
}
