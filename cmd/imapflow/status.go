package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mailwire/imapflow/imapclient"
)

// newStatusRouter builds a tiny read-only HTTP status endpoint reporting
// session state/capabilities/idle mode as JSON, mirroring the teacher's
// api package's router conventions at a much smaller scope: one route,
// no middleware stack, gin.Default() for the access-log/recovery pair.
func newStatusRouter(s *imapclient.Session) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()
	router.GET("/status", func(c *gin.Context) {
		path, selected := s.SelectedMailbox()
		c.JSON(http.StatusOK, gin.H{
			"sessionId":       s.ID(),
			"state":           s.State().String(),
			"capabilities":    s.Capabilities(),
			"idleState":       idleStateName(s.IdleStateNow()),
			"selectedMailbox": path,
			"hasSelected":     selected,
		})
	})
	return router
}

func idleStateName(st imapclient.IdleState) string {
	switch st {
	case imapclient.IdleActive:
		return "idle"
	case imapclient.IdleNoopPolling:
		return "noop"
	default:
		return "none"
	}
}
