package api

import (
	"io"
	"time"

	"alcyxob/coachhub/internal/realtime"

	"github.com/gin-gonic/gin"
)

// heartbeatInterval keeps idle event streams open through proxies.
const heartbeatInterval = 25 * time.Second

// streamSnapshots writes every snapshot of sub as a server-sent "snapshot"
// event until the client goes away.
func streamSnapshots[T any](c *gin.Context, sub *realtime.Subscription[T]) {
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case snapshot, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", snapshot)
			return true
		case <-heartbeat.C:
			c.SSEvent("heartbeat", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
}
