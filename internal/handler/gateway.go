package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/alexmentor/mentor-gateway/internal/forwarder"
	"github.com/alexmentor/mentor-gateway/internal/quota"
	"github.com/alexmentor/mentor-gateway/internal/routing"
	"github.com/gin-gonic/gin"
)

const (
	// Caps inbound bodies; the original frontend never sends more than
	// a conversation state snapshot.
	maxBodyBytes = 2 << 20

	rateLimitMessage = "You have reached the free usage limit. Please try again later."
)

// Orchestrates one request: parse, quota, route, forward, shape.
type Gateway struct {
	ledger *quota.Ledger
	table  *routing.Table
	fwd    *forwarder.Forwarder
}

func NewGateway(ledger *quota.Ledger, table *routing.Table, fwd *forwarder.Forwarder) *Gateway {
	return &Gateway{
		ledger: ledger,
		table:  table,
		fwd:    fwd,
	}
}

// Handle serves POST / and POST /webhook/*path. OPTIONS preflights are
// answered by the CORS middleware before this runs.
func (h *Gateway) Handle(c *gin.Context) {
	requestID := c.GetString("request_id")

	if c.Request.Method != http.MethodPost {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
		return
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		log.Printf("[%s] failed to read request body: %v", requestID, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	env, err := ParseEnvelope(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	// Resolve before charging quota so a bad action never burns a
	// request from the client's window.
	target, err := h.table.Resolve(env.Action)
	if err != nil {
		if errors.Is(err, routing.ErrUnknownAction) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action: " + env.Action})
			return
		}
		log.Printf("[%s] route resolution failed: %v", requestID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	identity := c.ClientIP()

	if !env.IsConnectionProbe() {
		if decision := h.ledger.Admit(c.Request.Context(), identity, env.Action); decision == quota.Deny {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": rateLimitMessage})
			return
		}
	}

	log.Printf("[%s] forwarding %s for %s", requestID, env.Action, identity)

	result, err := h.fwd.Forward(c.Request.Context(), target, http.MethodPost, c.Request.Header, env.ForwardBody())
	if err != nil {
		log.Printf("[%s] forward failed: %v", requestID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upstream request failed"})
		return
	}

	shaped := Negotiate(result.Body, result.ContentType)

	c.Header("Cache-Control", "no-store")
	c.Data(result.StatusCode, shaped.ContentType(), shaped.Bytes())
}
