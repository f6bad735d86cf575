package middleware

import (
	"fmt"
	"log"
	"net/http"

	"bulut3d/pkg/response"

	sentinel "github.com/alibaba/sentinel-golang/api"
	"github.com/alibaba/sentinel-golang/core/base"
	"github.com/alibaba/sentinel-golang/core/flow"
	"github.com/gin-gonic/gin"
)

// Rate-limited resources.
const (
	ResCheckout      = "checkout_api"
	ResCustomRequest = "custom_request_api"
)

// InitSentinel starts sentinel and loads one reject-above-QPS rule per
// resource. Resources with a non-positive QPS are left unlimited.
func InitSentinel(limits map[string]float64) error {
	if err := sentinel.InitDefault(); err != nil {
		return fmt.Errorf("init sentinel: %w", err)
	}
	rules := make([]*flow.Rule, 0, len(limits))
	for resource, qps := range limits {
		if qps <= 0 {
			continue
		}
		rules = append(rules, &flow.Rule{
			Resource:               resource,
			TokenCalculateStrategy: flow.Direct,
			ControlBehavior:        flow.Reject,
			Threshold:              qps,
			StatIntervalInMs:       1000,
		})
		log.Printf("[ratelimit] %s limited to %.1f req/s", resource, qps)
	}
	if _, err := flow.LoadRules(rules); err != nil {
		return fmt.Errorf("load sentinel rules: %w", err)
	}
	return nil
}

// RateLimit guards the route with the sentinel resource.
func RateLimit(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		e, b := sentinel.Entry(resource, sentinel.WithTrafficType(base.Inbound))
		if b != nil {
			response.Abort(c, http.StatusTooManyRequests, "too many requests, please try again shortly")
			return
		}
		defer e.Exit()
		c.Next()
	}
}
