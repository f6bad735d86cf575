package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRegistration(t *testing.T) {
	r := buildRegistration(Registration{Name: "gateway", Port: 8080}, "10.0.0.5")

	assert.Equal(t, "gateway-10.0.0.5-8080", r.ID)
	assert.Equal(t, "http://10.0.0.5:8080/healthz", r.Check.HTTP)
	assert.Equal(t, []string{"bulut3d", "http"}, r.Tags)
}
