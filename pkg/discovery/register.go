package discovery

import (
	"fmt"
	"log"
	"net"

	"github.com/hashicorp/consul/api"
)

// Registration describes the HTTP service announced to Consul.
type Registration struct {
	Name       string
	Port       int
	HealthPath string
	Tags       []string
}

// RegisterService announces the gateway to Consul with an HTTP health check
// and returns a func that deregisters it.
func RegisterService(reg Registration, consulAddr string) (func() error, error) {
	config := api.DefaultConfig()
	config.Address = consulAddr
	client, err := api.NewClient(config)
	if err != nil {
		return nil, err
	}

	localIP, err := getOutboundIP()
	if err != nil {
		return nil, err
	}

	registration := buildRegistration(reg, localIP)
	if err := client.Agent().ServiceRegister(registration); err != nil {
		return nil, err
	}

	log.Printf("[discovery] registered %s (ID: %s) at %s:%d", reg.Name, registration.ID, localIP, reg.Port)
	return func() error {
		return client.Agent().ServiceDeregister(registration.ID)
	}, nil
}

func buildRegistration(reg Registration, ip string) *api.AgentServiceRegistration {
	path := reg.HealthPath
	if path == "" {
		path = "/healthz"
	}
	tags := reg.Tags
	if len(tags) == 0 {
		tags = []string{"bulut3d", "http"}
	}
	return &api.AgentServiceRegistration{
		// ID must be unique per instance: name-ip-port.
		ID:      fmt.Sprintf("%s-%s-%d", reg.Name, ip, reg.Port),
		Name:    reg.Name,
		Port:    reg.Port,
		Address: ip,
		Tags:    tags,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d%s", ip, reg.Port, path),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "30s",
		},
	}
}

// getOutboundIP finds the LAN address; 127.0.0.1 would be useless to Consul
// running in another container.
func getOutboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}
