package ipc

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/matjam/vidpaper"
	"resty.dev/v3"
)

type Client struct {
	rest *resty.Client
}

// NewClient talks to the control socket at path.
func NewClient(path string) *Client {
	client := resty.NewWithClient(&http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", path)
			},
		},
	})

	client.SetBaseURL("http://" + vidpaper.AppName)
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("Accept", "application/json")
	client.SetHeader("User-Agent", vidpaper.AppName+"/"+vidpaper.VersionString())

	return &Client{rest: client}
}

func (c *Client) Status() (*StatusResponse, error) {
	result := StatusResponse{}
	response, err := c.rest.R().SetResult(&result).Get("/status")
	if err != nil {
		return nil, err
	}
	if response.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("error requesting status: %s", response.Status())
	}
	return &result, nil
}

func (c *Client) Stop() error {
	result := Response{}
	response, err := c.rest.R().SetResult(&result).Post("/stop")
	if err != nil {
		return err
	}
	if response.StatusCode() != http.StatusOK {
		return fmt.Errorf("error sending stop: %s", response.Status())
	}
	return nil
}

// Metrics returns the Prometheus exposition text.
func (c *Client) Metrics() (string, error) {
	response, err := c.rest.R().SetHeader("Accept", "text/plain").Get("/metrics")
	if err != nil {
		return "", err
	}
	if response.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("error requesting metrics: %s", response.Status())
	}
	return response.String(), nil
}

func (c *Client) Close() error {
	return c.rest.Close()
}
