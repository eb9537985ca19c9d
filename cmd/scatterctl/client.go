package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
)

type client struct {
	http *resty.Client
}

func newClient(api, token string) *client {
	r := resty.New().
		SetBaseURL(api).
		SetTimeout(3*time.Minute).
		SetHeader("Content-Type", "application/json")
	if token != "" {
		r.SetAuthToken(token)
	}
	return &client{http: r}
}

// do sends body as JSON and returns the raw response, failing on non-2xx.
func (c *client) do(method, path string, body interface{}) ([]byte, error) {
	req := c.http.R()
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	return resp.Body(), nil
}

func (c *client) getJSON(path string, out interface{}) error {
	data, err := c.do("GET", path, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func printJSON(out io.Writer, data []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		_, err = out.Write(data)
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(out)
	return err
}
