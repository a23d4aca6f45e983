// Package client is a thin HTTP client implementing the Gantry API.
package client

import (
	"net/url"

	"github.com/ventrath/gantry/pkg/api/http/common"
	"github.com/ventrath/gantry/pkg/structs"
)

type Client struct {
	url *url.URL
}

func New(address string) (*Client, error) {
	u, err := url.Parse(address)
	return &Client{url: u}, err
}

func (c *Client) CreateRun(crr *structs.CreateRunRequest) (*structs.CreateRunResponse, error) {
	addr := c.addr(common.API_RUNS)
	var out structs.CreateRunResponse
	return &out, genericPost(addr, crr, &out)
}

func (c *Client) Pause(in []*structs.ToggleRequest) (int64, error) {
	addr := c.addr(common.API_PAUSE)
	var out common.UpdateResponse
	return out.Updated, genericPatch(addr, in, &out)
}

func (c *Client) Unpause(in []*structs.ToggleRequest) (int64, error) {
	addr := c.addr(common.API_UNPAUSE)
	var out common.UpdateResponse
	return out.Updated, genericPatch(addr, in, &out)
}

func (c *Client) Skip(in []*structs.ToggleRequest) (int64, error) {
	addr := c.addr(common.API_SKIP)
	var out common.UpdateResponse
	return out.Updated, genericPatch(addr, in, &out)
}

func (c *Client) Retry(in []*structs.ToggleRequest) (int64, error) {
	addr := c.addr(common.API_RETRY)
	var out common.UpdateResponse
	return out.Updated, genericPatch(addr, in, &out)
}

func (c *Client) Kill(in []*structs.ToggleRequest) (int64, error) {
	addr := c.addr(common.API_KILL)
	var out common.UpdateResponse
	return out.Updated, genericPatch(addr, in, &out)
}

func (c *Client) Runs(q *structs.Query) ([]*structs.Run, error) {
	addr := c.addr(common.API_RUNS)
	setQueryString(addr, q)
	var out []*structs.Run
	return out, genericGet(addr, &out)
}

func (c *Client) Jobs(q *structs.Query) ([]*structs.Job, error) {
	addr := c.addr(common.API_JOBS)
	setQueryString(addr, q)
	var out []*structs.Job
	return out, genericGet(addr, &out)
}

func (c *Client) Steps(q *structs.Query) ([]*structs.Step, error) {
	addr := c.addr(common.API_STEPS)
	setQueryString(addr, q)
	var out []*structs.Step
	return out, genericGet(addr, &out)
}

func (c *Client) Artifacts(q *structs.Query) ([]*structs.Artifact, error) {
	addr := c.addr(common.API_ARTIFACTS)
	setQueryString(addr, q)
	var out []*structs.Artifact
	return out, genericGet(addr, &out)
}

func (c *Client) Close() error {
	return nil
}

func (c *Client) addr(path string) *url.URL {
	return &url.URL{Scheme: c.url.Scheme, Host: c.url.Host, Path: path}
}
