package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"busmanager/internal/domain"
	"busmanager/internal/gateway/wire"
)

// RPCRequest is the body of POST /api/rpc/:entity/:method.
type RPCRequest struct {
	Args []string `json:"args"`
}

// HTTP calls a remote gateway through the rpc bridge.
type HTTP struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTP(baseURL string, timeout time.Duration) HTTP {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return HTTP{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

func (h HTTP) Call(ctx context.Context, entity domain.Entity, method string, args []string) (string, error) {
	if args == nil {
		args = []string{}
	}
	body, err := json.Marshal(RPCRequest{Args: args})
	if err != nil {
		return "", err
	}
	endpoint := fmt.Sprintf("%s/api/rpc/%s/%s", h.BaseURL, url.PathEscape(entity.String()), url.PathEscape(method))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	cl := h.Client
	if cl == nil {
		cl = http.DefaultClient
	}
	resp, err := cl.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if msg := wire.ErrorOf(string(raw)); msg != "" {
			return "", fmt.Errorf("%s: %s", resp.Status, msg)
		}
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}
	return string(raw), nil
}
