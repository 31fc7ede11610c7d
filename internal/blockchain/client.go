package blockchain

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Client struct {
	logger *zap.Logger
	url    string
	http   *http.Client
}

func NewClient(logger *zap.Logger, validatorRestAPIUrl string) *Client {
	url := strings.TrimSuffix(validatorRestAPIUrl, "/")
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}

	return &Client{
		logger: logger,
		url:    url,
		// above the batch status wait
		http: &http.Client{Timeout: time.Duration(wait+5) * time.Second},
	}
}
