// Package acquiring is a client for the acquiring REST API: every call is a
// named action posted as a form with the merchant credentials, answered by a
// JSON envelope carrying an errorCode.
package acquiring

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sberbank-acquiring/internal/logger"
	"sberbank-acquiring/pkg/transport"
)

// Client executes actions against the acquiring API. It is safe for concurrent use.
type Client struct {
	userName   string
	password   string
	apiURI     string
	httpMethod string
	log        *zap.Logger

	transportOnce sync.Once
	transport     transport.Transport
}

// NewClient validates settings and stores them. The default transport is not
// created until the first Execute.
func NewClient(settings Settings) (*Client, error) {
	if err := settings.validate(); err != nil {
		return nil, err
	}

	c := &Client{
		userName:   settings.UserName,
		password:   settings.Password,
		apiURI:     DefaultAPIURI,
		httpMethod: DefaultHTTPMethod,
		log:        settings.Logger,
		transport:  settings.HTTPClient,
	}
	if settings.APIURI != "" {
		c.apiURI = settings.APIURI
	}
	if settings.HTTPMethod != "" {
		c.httpMethod = settings.HTTPMethod
	}
	if c.log == nil {
		c.log = logger.L()
	}

	return c, nil
}

// APIURI returns the base URI actions are appended to.
func (c *Client) APIURI() string { return c.apiURI }

// HTTPMethod returns the verb used for every action.
func (c *Client) HTTPMethod() string { return c.httpMethod }

// Transport returns the configured transport, creating the default one on
// first use. Concurrent callers all observe the same instance.
func (c *Client) Transport() transport.Transport {
	c.transportOnce.Do(func() {
		if c.transport == nil {
			c.transport = transport.NewHTTPTransport(
				transport.WithTLSVerification(false),
				transport.WithVerbose(false),
				transport.WithLogger(c.log),
			)
		}
	})
	return c.transport
}

func requestHeaders() http.Header {
	h := make(http.Header, 3)
	h.Set("Content-Type", "application/x-www-form-urlencoded")
	h.Set("Cache-Control", "no-cache")
	h.Set("Charset", "utf-8")
	return h
}

// Execute runs action (e.g. "register.do") with data and returns the decoded
// envelope. Errors are *ConfigError, *NetworkError or *ActionError.
func (c *Client) Execute(ctx context.Context, action string, data map[string]any) (Response, error) {
	if action == "" {
		return nil, &ConfigError{Field: "action", Err: ErrEmptyAction}
	}

	reqID := logger.RequestIDFrom(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
		ctx = logger.WithRequestID(ctx, reqID)
	}
	log := logger.With(ctx, c.log).With(
		zap.String("action", action),
		zap.String("method", c.httpMethod),
	)

	params, err := buildParams(data, c.userName, c.password)
	if err != nil {
		log.Error("Failed encoding action data", zap.Error(err))
		return nil, err
	}

	uri := c.apiURI + action

	log.Info("Sending action request")

	body, err := c.Transport().Request(ctx, uri, c.httpMethod, requestHeaders(), params)
	if err != nil {
		log.Error("Action request failed", zap.Error(err))
		return nil, err
	}

	resp, err := decodeEnvelope(body)
	if err != nil {
		var ae *ActionError
		switch {
		case errors.Is(err, ErrMalformedResponse):
			log.Error("Malformed action response", zap.Error(err), zap.Int("bytes", len(body)))
		case errors.As(err, &ae):
			log.Warn("Action returned error",
				zap.String("error_code", ae.Code),
				zap.String("error_message", ae.Message),
			)
		}
		return nil, err
	}

	log.Info("Action succeeded")
	return resp, nil
}
