package acquiring

import (
	"net/http"

	"go.uber.org/zap"

	"sberbank-acquiring/pkg/transport"
)

// DefaultAPIURI is the acquiring test environment.
const DefaultAPIURI = "https://3dsec.sberbank.ru/payment/rest/"

const DefaultHTTPMethod = http.MethodPost

// Settings is the construction bundle of a Client. UserName and Password are
// required; everything else falls back to a default.
type Settings struct {
	UserName   string
	Password   string
	APIURI     string
	HTTPMethod string
	// HTTPClient replaces the lazily created default transport.
	HTTPClient transport.Transport
	Logger     *zap.Logger
}

func (s Settings) validate() error {
	if s.UserName == "" {
		return &ConfigError{Field: "userName", Err: ErrUserNameRequired}
	}
	if s.Password == "" {
		return &ConfigError{Field: "password", Err: ErrPasswordRequired}
	}
	if s.HTTPMethod != "" && s.HTTPMethod != http.MethodGet && s.HTTPMethod != http.MethodPost {
		return &ConfigError{Field: "httpMethod", Err: ErrInvalidHTTPMethod}
	}
	return nil
}
