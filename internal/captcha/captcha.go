package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"stayfinder/api/internal/config"
)

var ErrCaptchaFailed = errors.New("captcha verification failed")

// Verifier checks a client-supplied challenge response. Verification
// fails closed: any transport or provider error rejects the request.
type Verifier interface {
	Verify(ctx context.Context, response string, clientIP string) error
}

// HTTPVerifier posts to a reCAPTCHA-style siteverify endpoint.
type HTTPVerifier struct {
	cfg    config.CaptchaConfig
	client *http.Client
	log    zerolog.Logger
}

func NewHTTPVerifier(cfg config.CaptchaConfig, log zerolog.Logger) *HTTPVerifier {
	return &HTTPVerifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

func (v *HTTPVerifier) Verify(ctx context.Context, response string, clientIP string) error {
	if v.cfg.Secret == "" {
		// No secret configured: captcha is disabled (local development).
		v.log.Debug().Msg("captcha secret not configured, skipping verification")
		return nil
	}
	if response == "" {
		return ErrCaptchaFailed
	}

	form := url.Values{}
	form.Set("secret", v.cfg.Secret)
	form.Set("response", response)
	if clientIP != "" {
		form.Set("remoteip", clientIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build captcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		v.log.Warn().Err(err).Msg("captcha provider unreachable")
		return ErrCaptchaFailed
	}
	defer resp.Body.Close()

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		v.log.Warn().Err(err).Msg("captcha provider returned invalid body")
		return ErrCaptchaFailed
	}

	if !result.Success {
		v.log.Debug().Strs("error_codes", result.ErrorCodes).Msg("captcha rejected")
		return ErrCaptchaFailed
	}
	return nil
}
