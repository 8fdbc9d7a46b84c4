package kis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"kisquant/internal/util"
)

// tokenResponse is the OAuth token payload returned by /oauth2/tokenP.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Expired     string `json:"access_token_token_expired"`
}

// Session is an authenticated KIS open-API client. It acquires a bearer
// token at construction, caches it, and refreshes it shortly before expiry.
// A Session is safe for sequential use by one owner; it is not a concurrent
// client.
type Session struct {
	appKey    string
	appSecret string
	domain    string

	httpClient *http.Client
	limiter    *util.RateLimiter
	log        *slog.Logger

	token       tokenResponse
	tokenExpiry time.Time
}

// tokenExpiryMargin is how long before the reported expiry a token is
// treated as stale.
const tokenExpiryMargin = 60 * time.Second

// NewSession creates a Session for the given credentials and API domain and
// performs the initial token request. rateLimitPerMin bounds outgoing calls;
// KIS enforces per-account request quotas.
func NewSession(ctx context.Context, appKey, appSecret, domain string, rateLimitPerMin int) (*Session, error) {
	s := &Session{
		appKey:     appKey,
		appSecret:  appSecret,
		domain:     domain,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    util.NewRateLimiter(rateLimitPerMin),
		log:        slog.Default().With("component", "kis"),
	}
	if err := s.refreshToken(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// refreshToken requests a new OAuth token and records its expiry.
func (s *Session) refreshToken(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{
		"grant_type": "client_credentials",
		"appkey":     s.appKey,
		"appsecret":  s.appSecret,
	})
	if err != nil {
		return fmt.Errorf("encoding token request: %w", err)
	}

	var tok tokenResponse
	err = util.Retry(ctx, 3, time.Second, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.domain+"/oauth2/tokenP", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("building token request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("token request returned status %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(&tok)
	})
	if err != nil {
		return fmt.Errorf("requesting token: %w", err)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("token response has no access_token")
	}

	s.token = tok
	s.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	s.log.Debug("token refreshed", "expiresIn", tok.ExpiresIn)
	return nil
}

func (s *Session) ensureToken(ctx context.Context) error {
	if time.Until(s.tokenExpiry) > tokenExpiryMargin {
		return nil
	}
	return s.refreshToken(ctx)
}

// Execute dispatches one command and returns the parsed JSON response. A
// response whose rt_cd field is present and not "0" is an API-level failure
// and is returned as an error.
func (s *Session) Execute(ctx context.Context, cmd Command) (map[string]any, error) {
	if err := s.ensureToken(ctx); err != nil {
		return nil, err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := s.buildRequest(ctx, cmd)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", cmd.Method, cmd.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response for %s: %w", cmd.Path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s %s: status %d: %s", cmd.Method, cmd.Path, resp.StatusCode, data)
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding response for %s: %w", cmd.Path, err)
	}

	if rt, ok := result["rt_cd"].(string); ok && rt != "0" {
		msg, _ := result["msg1"].(string)
		return nil, fmt.Errorf("%s (%s): rt_cd=%s %s", cmd.Path, cmd.TrID, rt, msg)
	}
	return result, nil
}

// ExecuteAll dispatches a command bundle in order, failing on the first
// error.
func (s *Session) ExecuteAll(ctx context.Context, cmds []Command) ([]map[string]any, error) {
	results := make([]map[string]any, 0, len(cmds))
	for _, cmd := range cmds {
		res, err := s.Execute(ctx, cmd)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Session) buildRequest(ctx context.Context, cmd Command) (*http.Request, error) {
	var req *http.Request
	var err error

	switch cmd.Method {
	case MethodGET:
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, s.domain+cmd.Path, nil)
		if err == nil {
			q := url.Values{}
			for k, v := range cmd.Params {
				q.Set(k, v)
			}
			req.URL.RawQuery = q.Encode()
		}
	case MethodPOST:
		var body []byte
		body, err = json.Marshal(cmd.Params)
		if err != nil {
			return nil, fmt.Errorf("encoding params for %s: %w", cmd.Path, err)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, s.domain+cmd.Path, bytes.NewReader(body))
	default:
		return nil, fmt.Errorf("unknown command method %q", cmd.Method)
	}
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", cmd.Path, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("Accept-Charset", "UTF-8")
	req.Header.Set("authorization", fmt.Sprintf("%s %s", s.token.TokenType, s.token.AccessToken))
	req.Header.Set("appkey", s.appKey)
	req.Header.Set("appsecret", s.appSecret)
	req.Header.Set("tr_id", cmd.TrID)
	return req, nil
}
