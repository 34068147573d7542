package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/acadportal/eventportal/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// TokenProvider supplies the bearer token of the current session and ends the session on 401.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
}

// Client talks to the academic event backend. Every call carries the session bearer token.
type Client interface {
	ListProgrammes(ctx context.Context) ([]Programme, error)
	GetProgramme(ctx context.Context, id string) (Programme, error)
	CreateProgramme(ctx context.Context, form ProgrammeForm) (Programme, error)
	UpdateProgramme(ctx context.Context, id string, form ProgrammeForm) (Programme, error)
	DeleteProgramme(ctx context.Context, id string) error
	SubmitClaim(ctx context.Context, eventId string, claim ClaimRequest) error
	ClaimPDF(ctx context.Context, id string) ([]byte, error)
	LookupHOD(ctx context.Context, userId string) (HOD, error)
}

type ClientImpl struct {
	baseURL string
	tokens  TokenProvider
	base    *http.Client
}

func NewClient(baseURL string, tokens TokenProvider, base *http.Client) *ClientImpl {
	if base == nil {
		base = http.DefaultClient
	}
	return &ClientImpl{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		base:    base,
	}
}

// SetTokenProvider replaces the token source given to NewClient.
func (c *ClientImpl) SetTokenProvider(tokens TokenProvider) {
	c.tokens = tokens
}

// prepareClient returns an HTTP client that adds the session's bearer token to every request.
func (c *ClientImpl) prepareClient(ctx context.Context) (*http.Client, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		log.Debugf("no usable session token: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return c.bearerClient(ctx, token), nil
}

func (c *ClientImpl) bearerClient(ctx context.Context, token string) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.base)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
}

func (c *ClientImpl) ListProgrammes(ctx context.Context) ([]Programme, error) {
	var programmes []Programme
	if err := c.call(ctx, http.MethodGet, "/coordinator/programmes", nil, "", &programmes); err != nil {
		return nil, err
	}
	return programmes, nil
}

func (c *ClientImpl) GetProgramme(ctx context.Context, id string) (Programme, error) {
	var programme Programme
	err := c.call(ctx, http.MethodGet, "/coordinator/programmes/"+url.PathEscape(id), nil, "", &programme)
	return programme, err
}

func (c *ClientImpl) CreateProgramme(ctx context.Context, form ProgrammeForm) (Programme, error) {
	return c.sendProgramme(ctx, http.MethodPost, "/coordinator/programmes", form)
}

func (c *ClientImpl) UpdateProgramme(ctx context.Context, id string, form ProgrammeForm) (Programme, error) {
	return c.sendProgramme(ctx, http.MethodPut, "/coordinator/programmes/"+url.PathEscape(id), form)
}

func (c *ClientImpl) sendProgramme(ctx context.Context, method, path string, form ProgrammeForm) (Programme, error) {
	body, contentType, err := encodeMultipart(form)
	if err != nil {
		return Programme{}, err
	}
	var programme Programme
	err = c.call(ctx, method, path, body, contentType, &programme)
	return programme, err
}

func (c *ClientImpl) DeleteProgramme(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/coordinator/programmes/"+url.PathEscape(id), nil, "", nil)
}

func (c *ClientImpl) SubmitClaim(ctx context.Context, eventId string, claim ClaimRequest) error {
	raw, err := json.Marshal(claim)
	if err != nil {
		return err
	}
	return c.call(ctx, http.MethodPost, "/coordinator/claims/"+url.PathEscape(eventId), bytes.NewReader(raw), "application/json", nil)
}

func (c *ClientImpl) ClaimPDF(ctx context.Context, id string) ([]byte, error) {
	var pdf []byte
	err := c.call(ctx, http.MethodGet, "/coordinator/claims/"+url.PathEscape(id)+"/pdf", nil, "", &pdf)
	return pdf, err
}

func (c *ClientImpl) LookupHOD(ctx context.Context, userId string) (HOD, error) {
	var hod HOD
	err := c.call(ctx, http.MethodGet, "/coordinator/hod/"+url.PathEscape(userId), nil, "", &hod)
	return hod, err
}

// CurrentProfile loads the profile for an explicit token; it is used while a session is being created.
func (c *ClientImpl) CurrentProfile(ctx context.Context, token string) (user.User, error) {
	var profile user.User
	err := c.do(ctx, c.bearerClient(ctx, token), http.MethodGet, "/auth/me", nil, "", &profile)
	return profile, err
}

func (c *ClientImpl) call(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	client, err := c.prepareClient(ctx)
	if err != nil {
		return err
	}
	err = c.do(ctx, client, method, path, body, contentType, out)
	if errors.Is(err, ErrUnauthorized) {
		log.Info("backend rejected the session token, logging out")
		if logoutErr := c.tokens.Logout(ctx); logoutErr != nil {
			log.Errorf("failed to clear session: %v", logoutErr)
		}
	}
	return err
}

// do executes one request. out may be nil, a *[]byte for raw bodies, or a JSON target.
func (c *ClientImpl) do(ctx context.Context, client *http.Client, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		log.Errorf("Failed to create request: %v", err)
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := client.Do(req)
	if err != nil {
		log.Errorf("Failed to execute %s %s: %v", method, path, err)
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseAPIError(resp.StatusCode, raw)
		log.Warnf("%s %s failed: %v", method, path, apiErr)
		return apiErr
	}

	switch target := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*target = raw
		return nil
	default:
		if len(raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			log.Errorf("Failed to decode response: %v", err)
			return err
		}
		return nil
	}
}

func encodeMultipart(form ProgrammeForm) (io.Reader, string, error) {
	if form.Brochure != nil && len(form.Brochure.Content) > MaxBrochureSize {
		return nil, "", fmt.Errorf("brochure exceeds %d bytes", MaxBrochureSize)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, field := range form.Fields {
		if err := writer.WriteField(field.Name, field.Value); err != nil {
			return nil, "", err
		}
	}
	if form.Brochure != nil {
		part, err := writer.CreateFormFile("brochure", form.Brochure.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(form.Brochure.Content); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}
