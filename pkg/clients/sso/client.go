package sso

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Scope required to read a member's wallet journal on their behalf.
const WalletScope = "esi-wallet.read_character_wallet.v1"

type SsoClient struct {
	httpClient   *http.Client
	TokenUrl     string
	ClientId     string
	ClientSecret string
	Logger       *zap.Logger
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
}

func NewSsoClient(hc *http.Client, tokenUrl string, clientId string, clientSecret string, l *zap.Logger) *SsoClient {
	return &SsoClient{
		httpClient:   hc,
		TokenUrl:     tokenUrl,
		ClientId:     clientId,
		ClientSecret: clientSecret,
		Logger:       l,
	}
}

// RefreshAccessToken exchanges a member's long-lived refresh token for a fresh
// bearer token scoped to wallet reads. An expired or revoked token fails here
// and the member is skipped for the cycle.
func (sc *SsoClient) RefreshAccessToken(refreshToken string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	fullUrl := fmt.Sprintf("%s?scope=%s", sc.TokenUrl, url.QueryEscape(WalletScope))
	req, err := http.NewRequest(http.MethodPost, fullUrl, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create the SSO token request")
	}

	basicAuth := base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%s", sc.ClientId, sc.ClientSecret)))
	req.Header.Set("Authorization", fmt.Sprintf("Basic %s", basicAuth))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := sc.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to perform the SSO token request")
	}
	defer res.Body.Close()

	bodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read the SSO token response")
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sso response status %v %s", res.StatusCode, res.Status)
	}

	token := &TokenResponse{}
	if err := json.Unmarshal(bodyBytes, token); err != nil {
		return nil, errors.Wrap(err, "failed to parse the SSO token response")
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("sso returned an empty access token")
	}
	return token, nil
}
