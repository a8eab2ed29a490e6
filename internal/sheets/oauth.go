package sheets

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/claims-triage/internal/common"
)

// DefaultCallbackAddr is where the local OAuth2 callback server listens.
const DefaultCallbackAddr = "localhost:8085"

// OAuth2Config holds OAuth2 configuration for the interactive login.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	TokenFile    string
	CallbackAddr string
	Timeout      time.Duration
}

func oauthConfig(clientID, clientSecret, redirect string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirect,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
}

// Authenticate runs the browser OAuth2 flow and returns a token carrying a
// refresh token. The token is saved to TokenFile when one is set.
func Authenticate(ctx context.Context, config OAuth2Config, logger *slog.Logger) (*oauth2.Token, error) {
	logger = common.OrDefault(logger)
	if config.ClientID == "" || config.ClientSecret == "" {
		return nil, fmt.Errorf("%w: sheets client id and secret", common.ErrMissingConfig)
	}
	addr := config.CallbackAddr
	if addr == "" {
		addr = DefaultCallbackAddr
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	state, err := randomState()
	if err != nil {
		return nil, err
	}
	oc := oauthConfig(config.ClientID, config.ClientSecret, "http://"+addr+"/callback")

	codeChan := make(chan string, 1)
	errorChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			errorChan <- errors.New("oauth callback state mismatch")
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "no authorization code received", http.StatusBadRequest)
			errorChan <- errors.New("no authorization code received")
			return
		}
		codeChan <- code
		_, _ = fmt.Fprint(w, "Authentication complete. You can close this window.")
	})

	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorChan <- fmt.Errorf("failed to start callback server: %w", err)
		}
	}()
	defer func() {
		if err := server.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("error shutting down callback server", "error", err)
		}
	}()

	authURL := oc.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	logger.Info("Google Sheets authentication required")
	logger.Info("Please visit this URL to authenticate", "url", authURL)

	var code string
	select {
	case code = <-codeChan:
	case err := <-errorChan:
		return nil, err
	case <-time.After(timeout):
		return nil, fmt.Errorf("authentication timeout: no response received within %s", timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	token, err := oc.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if config.TokenFile != "" {
		if err := SaveToken(config.TokenFile, token); err != nil {
			logger.Warn("failed to save token", "error", err, "file", config.TokenFile)
		} else {
			logger.Info("token saved", "file", config.TokenFile)
		}
	}

	return token, nil
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// LoadToken loads a token from file.
func LoadToken(tokenFile string) (*oauth2.Token, error) {
	f, err := os.Open(tokenFile) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return token, nil
}

// SaveToken writes a token with owner-only permissions.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	return nil
}

// RefreshTokenFromFile returns the refresh token stored in tokenFile, or ""
// when the file is missing or has none.
func RefreshTokenFromFile(tokenFile string) string {
	if tokenFile == "" {
		return ""
	}
	token, err := LoadToken(tokenFile)
	if err != nil {
		return ""
	}
	return token.RefreshToken
}
