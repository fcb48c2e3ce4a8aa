package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	errs "igmenu/pkg/errors"
)

// Login authenticates username against the web login endpoint. On success
// the session cookies stay in the client's jar for all later calls. It makes
// exactly one login attempt.
func (c *Client) Login(ctx context.Context, username, password string) error {
	c.logger.InfoWithFields("logging in", map[string]interface{}{
		"username": username,
	})

	var shared sharedDataResponse
	if err := c.getJSON(ctx, c.baseURL+SharedDataEndpoint, &shared); err != nil {
		return fmt.Errorf("failed to fetch login parameters: %w", err)
	}

	encPassword, err := c.encodePassword(password, shared)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("username", username)
	form.Set("enc_password", encPassword)
	form.Set("queryParams", "{}")
	form.Set("optIntoOneTap", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+LoginEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errs.Wrap(errs.ErrorTypeUnknown, err, "failed to create login request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token := shared.Config.CSRFToken; token != "" && c.cookie("csrftoken") == "" {
		req.Header.Set("X-CSRFToken", token)
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeNetwork, err, "failed to read login response")
	}

	var result loginResponse
	if err := json.Unmarshal(body, &result); err != nil {
		if resp.StatusCode >= 400 {
			return errs.New(errs.ErrorTypeAuth, resp.StatusCode, "login failed with status %d", resp.StatusCode)
		}
		return errs.Wrap(errs.ErrorTypeParsing, err, "failed to parse login response")
	}

	if err := loginResult(username, resp.StatusCode, &result); err != nil {
		c.logger.WithError(err).WarnWithFields("login rejected", map[string]interface{}{
			"username": username,
			"status":   resp.StatusCode,
		})
		return err
	}

	c.username = username
	c.logger.InfoWithFields("logged in", map[string]interface{}{
		"username": username,
		"user_id":  result.UserID,
	})
	return nil
}

// loginResult maps a decoded login response to nil or a typed error
func loginResult(username string, statusCode int, result *loginResponse) error {
	switch {
	case result.TwoFactorRequired:
		return errs.ErrTwoFactorRequired
	case result.Authenticated:
		return nil
	case result.CheckpointURL != "" || result.Message == "checkpoint_required":
		return errs.New(errs.ErrorTypeAuth, statusCode, "checkpoint required: verify this login at %s", result.CheckpointURL)
	case result.Status == "fail" || statusCode >= 400:
		message := result.Message
		if message == "" {
			message = fmt.Sprintf("login failed with status %d", statusCode)
		}
		return errs.New(errs.ErrorTypeAuth, statusCode, "%s", message)
	case result.User:
		return errs.ErrBadCredentials
	default:
		return errs.New(errs.ErrorTypeAuth, statusCode, "user %s does not exist", username)
	}
}

// encodePassword builds the enc_password form value, sealing the password
// when the server publishes an encryption key
func (c *Client) encodePassword(password string, shared sharedDataResponse) (string, error) {
	enc := shared.Encryption
	if enc.PublicKey == "" || enc.KeyID == "" {
		return plainPassword(password, c.now()), nil
	}

	keyID, err := strconv.Atoi(enc.KeyID)
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeParsing, err, "invalid encryption key id %q", enc.KeyID)
	}

	sealed, err := encryptPassword(password, keyID, enc.PublicKey, c.now())
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeAuth, err, "failed to encrypt password")
	}
	return sealed, nil
}
