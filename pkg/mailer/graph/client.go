// Package graph searches a Microsoft 365 mailbox through the Graph API to
// locate sent campaign messages and detect bounce notices in their threads.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/dmitrymomot/mergeflow/pkg/mailer"
)

const defaultPageSize = 50

// Client implements mailer.Locator and mailer.BounceChecker.
type Client struct {
	httpClient *http.Client
	baseURL    string
	mailbox    string
	pageSize   int
}

// New creates a client authenticated with the OAuth2 client credentials flow.
func New(ctx context.Context, cfg Config) *Client {
	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.TenantID),
		Scopes:       []string{"https://graph.microsoft.com/.default"},
	}
	return NewWithHTTPClient(creds.Client(ctx), cfg)
}

// NewWithHTTPClient creates a client using an already authorized HTTP client.
func NewWithHTTPClient(httpClient *http.Client, cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	size := cfg.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(base, "/"),
		mailbox:    cfg.Mailbox,
		pageSize:   size,
	}
}

type emailAddress struct {
	EmailAddress struct {
		Address string `json:"address"`
		Name    string `json:"name"`
	} `json:"emailAddress"`
}

// graphMessage represents the relevant fields from a Graph API message response.
type graphMessage struct {
	ID             string         `json:"id"`
	Subject        string         `json:"subject"`
	ConversationID string         `json:"conversationId"`
	From           emailAddress   `json:"from"`
	ToRecipients   []emailAddress `json:"toRecipients"`
}

type messageList struct {
	Value []graphMessage `json:"value"`
}

// LocateSent implements mailer.Locator.
func (c *Client) LocateSent(ctx context.Context, to, subject string, since time.Time) (string, error) {
	q := url.Values{}
	q.Set("$filter", "sentDateTime ge "+since.UTC().Format(time.RFC3339))
	q.Set("$orderby", "sentDateTime desc")
	q.Set("$select", "id,subject,toRecipients,conversationId")
	q.Set("$top", fmt.Sprint(c.pageSize))

	var list messageList
	if err := c.get(ctx, c.userPath("/mailFolders/SentItems/messages"), q, &list); err != nil {
		return "", err
	}

	for _, msg := range list.Value {
		if msg.Subject != subject {
			continue
		}
		for _, r := range msg.ToRecipients {
			if strings.EqualFold(r.EmailAddress.Address, to) {
				return msg.ID, nil
			}
		}
	}
	return "", mailer.ErrMessageNotFound
}

// Bounced implements mailer.BounceChecker. It scans every message in the
// conversation of the sent message for a delivery daemon sender.
func (c *Client) Bounced(ctx context.Context, messageID string) (bool, error) {
	q := url.Values{}
	q.Set("$select", "id,conversationId")

	var sent graphMessage
	if err := c.get(ctx, c.userPath("/messages/"+url.PathEscape(messageID)), q, &sent); err != nil {
		return false, err
	}
	if sent.ConversationID == "" {
		return false, nil
	}

	q = url.Values{}
	q.Set("$filter", fmt.Sprintf("conversationId eq '%s'", strings.ReplaceAll(sent.ConversationID, "'", "''")))
	q.Set("$select", "id,from,subject")

	var thread messageList
	if err := c.get(ctx, c.userPath("/messages"), q, &thread); err != nil {
		return false, err
	}

	for _, msg := range thread.Value {
		if msg.ID == sent.ID {
			continue
		}
		from := msg.From.EmailAddress
		if mailer.IsDaemonSender(from.Address) || mailer.IsDaemonSender(from.Name) {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) userPath(suffix string) string {
	return "/users/" + url.PathEscape(c.mailbox) + suffix
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("graph: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graph: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return mailer.ErrMessageNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("graph: API returned HTTP %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("graph: decode response: %w", err)
	}
	return nil
}
