package graph

// DefaultBaseURL is the Microsoft Graph v1.0 endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// Config holds Microsoft Graph mailbox access settings.
type Config struct {
	TenantID     string `yaml:"tenant_id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	// Mailbox is the user id or address whose Sent Items are searched.
	Mailbox string `yaml:"mailbox"`
	BaseURL string `yaml:"base_url"`
	// PageSize caps the number of sent messages inspected per lookup.
	PageSize int `yaml:"page_size"`
}
