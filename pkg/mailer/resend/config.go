package resend

// Config holds Resend email provider configuration.
type Config struct {
	APIKey      string `yaml:"api_key"`
	SenderEmail string `yaml:"sender_email"`
	SenderName  string `yaml:"sender_name"`
	// BaseURL overrides the API endpoint. Empty uses the Resend default.
	BaseURL string `yaml:"base_url"`
}
