package campaign

import "time"

// Config is resolved once per command and passed to every component.
type Config struct {
	// Template is the template id read from the template store.
	Template string `yaml:"template"`
	// DocumentsLocation and PDFsLocation are the artifact store locations
	// holding generated files. Each is also the orphan scan scope.
	DocumentsLocation string `yaml:"documents_location"`
	PDFsLocation      string `yaml:"pdfs_location"`
	// NameTemplate names artifacts, e.g. "{{LastName}} invitation".
	NameTemplate string `yaml:"name_template"`
	// Subject overrides the template's subject. Tokens are substituted.
	Subject string `yaml:"subject"`

	SendDelay time.Duration `yaml:"send_delay"`
	// LocateWindow is how far before a send the sent-mail search looks.
	LocateWindow time.Duration `yaml:"locate_window"`
	// BounceLookback bounds the sent-mail search for recipients that were
	// sent without a message id.
	BounceLookback time.Duration `yaml:"bounce_lookback"`

	// OrphanThreshold is the orphan ratio above which deletion needs force.
	OrphanThreshold float64 `yaml:"orphan_threshold"`
	AttachPDF       bool    `yaml:"attach_pdf"`
}

const (
	DefaultSendDelay       = time.Second
	DefaultLocateWindow    = 5 * time.Minute
	DefaultBounceLookback  = 14 * 24 * time.Hour
	DefaultOrphanThreshold = 0.5
)

// WithDefaults fills zero values. A negative SendDelay disables the delay.
func (c Config) WithDefaults() Config {
	if c.SendDelay == 0 {
		c.SendDelay = DefaultSendDelay
	}
	if c.SendDelay < 0 {
		c.SendDelay = 0
	}
	if c.LocateWindow <= 0 {
		c.LocateWindow = DefaultLocateWindow
	}
	if c.BounceLookback <= 0 {
		c.BounceLookback = DefaultBounceLookback
	}
	if c.OrphanThreshold <= 0 || c.OrphanThreshold > 1 {
		c.OrphanThreshold = DefaultOrphanThreshold
	}
	return c
}
