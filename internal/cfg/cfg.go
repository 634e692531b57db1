package cfg

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"

	"github.com/linnemanlabs/triageboard/internal/notify/webhook"
)

// LegacyWebhookEnv is the confirmation webhook variable read by earlier
// deployments. It applies only when the URL was not set explicitly.
const LegacyWebhookEnv = "N8N_CONFIRM_WEBHOOK_URL"

const webhookFlag = "confirm-webhook-url"

// Config adds app-specific configuration fields to the
// common cfg.Registerable and cfg.Validatable interfaces
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	MaxBodyBytes          int64
	ConfirmWebhookURL     string
	ConfirmTimeoutSeconds int
	PollIntervalSeconds   int
	UnwrapEnvelope        bool
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 10, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 30, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.Int64Var(&c.MaxBodyBytes, "max-body-bytes", 1<<20, "maximum accepted request body in bytes (1024..67108864)")
	fs.StringVar(&c.ConfirmWebhookURL, webhookFlag, webhook.DefaultURL, "webhook receiving confirmed records (empty = do not forward)")
	fs.IntVar(&c.ConfirmTimeoutSeconds, "confirm-timeout-seconds", 10, "timeout for one confirmation webhook call (1..120)")
	fs.IntVar(&c.PollIntervalSeconds, "poll-interval-seconds", 2, "dashboard refresh interval served to browsers (1..60)")
	fs.BoolVar(&c.UnwrapEnvelope, "unwrap-envelope", false, `accept intake bodies wrapped as [{"output": ...}]`)
}

// ApplyLegacyEnv falls back to LegacyWebhookEnv when the webhook URL was
// not given as a flag or via the prefixed environment variable. An empty
// legacy value is ignored. Call it
// after flags and environment have been applied. It reports whether the
// legacy value was used.
func (c *Config) ApplyLegacyEnv(fs *flag.FlagSet, envPrefix string, lookup func(string) (string, bool)) bool {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	explicit := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == webhookFlag {
			explicit = true
		}
	})
	if _, ok := lookup(envPrefix + "CONFIRM_WEBHOOK_URL"); ok {
		explicit = true
	}
	if explicit {
		return false
	}
	// empty counts as unset so forwarding keeps the default URL
	v, ok := lookup(LegacyWebhookEnv)
	if !ok || v == "" {
		return false
	}
	c.ConfirmWebhookURL = v
	return true
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	if c.MaxBodyBytes < 1024 || c.MaxBodyBytes > 64<<20 {
		errs = append(errs, fmt.Errorf("invalid MAX_BODY_BYTES %d (must be 1024..67108864)", c.MaxBodyBytes))
	}

	// Empty webhook URL disables forwarding
	if c.ConfirmWebhookURL != "" {
		if err := validateWebhookURL(c.ConfirmWebhookURL); err != nil {
			errs = append(errs, fmt.Errorf("invalid CONFIRM_WEBHOOK_URL: %w", err))
		}
	}

	if c.ConfirmTimeoutSeconds <= 0 || c.ConfirmTimeoutSeconds > 120 {
		errs = append(errs, fmt.Errorf("invalid CONFIRM_TIMEOUT_SECONDS %d (must be 1..120)", c.ConfirmTimeoutSeconds))
	}

	if c.PollIntervalSeconds <= 0 || c.PollIntervalSeconds > 60 {
		errs = append(errs, fmt.Errorf("invalid POLL_INTERVAL_SECONDS %d (must be 1..60)", c.PollIntervalSeconds))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func validateWebhookURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme %q (must be http or https)", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
