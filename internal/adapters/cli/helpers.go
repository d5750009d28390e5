package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andrescamacho/shopfloor-go/internal/adapters/api"
	"github.com/andrescamacho/shopfloor-go/internal/adapters/rest"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
	"github.com/andrescamacho/shopfloor-go/internal/application/session"
	"github.com/andrescamacho/shopfloor-go/internal/infrastructure/config"
	"github.com/andrescamacho/shopfloor-go/internal/infrastructure/logging"
)

// env is everything a command needs to talk to the server
type env struct {
	cfg     *config.Config
	user    *config.UserConfig
	session *session.Manager
	client  *api.ShopfloorClient
	logger  *zap.Logger
	out     io.Writer
}

// newEnv resolves configuration with priority flags > user preferences > config/env
func newEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		if verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to load config: %v, using defaults\n", err)
		}
		cfg = config.LoadConfigOrDefault("")
	}

	user := &config.UserConfig{}
	if handler, err := config.NewUserConfigHandler(); err == nil {
		if loaded, err := handler.Load(); err == nil {
			user = loaded
		}
	}

	if user.ServerURL != "" {
		cfg.Client.BaseURL = user.ServerURL
	}
	if serverURL != "" {
		cfg.Client.BaseURL = serverURL
	}
	if token != "" {
		cfg.Client.Token = token
	}

	logger := zap.NewNop()
	if verbose {
		logCfg := cfg.Logging
		logCfg.Level = "debug"
		logCfg.Format = "text"
		logCfg.Output = "stderr"
		if l, err := logging.NewLogger(logCfg); err == nil {
			logger = l
		}
	}

	sess := sessionFromToken(cfg.Client.Token, logger)
	sess.Subscribe(func(e session.Event) {
		if e == session.EventInvalidated {
			fmt.Fprintln(cmd.ErrOrStderr(), "Session rejected by the server; set a new token with --token or SF_CLIENT_TOKEN.")
		}
	})

	return &env{
		cfg:     cfg,
		user:    user,
		session: sess,
		client:  api.NewShopfloorClient(cfg.Client, sess, logger, nil),
		logger:  logger,
		out:     cmd.OutOrStdout(),
	}, nil
}

// sessionFromToken starts a session from a bearer token. Claims are read
// without verification for display only; the server verifies every request.
func sessionFromToken(raw string, logger *zap.Logger) *session.Manager {
	sess := session.NewManager(nil, logger)
	if raw == "" {
		return sess
	}

	claims := &rest.Claims{}
	actor := ""
	var perms []string
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err == nil {
		actor = claims.Subject
		perms = claims.Permissions
	}
	sess.Login(raw, actor, perms)
	return sess
}

// resolveProductID returns --product, falling back to the user preference
func (e *env) resolveProductID(required bool) (string, error) {
	if productID != "" {
		return productID, nil
	}
	if e.user.DefaultProductID != "" {
		return e.user.DefaultProductID, nil
	}
	if required {
		return "", fmt.Errorf("no product specified: use --product, or set a default with 'shopfloor config set-product'")
	}
	return "", nil
}

// parseDateFlag parses an optional YYYY-MM-DD flag value
func parseDateFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if value == "today" {
		t := time.Now().UTC()
		return &t, nil
	}
	d, err := dtos.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &d.Time, nil
}

func optionalInt(cmd *cobra.Command, name string, value int) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

func optionalString(cmd *cobra.Command, name string, value string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

// describeError turns client errors into operator-facing messages
func describeError(err error) string {
	switch {
	case errors.Is(err, api.ErrTransport):
		return fmt.Sprintf("Error: %s\n  %v", api.ErrTransport, err)
	case errors.Is(err, session.ErrNotAuthenticated):
		return "Error: no token configured; use --token or SF_CLIENT_TOKEN"
	case api.IsConflict(err):
		return fmt.Sprintf("Rejected: %v", err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

// prettyPrint formats JSON for display
func prettyPrint(v interface{}) string {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(bytes)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// emit prints v as JSON with --json, otherwise through render
func (e *env) emit(v interface{}, render func(w io.Writer)) {
	if jsonOutput {
		fmt.Fprintln(e.out, prettyPrint(v))
		return
	}
	render(e.out)
}
