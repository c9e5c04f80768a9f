package logs

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/grafana/loki-client-go/loki"
	slogloki "github.com/samber/slog-loki/v3"

	"github.com/Alijeyrad/oilcall_backend/config"
)

func newLokiHandler(cfg *config.Config, level slog.Level) (slog.Handler, func(), error) {
	lc := cfg.Logging.Output.Loki

	u, err := url.Parse(strings.TrimRight(lc.Endpoint, "/") + "/loki/api/v1/push")
	if err != nil {
		return nil, nil, fmt.Errorf("parse loki endpoint: %w", err)
	}
	if lc.Username != "" {
		// net/http sends URL userinfo as basic auth
		u.User = url.UserPassword(lc.Username, lc.Password)
	}

	clientCfg, err := loki.NewDefaultConfig(u.String())
	if err != nil {
		return nil, nil, fmt.Errorf("loki config: %w", err)
	}
	client, err := loki.New(clientCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("loki client: %w", err)
	}

	h := slogloki.Option{
		Level:  level,
		Client: client,
	}.NewLokiHandler()

	return h, client.Stop, nil
}
