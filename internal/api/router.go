package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"go.uber.org/zap"

	"stock-watch/internal/market"
	"stock-watch/internal/store"
)

// RegisterRoutes mounts the read-only HTTP surface. Handlers call the
// fetcher directly and never touch the terminal's watchlist. st may be nil
// when snapshot history is disabled.
func RegisterRoutes(h *server.Hertz, fetcher market.Fetcher, st *store.Store, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	h.GET("/healthz", func(_ context.Context, c *app.RequestContext) {
		c.JSON(http.StatusOK, map[string]bool{"ok": true})
	})

	h.GET("/api/v1/resolve", func(_ context.Context, c *app.RequestContext) {
		code := strings.TrimSpace(c.Query("code"))
		if code == "" {
			c.JSON(http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": "code is required",
			})
			return
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":     true,
			"code":   code,
			"secids": market.Resolve(code),
		})
	})

	h.GET("/api/v1/quotes", func(ctx context.Context, c *app.RequestContext) {
		if fetcher == nil {
			c.JSON(http.StatusInternalServerError, map[string]any{
				"ok":    false,
				"error": "quote fetcher not configured",
			})
			return
		}
		codes := parseCodes(c.Query("codes"))
		if len(codes) == 0 {
			c.JSON(http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": "codes is empty",
			})
			return
		}
		quotes, err := fetcher.Fetch(ctx, codes)
		if err != nil {
			logger.Warn("api quotes fetch failed", zap.Strings("codes", codes), zap.Error(err))
			c.JSON(http.StatusBadGateway, map[string]any{
				"ok":    false,
				"kind":  errorKind(err),
				"error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":     true,
			"quotes": quotes,
		})
	})

	h.GET("/api/v1/snapshots", func(_ context.Context, c *app.RequestContext) {
		if st == nil {
			c.JSON(http.StatusInternalServerError, map[string]any{
				"ok":    false,
				"error": "store not configured",
			})
			return
		}
		code := strings.TrimSpace(c.Query("code"))
		if code == "" {
			c.JSON(http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": "code is required",
			})
			return
		}
		limit, err := parseLimit(c.Query("limit"))
		if err != nil {
			c.JSON(http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": err.Error(),
			})
			return
		}
		offset, err := parseOffset(c.Query("offset"))
		if err != nil {
			c.JSON(http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": err.Error(),
			})
			return
		}
		items, err := st.QuerySnapshots(code, limit, offset)
		if err != nil {
			logger.Error("api snapshot query failed", zap.String("code", code), zap.Error(err))
			c.JSON(http.StatusInternalServerError, map[string]any{
				"ok":    false,
				"error": err.Error(),
			})
			return
		}
		if items == nil {
			items = []store.QuoteSnapshot{}
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":    true,
			"items": items,
		})
	})
}

func errorKind(err error) string {
	var te *market.TransportError
	var fe *market.ResponseFormatError
	switch {
	case errors.As(err, &te):
		return "transport"
	case errors.As(err, &fe):
		return "response_format"
	default:
		return "unknown"
	}
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 200, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid limit")
	}
	if v > 1000 {
		return 1000, nil
	}
	return v, nil
}

func parseOffset(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid offset")
	}
	return v, nil
}

func parseCodes(raw string) []string {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
