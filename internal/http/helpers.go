package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/xiaofeng1coin/jizhangxt/internal/core"
)

// parseRecordForm extracts a record's fields from a submitted form. The
// amount is parsed strictly; the date is taken as-is and defaults to
// today downstream when empty.
func parseRecordForm(r *http.Request) (core.Record, error) {
	amount, err := core.ParseAmount(strings.TrimSpace(r.Form.Get("amount")))
	if err != nil {
		return core.Record{}, err
	}
	rec := core.Record{
		Type:        core.RecordType(strings.TrimSpace(r.Form.Get("type"))),
		Category:    sanitizeInput(r.Form.Get("category")),
		Amount:      amount,
		Description: sanitizeInput(r.Form.Get("description")),
		Date:        strings.TrimSpace(r.Form.Get("date")),
	}
	return rec, nil
}

// formatYuan formats an amount as a currency string (e.g. "¥1,234.56").
func formatYuan(m core.Money) string {
	if m < 0 {
		return "-¥" + (-m).Grouped()
	}
	return "¥" + m.Grouped()
}

// formatPct renders a percentage with one decimal place.
func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
