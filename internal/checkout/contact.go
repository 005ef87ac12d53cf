package checkout

import (
	"fmt"
	"net/url"
	"strings"
)

// buildWhatsAppLink renders the wa.me deep link pre-filled with the
// payment-proof message. An unconfigured studio phone yields no link
// rather than a broken one.
func buildWhatsAppLink(phone, messageTemplate string, orderNumber int64, total string) string {
	digits := normalizePhone(phone)
	if digits == "" {
		return ""
	}
	message := fmt.Sprintf(messageTemplate, fmt.Sprintf("#%d", orderNumber), total)
	return fmt.Sprintf("https://wa.me/%s?text=%s", digits, url.QueryEscape(message))
}

func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
