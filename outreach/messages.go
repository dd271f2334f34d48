package outreach

import (
	"fmt"
	"sort"
	"strings"

	"github.com/warp/outreach-engine/generic"
)

// Renderer produces the outbox text for one plan entry.
type Renderer interface {
	Render(customerName, productName string, msg MessageType) string
}

// DefaultLocale is the locale of the original store front.
const DefaultLocale = "tr"

// Templates is a locale's message set. Each template receives the customer
// name as %[1]s and the product name as %[2]s. Fallback covers
// campaign_followup and any other message type.
type Templates struct {
	Locale          string
	ReorderReminder string
	AccessoryOffer  string
	Fallback        string
}

var builtinTemplates = map[string]Templates{
	"tr": {
		Locale:          "tr",
		ReorderReminder: "Merhaba %[1]s, %[2]s ürününüz bitmek üzere olabilir. Yenilemek ister misiniz?",
		AccessoryOffer:  "Merhaba %[1]s, %[2]s için tamamlayıcı ürünlerimizi görmek ister misiniz?",
		Fallback:        "Merhaba %[1]s, %[2]s ile ilgili yeni fırsatlarımız var. Göz atmak ister misiniz?",
	},
	"en": {
		Locale:          "en",
		ReorderReminder: "Hello %[1]s, your %[2]s may be running low. Would you like to reorder?",
		AccessoryOffer:  "Hello %[1]s, would you like to see accessories for your %[2]s?",
		Fallback:        "Hello %[1]s, we have new offers related to %[2]s. Want to take a look?",
	},
}

// Locales lists the built-in locales, sorted.
func Locales() []string {
	out := make([]string, 0, len(builtinTemplates))
	for l := range builtinTemplates {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// TemplatesFor returns the built-in templates of a locale. An empty
// locale selects DefaultLocale.
func TemplatesFor(locale string) (Templates, error) {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if locale == "" {
		locale = DefaultLocale
	}
	t, ok := builtinTemplates[locale]
	if !ok {
		return Templates{}, &generic.ConfigError{
			Field:  "locale",
			Reason: fmt.Sprintf("unknown locale %q (available: %s)", locale, strings.Join(Locales(), ", ")),
		}
	}
	return t, nil
}

func (t Templates) Render(customerName, productName string, msg MessageType) string {
	format := t.Fallback
	switch msg {
	case MessageReorderReminder:
		format = t.ReorderReminder
	case MessageAccessoryOffer:
		format = t.AccessoryOffer
	}
	return fmt.Sprintf(format, customerName, productName)
}

// BuildOutbox renders one message per entry, in entry order.
func BuildOutbox(entries []PlanEntry, r Renderer) []OutboxMessage {
	out := make([]OutboxMessage, len(entries))
	for i, e := range entries {
		out[i] = OutboxMessage{
			CustomerName: e.CustomerName,
			MessageType:  e.MessageType,
			MessageText:  r.Render(e.CustomerName, e.ProductName, e.MessageType),
		}
	}
	return out
}
