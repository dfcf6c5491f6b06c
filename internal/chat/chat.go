package chat

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"shuttle-store/internal/orders"
	"shuttle-store/internal/products"
)

// Assistant is the rule-based storefront helper: it matches a message against
// keyword intents and answers from the catalog and order store.
type Assistant struct {
	products products.Conf
	orders   *orders.Conf
}

type Reply struct {
	Intent   string             `json:"intent"`
	Message  string             `json:"message"`
	Products []products.Product `json:"products,omitempty"`
}

func NewAssistant(productConf products.Conf, orderConf *orders.Conf) (*Assistant, error) {
	if orderConf == nil {
		return nil, fmt.Errorf("order conf is nil")
	}
	return &Assistant{products: productConf, orders: orderConf}, nil
}

var orderNumberPattern = regexp.MustCompile(`(?i)ORD-\d{8}-[A-Z0-9]{8}`)

// Intents are checked in order; the first match wins.
var intentKeywords = []struct {
	intent   string
	keywords []string
}{
	{"greeting", []string{"hello", "hi ", "hey", "good morning", "good afternoon"}},
	{"order_status", []string{"order status", "my order", "track", "where is my"}},
	{"shipping", []string{"shipping", "delivery", "ship", "how long"}},
	{"returns", []string{"return", "refund", "exchange", "warranty"}},
	{"price_query", []string{"price", "cost", "how much", "cheap", "expensive"}},
	{"product_search", []string{"racket", "racquet", "shuttlecock", "shoes", "grip", "string", "bag", "apparel", "looking for", "recommend", "buy"}},
}

// Respond produces a reply for one user message.
func (a *Assistant) Respond(ctx context.Context, message string) (Reply, error) {
	normalized := " " + strings.ToLower(strings.TrimSpace(message)) + " "

	intent := "fallback"
	for _, candidate := range intentKeywords {
		for _, kw := range candidate.keywords {
			if strings.Contains(normalized, kw) {
				intent = candidate.intent
				break
			}
		}
		if intent != "fallback" {
			break
		}
	}

	switch intent {
	case "greeting":
		return Reply{Intent: intent, Message: "Hello! I can help you find badminton gear, check prices or track an order. What are you looking for?"}, nil
	case "order_status":
		return a.orderStatus(ctx, message)
	case "shipping":
		return Reply{Intent: intent, Message: "Standard delivery takes 2-4 business days. Orders above the free-shipping threshold ship free."}, nil
	case "returns":
		return Reply{Intent: intent, Message: "You can return unused items within 7 days of delivery. Contact support with your order number to start a return."}, nil
	case "price_query", "product_search":
		return a.productSearch(ctx, intent, message)
	default:
		return Reply{Intent: intent, Message: "I can help with product recommendations, prices, shipping and order tracking. Could you rephrase that?"}, nil
	}
}

func (a *Assistant) orderStatus(ctx context.Context, message string) (Reply, error) {
	number := orderNumberPattern.FindString(strings.ToUpper(message))
	if number == "" {
		return Reply{Intent: "order_status", Message: "Please share your order number (it looks like ORD-20250101-AB12CD34) and I will look it up."}, nil
	}

	order, err := a.orders.GetByOrderNumber(ctx, number)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			return Reply{Intent: "order_status", Message: fmt.Sprintf("I could not find an order %s. Please double-check the number.", number)}, nil
		}
		return Reply{}, err
	}

	return Reply{
		Intent:  "order_status",
		Message: fmt.Sprintf("Order %s is currently %s.", order.OrderNumber, order.Status),
	}, nil
}

func (a *Assistant) productSearch(ctx context.Context, intent, message string) (Reply, error) {
	term := extractSearchTerm(message)
	matches, err := a.products.SearchActive(ctx, term, 5)
	if err != nil {
		return Reply{}, err
	}
	if len(matches) == 0 {
		return Reply{Intent: intent, Message: "I could not find matching products. Try a product name or category like rackets or shuttlecocks."}, nil
	}

	return Reply{
		Intent:   intent,
		Message:  fmt.Sprintf("Here are %d products that might fit:", len(matches)),
		Products: matches,
	}, nil
}

var stopWords = map[string]bool{
	"i": true, "a": true, "an": true, "the": true, "for": true, "am": true, "is": true,
	"are": true, "do": true, "you": true, "have": true, "need": true, "want": true,
	"looking": true, "buy": true, "me": true, "much": true, "how": true, "what": true,
	"price": true, "cost": true, "of": true, "to": true, "recommend": true, "some": true,
	"please": true, "show": true, "cheap": true, "expensive": true,
}

// extractSearchTerm keeps the longest non-stop word as the catalog search term.
func extractSearchTerm(message string) string {
	clean := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == ' ' {
			return r
		}
		return ' '
	}, strings.ToLower(message))

	best := ""
	for _, word := range strings.Fields(clean) {
		if stopWords[word] {
			continue
		}
		if len(word) > len(best) {
			best = word
		}
	}
	return best
}
