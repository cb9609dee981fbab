package shop

import (
	"context"
	"strings"

	pkgerrors "github.com/angelmondragon/miniapp-storefront/pkg/errors"
)

// Canned assistant replies keyed by topic keywords.
var assistantRules = []struct {
	keywords []string
	reply    string
}{
	{
		keywords: []string{"ship", "delivery", "deliver"},
		reply:    "We ship worldwide. Standard delivery takes 5-7 business days, express takes 2-3.",
	},
	{
		keywords: []string{"return", "refund", "exchange"},
		reply:    "You can return any unworn item within 30 days for a full refund.",
	},
	{
		keywords: []string{"size", "sizing", "fit"},
		reply:    "Our pieces run true to size. Check the size guide on each product page for measurements.",
	},
	{
		keywords: []string{"pay", "payment", "card"},
		reply:    "We accept all major cards. Payment is handled on a secure checkout page after you tap Pay.",
	},
	{
		keywords: []string{"hi", "hello", "hey"},
		reply:    "Hi! Ask me about shipping, returns, sizing or payments.",
	},
}

const assistantDefaultReply = "I can help with shipping, returns, sizing and payments. What would you like to know?"

// Reply answers a shopper's question with a canned topical response.
func (s *service) Reply(ctx context.Context, message string) (string, error) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}

	lowered := strings.ToLower(trimmed)
	for _, rule := range assistantRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.reply, nil
			}
		}
	}
	return assistantDefaultReply, nil
}
