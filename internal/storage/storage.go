// Package storage provides the durable key-value backends the cart store
// persists through. Every backend serializes the full line sequence as JSON
// under a single fixed key and round-trips it losslessly.
package storage

import (
	"encoding/json"
	"fmt"

	"github.com/angelmondragon/miniapp-storefront/internal/cart"
)

const keyNamespace = "minishop"

func encodeLines(lines []cart.Line) ([]byte, error) {
	if lines == nil {
		lines = []cart.Line{}
	}
	payload, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("encoding cart: %w", err)
	}
	return payload, nil
}

func decodeLines(payload []byte) ([]cart.Line, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	var lines []cart.Line
	if err := json.Unmarshal(payload, &lines); err != nil {
		return nil, fmt.Errorf("decoding cart: %w", err)
	}
	return lines, nil
}
