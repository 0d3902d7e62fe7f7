package paystack

import (
	"encoding/json"
	"fmt"
)

const EventChargeSuccess = "charge.success"

// Event is the body Paystack posts to the webhook URL.
type Event struct {
	Event string       `json:"event"`
	Data  VerifyResult `json:"data"`
}

func ParseEvent(body []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("paystack: decode event: %w", err)
	}
	return &ev, nil
}
