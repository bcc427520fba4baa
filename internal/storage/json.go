package storage

import (
	"encoding/json"
	"fmt"
)

func encodePeriods(periods []ChargingPeriod) (string, error) {
	if periods == nil {
		periods = []ChargingPeriod{}
	}
	b, err := json.Marshal(periods)
	if err != nil {
		return "", fmt.Errorf("storage: encode periods: %w", err)
	}
	return string(b), nil
}

func decodePeriods(raw string, out *[]ChargingPeriod) error {
	if raw == "" {
		*out = nil
		return nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("storage: decode periods: %w", err)
	}
	return nil
}
