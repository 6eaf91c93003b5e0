package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Amount is a money value sent either as a JSON number (150.5) or as a string,
// including the Brazilian format ("1.234,56"). Parsing happens in the usecase.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a number or a string")
	}
	*a = Amount(n.String())
	return nil
}

// Ptr returns nil for a missing amount so partial updates leave it untouched.
func (a *Amount) Ptr() *string {
	if a == nil {
		return nil
	}
	s := string(*a)
	return &s
}
