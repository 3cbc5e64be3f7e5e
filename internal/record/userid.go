package record

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UserID accepts either a JSON string or a JSON number. The activity logs
// write user ids as strings ("39") but other exports use bare numbers.
type UserID string

// UnmarshalJSON implements json.Unmarshaler.
func (u *UserID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*u = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*u = UserID(s)
		return nil
	}

	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("userId: want string or number, got %s", string(b))
	}
	*u = UserID(n.String())
	return nil
}
