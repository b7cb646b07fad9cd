package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// PostID - opaque post identifier
// Stores assign either numeric (bigserial) or string (uuid, ObjectID) identifiers, so PostID accepts both
// and always keeps the textual form
type PostID string

// String - returns the textual form of the ID
func (id PostID) String() string {
	return string(id)
}

// Scan - function to scan value from sql row's field
func (id *PostID) Scan(value interface{}) error {
	switch v := value.(type) {
	case int64:
		*id = PostID(strconv.FormatInt(v, 10))
	case string:
		*id = PostID(v)
	case []byte:
		*id = PostID(v)
	case nil:
		return fmt.Errorf("models: can not scan NULL into PostID")
	default:
		return fmt.Errorf("models: unsupported PostID source type %T", value)
	}
	return nil
}

// MarshalJSON - PostID is always sent as json string
func (id PostID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

// UnmarshalJSON - accepts json number or json string
func (id *PostID) UnmarshalJSON(b []byte) error {
	var x interface{}
	decoder := json.NewDecoder(bytes.NewReader(b))
	decoder.UseNumber()
	if err := decoder.Decode(&x); err != nil {
		return err
	}
	switch s := x.(type) {
	case json.Number:
		*id = PostID(s.String())
	case string:
		*id = PostID(s)
	default:
		return fmt.Errorf("models: unsupported json value for PostID: %s", string(b))
	}

	return nil
}
