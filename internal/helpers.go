package internal

import "strconv"

// ContextValue returns the value stored under key, or T's zero value.
func ContextValue[T any](c Context, key any) T {
	if v, ok := c.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

// ParamID parses the URL parameter name as a positive int64. Anything else
// is a 404, since such a path cannot address a record.
func ParamID(c Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrNotFound("").WithCause(err)
	}
	return id, nil
}

// FieldIDs parses every value of the repeated form field name, skipping
// entries that are not positive integers.
func FieldIDs(c Context, name string) []int64 {
	raw := c.Fields(name)
	ids := make([]int64, 0, len(raw))
	for _, v := range raw {
		id, err := strconv.ParseInt(v, 10, 64)
		if err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
