package http

import (
	"bytes"
	"context"
	"encoding/json"

	"admin-console/internal/common/errors"
)

// Send performs req and decodes the envelope's data into T. A missing or null
// data field yields the zero T.
func Send[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var out T
	raw, err := c.Do(ctx, req)
	if err != nil {
		return out, err
	}
	if err := Decode(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

// Fetch is Send returning a Result.
func Fetch[T any](ctx context.Context, c *Client, req Request) Result[T] {
	v, err := Send[T](ctx, c, req)
	if err != nil {
		return Err[T](err)
	}
	return Ok(v)
}

func GetJSON[T any](ctx context.Context, c *Client, url string, params any) (T, error) {
	return Send[T](ctx, c, Request{Method: "GET", URL: url, Params: params})
}

func PostJSON[T any](ctx context.Context, c *Client, url string, data any) (T, error) {
	return Send[T](ctx, c, Request{Method: "POST", URL: url, Data: data})
}

func PutJSON[T any](ctx context.Context, c *Client, url string, data any) (T, error) {
	return Send[T](ctx, c, Request{Method: "PUT", URL: url, Data: data})
}

func DeleteJSON[T any](ctx context.Context, c *Client, url string) (T, error) {
	return Send[T](ctx, c, Request{Method: "DELETE", URL: url})
}

// Decode unmarshals an envelope data field.
func Decode(raw json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return errors.NewInvalidResponseError(err.Error())
	}
	return nil
}
