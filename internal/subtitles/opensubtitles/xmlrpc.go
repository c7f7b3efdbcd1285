package opensubtitles

import (
	"errors"
	"fmt"
	"io"

	"github.com/kolo/xmlrpc"
)

// Fault is an XML-RPC fault response.
type Fault struct {
	Code    int
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("xml-rpc fault %d: %s", f.Code, f.Message)
}

// encodeCall renders a methodCall document. Maps become structs and slices
// become arrays.
func encodeCall(method string, params ...any) ([]byte, error) {
	return xmlrpc.EncodeMethodCall(method, params...)
}

// decodeResponse reads a methodResponse into dynamic values: structs decode
// to map[string]any, arrays to []any and integers to int64. A fault document
// becomes a *Fault.
func decodeResponse(r io.Reader) (any, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	resp := xmlrpc.Response(body)
	if err := resp.Err(); err != nil {
		var fault xmlrpc.FaultError
		if errors.As(err, &fault) {
			return nil, &Fault{Code: fault.Code, Message: fault.String}
		}
		return nil, fmt.Errorf("decode fault: %w", err)
	}
	var result any
	if err := resp.Unmarshal(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}
