package services

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

type call struct {
	method string
	path   string
	params url.Values
	body   map[string]any
}

// fakeTransport answers requests from canned replies keyed by
// "METHOD path" and records every call.
type fakeTransport struct {
	calls   []call
	replies map[string]json.RawMessage
	errs    map[string]error
	onCall  func(c call)

	token string
}

func newFake() *fakeTransport {
	return &fakeTransport{replies: map[string]json.RawMessage{}, errs: map[string]error{}}
}

func (f *fakeTransport) reply(method, path string, raw json.RawMessage) {
	f.replies[method+" "+path] = raw
}

func (f *fakeTransport) fail(method, path string, err error) {
	f.errs[method+" "+path] = err
}

func (f *fakeTransport) do(method, path string, params url.Values, body any) (json.RawMessage, error) {
	c := call{method: method, path: path, params: params}
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		c.body = map[string]any{}
		if err := json.Unmarshal(b, &c.body); err != nil {
			return nil, err
		}
	}
	f.calls = append(f.calls, c)
	if f.onCall != nil {
		f.onCall(c)
	}
	key := method + " " + path
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if raw, ok := f.replies[key]; ok {
		return raw, nil
	}
	return json.RawMessage("null"), nil
}

func (f *fakeTransport) Get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	return f.do("GET", path, params, nil)
}

func (f *fakeTransport) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return f.do("POST", path, nil, body)
}

func (f *fakeTransport) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return f.do("DELETE", path, nil, nil)
}

func (f *fakeTransport) SessionToken() string         { return f.token }
func (f *fakeTransport) SetSessionToken(token string) { f.token = token }
func (f *fakeTransport) ClearSession()                { f.token = "" }

func (f *fakeTransport) last(t *testing.T) call {
	t.Helper()
	require.NotEmpty(t, f.calls, "no request was made")
	return f.calls[len(f.calls)-1]
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func studyJSON(t *testing.T, version int, status string) json.RawMessage {
	t.Helper()
	return mustJSON(t, map[string]any{
		"id":        "s1",
		"version":   version,
		"timeAdded": "2024-01-02T03:04:05Z",
		"name":      "ALS",
		"status":    status,
		"annotationTypes": []any{
			map[string]any{
				"uniqueId":  "at1",
				"name":      "Gender",
				"valueType": "singleSelect",
				"options":   []string{"female", "male"},
				"required":  true,
			},
		},
	})
}

func participantJSON(t *testing.T, version int, uniqueID string, annotations []any) json.RawMessage {
	t.Helper()
	if annotations == nil {
		annotations = []any{}
	}
	return mustJSON(t, map[string]any{
		"id":          "p1",
		"version":     version,
		"timeAdded":   "2024-01-02T03:04:05Z",
		"studyId":     "s1",
		"uniqueId":    uniqueID,
		"annotations": annotations,
	})
}

func centreJSON(t *testing.T, version int, status string) json.RawMessage {
	t.Helper()
	return mustJSON(t, map[string]any{
		"id":        "c1",
		"version":   version,
		"timeAdded": "2024-01-02T03:04:05Z",
		"name":      "CBSR",
		"status":    status,
		"studyIds":  []string{"s1"},
		"locations": []any{
			map[string]any{
				"uniqueId":       "l1",
				"name":           "Main",
				"street":         "1 Main St",
				"city":           "Edmonton",
				"province":       "AB",
				"postalCode":     "T6G",
				"countryIsoCode": "CA",
			},
		},
	})
}

func shipmentJSON(t *testing.T, version int, state string) json.RawMessage {
	t.Helper()
	return mustJSON(t, map[string]any{
		"id":               "sh1",
		"version":          version,
		"timeAdded":        "2024-01-02T03:04:05Z",
		"state":            state,
		"courierName":      "FedEx",
		"trackingNumber":   "TN-1",
		"fromLocationInfo": map[string]any{"locationId": "l1", "name": "Main"},
		"toLocationInfo":   map[string]any{"locationId": "l2", "name": "Lab"},
	})
}

func userJSON(t *testing.T, version int, status string) json.RawMessage {
	t.Helper()
	return mustJSON(t, map[string]any{
		"id":        "u1",
		"version":   version,
		"timeAdded": "2024-01-02T03:04:05Z",
		"name":      "Ann",
		"email":     "ann@example.com",
		"status":    status,
	})
}
