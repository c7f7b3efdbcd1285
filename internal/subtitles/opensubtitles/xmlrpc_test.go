package opensubtitles

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeCall(t *testing.T) {
	body, err := encodeCall("SearchSubtitles", "tok&en", []map[string]any{
		{"sublanguageid": "eng", "season": 1, "moviebytesize": "150000"},
	})
	if err != nil {
		t.Fatalf("encodeCall returned error: %v", err)
	}
	got := string(body)
	for _, fragment := range []string{
		"<methodName>SearchSubtitles</methodName>",
		"<value><string>tok&amp;en</string></value>",
		"<array><data><value><struct>",
		"<member><name>moviebytesize</name><value><string>150000</string></value></member>",
		"<member><name>season</name><value><int>1</int></value></member>",
		"<member><name>sublanguageid</name><value><string>eng</string></value></member>",
	} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("expected %q in %s", fragment, got)
		}
	}
}

func TestEncodeCallRejectsUnsupportedTypes(t *testing.T) {
	if _, err := encodeCall("LogIn", make(chan int)); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}

func TestDecodeResponse(t *testing.T) {
	doc := `<?xml version="1.0"?>
<methodResponse><params><param><value><struct>
  <member><name>status</name><value><string>200 OK</string></value></member>
  <member><name>seconds</name><value><double>0.12</double></value></member>
  <member><name>count</name><value><i4>2</i4></value></member>
  <member><name>flag</name><value><boolean>1</boolean></value></member>
  <member><name>empty</name><value><string></string></value></member>
  <member><name>data</name><value><array><data>
    <value><struct><member><name>MatchedBy</name><value><string>moviehash</string></value></member></struct></value>
  </data></array></value></member>
</struct></value></param></params></methodResponse>`

	result, err := decodeResponse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("decodeResponse returned error: %v", err)
	}
	m, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("expected struct, got %T", result)
	}
	if m["status"] != "200 OK" || m["count"] != int64(2) || m["flag"] != true || m["seconds"] != 0.12 {
		t.Fatalf("unexpected scalars: %#v", m)
	}
	if s, _ := m["empty"].(string); s != "" {
		t.Fatalf("unexpected empty string: %#v", m["empty"])
	}
	data, ok := m["data"].([]any)
	if !ok || len(data) != 1 {
		t.Fatalf("unexpected data: %#v", m["data"])
	}
	if rec := data[0].(map[string]any); rec["MatchedBy"] != "moviehash" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestDecodeResponseNoResults(t *testing.T) {
	doc := `<methodResponse><params><param><value><struct>
<member><name>status</name><value><string>200 OK</string></value></member>
<member><name>data</name><value><boolean>0</boolean></value></member>
</struct></value></param></params></methodResponse>`
	result, err := decodeResponse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("decodeResponse returned error: %v", err)
	}
	if data := result.(map[string]any)["data"]; data != false {
		t.Fatalf("expected data=false, got %#v", data)
	}
}

func TestDecodeResponseFault(t *testing.T) {
	doc := `<methodResponse><fault><value><struct>
<member><name>faultCode</name><value><int>401</int></value></member>
<member><name>faultString</name><value><string>Unauthorized</string></value></member>
</struct></value></fault></methodResponse>`
	_, err := decodeResponse(strings.NewReader(doc))
	var fault *Fault
	if !errors.As(err, &fault) {
		t.Fatalf("expected fault, got %v", err)
	}
	if fault.Code != 401 || fault.Message != "Unauthorized" {
		t.Fatalf("unexpected fault: %+v", fault)
	}
	if IsRetriable(err) {
		t.Fatal("faults must not be retried")
	}
}

func TestDecodeResponseMalformed(t *testing.T) {
	if _, err := decodeResponse(strings.NewReader("<html>oops</html>")); err == nil {
		t.Fatal("expected error for non xml-rpc document")
	}
	if _, err := decodeResponse(strings.NewReader(`<methodResponse><params><param><value><int>x</int></value></param></params></methodResponse>`)); err == nil {
		t.Fatal("expected error for bad int")
	}
}
