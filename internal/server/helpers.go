package server

import (
	"encoding/xml"
	"fmt"
	"net/http"
)

// EncodeXML writes a CAS XML response body. CAS clients parse the
// fragment directly, so no XML declaration is emitted.
func EncodeXML(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(status)

	raw, err := xml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode xml: %w", err)
	}

	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("write xml: %w", err)
	}
	return nil
}

// EncodeText writes a CAS 1.0 plain-text body verbatim.
func EncodeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
