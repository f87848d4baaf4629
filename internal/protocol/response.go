package protocol

import (
	"encoding/xml"
	"fmt"
)

// Namespace is the CAS XML namespace every response element lives in.
const Namespace = "http://www.yale.edu/tp/cas"

// ServiceResponse is the single root element of every CAS 2.0 reply.
// Exactly one of the four children is set.
type ServiceResponse struct {
	XMLName xml.Name `xml:"cas:serviceResponse"`
	Xmlns   string   `xml:"xmlns:cas,attr"`

	Success      *AuthenticationSuccess
	Failure      *AuthenticationFailure
	ProxySuccess *ProxySuccess
	ProxyFailure *ProxyFailure
}

type AuthenticationSuccess struct {
	XMLName             xml.Name `xml:"cas:authenticationSuccess"`
	User                User
	Attributes          *Attributes
	ProxyGrantingTicket string   `xml:"cas:proxyGrantingTicket,omitempty"`
	Proxies             *Proxies
}

type User struct {
	XMLName xml.Name `xml:"cas:user"`
	Login   string   `xml:",chardata"`
}

type AuthenticationFailure struct {
	XMLName xml.Name `xml:"cas:authenticationFailure"`
	Code    string   `xml:"code,attr"`
	Message string   `xml:",chardata"`
}

type ProxySuccess struct {
	XMLName xml.Name `xml:"cas:proxySuccess"`
	Ticket  ProxyTicket
}

type ProxyTicket struct {
	XMLName xml.Name `xml:"cas:proxyTicket"`
	Wire    string   `xml:",chardata"`
}

type ProxyFailure struct {
	XMLName xml.Name `xml:"cas:proxyFailure"`
	Code    string   `xml:"code,attr"`
	Message string   `xml:",chardata"`
}

type Proxies struct {
	XMLName xml.Name `xml:"cas:proxies"`
	Proxies []Proxy
}

type Proxy struct {
	XMLName xml.Name `xml:"cas:proxy"`
	URI     string   `xml:",chardata"`
}

// Attribute is one disclosed key/value pair. Order is the configured
// disclosure order, so attributes are a slice, not a map.
type Attribute struct {
	Key   string
	Value string
}

type Attributes struct {
	Values []Attribute
}

// MarshalXML emits <cas:attributes> with one namespace-prefixed child
// per attribute; element names are dynamic, which rules out struct tags.
func (a *Attributes) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: "cas:attributes"}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	for _, attr := range a.Values {
		el := xml.StartElement{Name: xml.Name{Local: "cas:" + attr.Key}}
		if err := e.EncodeElement(attr.Value, el); err != nil {
			return err
		}
	}

	return e.EncodeToken(start.End())
}

func newResponse() ServiceResponse {
	return ServiceResponse{Xmlns: Namespace}
}

func NewSuccess(login Login, attrs []Attribute, pgtIOU string, proxies []string) ServiceResponse {
	r := newResponse()
	r.Success = &AuthenticationSuccess{
		User:                User{Login: string(login)},
		ProxyGrantingTicket: pgtIOU,
	}
	if len(attrs) > 0 {
		r.Success.Attributes = &Attributes{Values: attrs}
	}
	if len(proxies) > 0 {
		ps := make([]Proxy, 0, len(proxies))
		for _, p := range proxies {
			ps = append(ps, Proxy{URI: p})
		}
		r.Success.Proxies = &Proxies{Proxies: ps}
	}
	return r
}

func NewFailure(code, message string) ServiceResponse {
	r := newResponse()
	r.Failure = &AuthenticationFailure{Code: code, Message: message}
	return r
}

func NewProxySuccess(wire string) ServiceResponse {
	r := newResponse()
	r.ProxySuccess = &ProxySuccess{Ticket: ProxyTicket{Wire: wire}}
	return r
}

func NewProxyFailure(code, message string) ServiceResponse {
	r := newResponse()
	r.ProxyFailure = &ProxyFailure{Code: code, Message: message}
	return r
}

func (r ServiceResponse) Render() ([]byte, error) {
	return xml.Marshal(r)
}

// CAS 1.0 plain-text bodies. The failure form deliberately leaks no
// error detail.
func ValidateSuccess(login Login) string {
	return fmt.Sprintf("yes\n%s\n", login)
}

func ValidateFailure() string {
	return "no\n\n"
}
