// Package replication publishes catalog changes to downstream services as
// JSON messages on Redis queues.
package replication

import (
	"encoding/json"
	"strings"
)

// Source names the service that emitted a message.
type Source string

const (
	SourceAdmin    Source = "API_ADMIN"
	SourceProducts Source = "API_PRODUCTS"
)

// Process names the change a message carries.
type Process string

const (
	ProcessCompanyUpdate     Process = "COMPANY_UPDATE"
	ProcessCompanyDelete     Process = "COMPANY_DELETE"
	ProcessProductTypeUpdate Process = "PRODUCT_TYPE_UPDATE"
	ProcessProductTypeDelete Process = "PRODUCT_TYPE_DELETE"
	ProcessFormulaUpdate     Process = "FORMULA_UPDATE"
	ProcessFormulaDelete     Process = "FORMULA_DELETE"
	ProcessProductUpdate     Process = "PRODUCT_UPDATE"
	ProcessProductDelete     Process = "PRODUCT_DELETE"
)

// IsDelete reports whether the payload is a bare {id}.
func (p Process) IsDelete() bool { return strings.HasSuffix(string(p), "_DELETE") }

// Message is the wire format shared with every consumer. JSONData holds
// the entity document, or {"id": ...} for deletes.
type Message struct {
	Source   Source  `json:"source"`
	Process  Process `json:"process"`
	JSONData string  `json:"jsonData"`
}

// NewMessage serialises payload into a products message.
func NewMessage(process Process, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Source: SourceProducts, Process: process, JSONData: string(data)}, nil
}

// Decode unmarshals JSONData into v.
func (m Message) Decode(v any) error {
	return json.Unmarshal([]byte(m.JSONData), v)
}
