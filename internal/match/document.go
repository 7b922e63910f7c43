package match

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DocumentKind identifies the role a document plays in a 3-way match.
type DocumentKind string

const (
	KindPurchaseOrder     DocumentKind = "purchase_order"
	KindBillOfLading      DocumentKind = "bill_of_lading"
	KindPackingList       DocumentKind = "packing_list"
	KindCommercialInvoice DocumentKind = "commercial_invoice"
)

func ParseDocumentKind(s string) (DocumentKind, error) {
	switch DocumentKind(s) {
	case KindPurchaseOrder, KindBillOfLading, KindPackingList, KindCommercialInvoice:
		return DocumentKind(s), nil
	}
	return "", fmt.Errorf("unknown document kind %q", s)
}

// PartyName accepts either a bare string or an object with a "name" field,
// which is how upstream extraction payloads encode parties.
type PartyName string

func (p *PartyName) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PartyName(s)
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*p = PartyName(obj.Name)
	return nil
}

// LineItem is one extracted line of a PO or invoice.
type LineItem struct {
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
	Total       *float64 `json:"total"`
}

// Document is the structured record the extraction collaborator produces for
// one logistics document. Only the fields the match engine consumes are
// declared; the rest of the payload is ignored.
type Document struct {
	Supplier         PartyName  `json:"supplier"`
	Seller           PartyName  `json:"seller"`
	TotalAmount      *float64   `json:"total_amount"`
	LineItems        []LineItem `json:"line_items"`
	GrossWeight      *float64   `json:"gross_weight"`
	TotalGrossWeight *float64   `json:"total_gross_weight"`
	WeightUnit       string     `json:"weight_unit"`
	InvoiceNumber    string     `json:"invoice_number"`
	PONumber         string     `json:"po_number"`
	BOLNumber        string     `json:"bol_number"`
}
