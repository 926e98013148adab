package trade

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/id"
	"stockpro/internal/domain/inference"
)

// PathKind classifies a parsed field path by the part of the document
// it addresses.
type PathKind int

const (
	PathRoot PathKind = iota
	PathHeader
	PathSupplierInfo
	PathItemField
	PathCostField
)

// FieldPath is a validated address of one editable document field, the
// typed form of the dotted paths the renderers attach to fields
// ("suppliers.0.items.2.price"). Invalid paths are rejected at parse
// time, so Resolve/assignment never walks blind.
type FieldPath struct {
	Kind     PathKind
	Supplier int
	Item     int
	Cost     int
	Field    string
}

// numericFields are leaf fields parsed with the Brazilian-number
// convention before assignment; everything else is stored as raw text.
var numericFields = map[string]bool{
	"qty":               true,
	"price":             true,
	"value":             true,
	"totalPackages":     true,
	"manualGrossWeight": true,
	"manualNetWeight":   true,
	"qty_kg":            true,
}

var (
	invoiceDatePattern   = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`)
	invoiceNumberPattern = regexp.MustCompile(`^\d+$`)
	qtyUnitEditPattern   = regexp.MustCompile(`(?i)^\d+X\d+(G|GR|KG|L|ML)$`)
)

// ParsePath parses a dotted field path. Recognized shapes:
//
//	<rootField>
//	header.<key>
//	suppliers.<i>.info
//	suppliers.<i>.items.<j>.<field>
//	costs.<i>.<field>
func ParsePath(s string) (FieldPath, error) {
	parts := strings.Split(s, ".")
	switch {
	case len(parts) == 1 && parts[0] != "":
		return FieldPath{Kind: PathRoot, Field: parts[0]}, nil

	case len(parts) == 2 && parts[0] == "header":
		return FieldPath{Kind: PathHeader, Field: parts[1]}, nil

	case len(parts) == 3 && parts[0] == "suppliers" && parts[2] == "info":
		i, err := pathIndex(parts[1])
		if err != nil {
			return FieldPath{}, err
		}
		return FieldPath{Kind: PathSupplierInfo, Supplier: i}, nil

	case len(parts) == 5 && parts[0] == "suppliers" && parts[2] == "items":
		i, err := pathIndex(parts[1])
		if err != nil {
			return FieldPath{}, err
		}
		j, err := pathIndex(parts[3])
		if err != nil {
			return FieldPath{}, err
		}
		return FieldPath{Kind: PathItemField, Supplier: i, Item: j, Field: parts[4]}, nil

	case len(parts) == 3 && parts[0] == "costs":
		i, err := pathIndex(parts[1])
		if err != nil {
			return FieldPath{}, err
		}
		return FieldPath{Kind: PathCostField, Cost: i, Field: parts[2]}, nil
	}
	return FieldPath{}, apperror.NewValidation(fmt.Sprintf("unrecognized field path %q", s))
}

func pathIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, apperror.NewValidation(fmt.Sprintf("invalid path index %q", s))
	}
	return i, nil
}

// InvoiceNumberChecker answers whether an invoice number is already
// used by a different operation.
type InvoiceNumberChecker interface {
	InvoiceNumberTaken(ctx context.Context, number string, exclude id.ID) (bool, error)
}

// Editor commits in-place document edits. Field-specific gates run
// before the generic assignment and reject the edit outright; a
// rejected edit leaves the document untouched so the caller can
// re-render the prior state.
type Editor struct {
	numbers InvoiceNumberChecker
}

func NewEditor(numbers InvoiceNumberChecker) *Editor {
	return &Editor{numbers: numbers}
}

// Apply resolves path on doc and assigns raw to the leaf, after the
// validation gates. The caller regenerates the full preview afterwards;
// nothing here patches derived fields besides the qty_unit → qty_kg
// recomputation required by the edit itself.
func (e *Editor) Apply(ctx context.Context, doc *Document, rawPath, raw string) error {
	path, err := ParsePath(rawPath)
	if err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)

	switch path.Kind {
	case PathRoot:
		return e.applyRoot(ctx, doc, path.Field, raw)
	case PathHeader:
		if doc.Header == nil {
			doc.Header = make(map[string]string)
		}
		doc.Header[path.Field] = raw
		return nil
	case PathSupplierInfo:
		group, err := supplierAt(doc, path.Supplier)
		if err != nil {
			return err
		}
		group.Info = raw
		return nil
	case PathItemField:
		return applyItemField(doc, path, raw)
	case PathCostField:
		return applyCostField(doc, path, raw)
	}
	return apperror.NewValidation("unrecognized field path")
}

func (e *Editor) applyRoot(ctx context.Context, doc *Document, field, raw string) error {
	switch field {
	case "invoiceDate":
		iso, err := parseInvoiceDate(raw)
		if err != nil {
			return err
		}
		doc.InvoiceDate = iso
		return nil

	case "invoiceNumber":
		if !invoiceNumberPattern.MatchString(raw) {
			return apperror.NewValidation("invoice number must contain digits only")
		}
		if e.numbers != nil {
			taken, err := e.numbers.InvoiceNumberTaken(ctx, raw, doc.OperationID)
			if err != nil {
				return err
			}
			if taken {
				return apperror.NewDuplicate("operation", "invoiceNumber", raw)
			}
		}
		doc.InvoiceNumber = raw
		return nil

	case "manualNetWeight":
		v := decimalFromRaw(raw)
		doc.ManualNetWeight = &v
		return nil

	case "manualGrossWeight":
		v := decimalFromRaw(raw)
		doc.ManualGrossWeight = &v
		return nil
	}

	// Remaining root fields are free-form header text.
	if doc.Header == nil {
		doc.Header = make(map[string]string)
	}
	doc.Header[field] = raw
	return nil
}

func applyItemField(doc *Document, path FieldPath, raw string) error {
	group, err := supplierAt(doc, path.Supplier)
	if err != nil {
		return err
	}
	if path.Item >= len(group.Items) {
		return apperror.NewValidation(fmt.Sprintf("line item index %d out of range", path.Item))
	}
	item := &group.Items[path.Item]

	switch path.Field {
	case "qty_unit":
		if !qtyUnitEditPattern.MatchString(raw) {
			return apperror.NewValidation("package format must be like 12X400G (units: G, GR, KG, L, ML)")
		}
		item.QtyUnit = strings.ToUpper(raw)
		if !item.ManualWeight {
			item.QtyKg = inference.QuantityToKilograms(item.QtyUnit, item.Qty).Round(2)
		}
		return nil

	case "qty":
		item.Qty = int64(inference.ParseBrazilianNumber(raw))
		if !item.ManualWeight {
			item.QtyKg = inference.QuantityToKilograms(item.QtyUnit, item.Qty).Round(2)
		}
		return nil
	case "price":
		item.Price = decimalFromRaw(raw)
		return nil
	case "value":
		item.Value = decimalFromRaw(raw)
		return nil
	case "totalPackages":
		item.TotalPackages = int64(inference.ParseBrazilianNumber(raw))
		return nil
	case "qty_kg":
		item.QtyKg = decimalFromRaw(raw)
		item.ManualWeight = true
		return nil

	case "code":
		item.Code = raw
	case "ncm":
		item.NCM = raw
	case "desc":
		item.Desc = raw
	case "nameEn":
		item.NameEn = raw
	case "um":
		item.UM = raw
	default:
		return apperror.NewValidation(fmt.Sprintf("unknown line item field %q", path.Field))
	}
	return nil
}

func applyCostField(doc *Document, path FieldPath, raw string) error {
	if path.Cost >= len(doc.Costs) {
		return apperror.NewValidation(fmt.Sprintf("cost line index %d out of range", path.Cost))
	}
	cost := &doc.Costs[path.Cost]
	switch path.Field {
	case "description":
		cost.Description = raw
	case "value":
		cost.Value = decimalFromRaw(raw)
	default:
		return apperror.NewValidation(fmt.Sprintf("unknown cost field %q", path.Field))
	}
	return nil
}

func supplierAt(doc *Document, i int) (*SupplierGroup, error) {
	if i >= len(doc.Suppliers) {
		return nil, apperror.NewValidation(fmt.Sprintf("supplier index %d out of range", i))
	}
	return &doc.Suppliers[i], nil
}

// parseInvoiceDate validates a DD-MM-YYYY input and returns the ISO
// form. Calendar validity is checked by round-tripping through
// time.Date and comparing components, which catches Feb 30 and friends.
func parseInvoiceDate(raw string) (string, error) {
	m := invoiceDatePattern.FindStringSubmatch(raw)
	if m == nil {
		return "", apperror.NewValidation("invoice date must be in DD-MM-YYYY format")
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return "", apperror.NewValidation(fmt.Sprintf("%s is not a valid calendar date", raw))
	}
	return t.Format("2006-01-02"), nil
}

// DisplayInvoiceDate renders a stored ISO date in the long-month
// English form used on printed documents ("March 15, 2024"). Unparsable
// input is returned as-is.
func DisplayInvoiceDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("January 2, 2006")
}

func decimalFromRaw(raw string) decimal.Decimal {
	return decimal.NewFromFloat(inference.ParseBrazilianNumber(raw))
}
