package trade

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"stockpro/internal/core/id"
	"stockpro/internal/domain/inference"
)

// SupplierRef is the slice of supplier catalog data assembly needs.
type SupplierRef struct {
	ID      id.ID
	Name    string
	CNPJ    string
	Address string
	FDA     string
}

// ItemRef is the slice of item catalog data assembly needs.
type ItemRef struct {
	ID               id.ID
	SupplierID       id.ID
	Code             string
	Name             string
	NameEn           string
	NCM              string
	Quantity         int64
	CostPrice        decimal.Decimal
	PackageType      string
	UnitsPerPackage  int
	UnitMeasureValue decimal.Decimal
	UnitMeasureType  string
}

// SourceItem is a flat operation line: an item snapshot plus the
// quantity and price chosen for this operation. HasOperationQuantity
// distinguishes manual/simulation lines from plain stock snapshots.
type SourceItem struct {
	ItemRef
	OperationQuantity    int64
	OperationPrice       decimal.Decimal
	HasOperationQuantity bool
	QtyUnit              string
}

// NfeSupplier and NfeProduct mirror the payload of the XML extraction
// backend, one NfeExtract per attached fiscal note.
type NfeSupplier struct {
	Nome string `json:"nome"`
	CNPJ string `json:"cnpj"`
}

type NfeInvoice struct {
	Numero      string          `json:"numero"`
	PesoLiquido decimal.Decimal `json:"pesoLiquido"`
	PesoBruto   decimal.Decimal `json:"pesoBruto"`
}

type NfeProduct struct {
	ItemID           *id.ID          `json:"itemId,omitempty"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	NameEn           string          `json:"nameEn"`
	NCM              string          `json:"ncm"`
	Quantity         int64           `json:"quantity"`
	CostPrice        decimal.Decimal `json:"costPrice"`
	SalePrice        decimal.Decimal `json:"salePrice"`
	PackageType      string          `json:"packageType"`
	UnitsPerPackage  int             `json:"unitsPerPackage"`
	UnitMeasureValue decimal.Decimal `json:"unitMeasureValue"`
	UnitMeasureType  string          `json:"unitMeasureType"`
}

type NfeExtract struct {
	Fornecedor NfeSupplier  `json:"fornecedor"`
	NotaFiscal NfeInvoice   `json:"notaFiscal"`
	Produtos   []NfeProduct `json:"produtos"`
}

// Source carries everything assembly may draw from, in provenance
// priority order: saved supplier groups, import lineage, flat items.
type Source struct {
	OperationID   id.ID
	OperationType string

	Saved []SupplierGroup // non-empty means "already edited", wins outright

	NfeData []NfeExtract // import lineage

	Items []SourceItem // manual fallback

	Costs        []CostLine
	PtaxRate     decimal.Decimal
	Distribution Distribution

	ManualNetWeight   *decimal.Decimal
	ManualGrossWeight *decimal.Decimal

	InvoiceNumber string
	InvoiceDate   string
	Header        map[string]string
}

var nonDigits = regexp.MustCompile(`\D`)

// NormalizeCNPJ strips everything but digits; suppliers are matched by
// this form.
func NormalizeCNPJ(cnpj string) string {
	return nonDigits.ReplaceAllString(cnpj, "")
}

func normalizeNCM(ncm string) string {
	return nonDigits.ReplaceAllString(ncm, "")
}

// Assemble builds the editable document from one of three provenances,
// in strict priority order:
//
//  1. saved state, used verbatim and never recomputed over;
//  2. import lineage, one supplier group per extracted XML, suppliers
//     resolved by CNPJ and products enriched from the catalog by NCM;
//  3. manual fallback, flat operation items grouped by supplier.
func Assemble(src Source, suppliers []SupplierRef, items []ItemRef) *Document {
	doc := &Document{
		OperationID:       src.OperationID,
		OperationType:     src.OperationType,
		Costs:             src.Costs,
		PtaxRate:          src.PtaxRate,
		Distribution:      src.Distribution,
		ManualNetWeight:   src.ManualNetWeight,
		ManualGrossWeight: src.ManualGrossWeight,
		InvoiceNumber:     src.InvoiceNumber,
		InvoiceDate:       src.InvoiceDate,
		Header:            src.Header,
	}

	switch {
	case len(src.Saved) > 0:
		doc.Suppliers = src.Saved
	case strings.EqualFold(src.OperationType, TypeImport) && len(src.NfeData) > 0:
		doc.Suppliers = assembleFromNfe(doc, src.NfeData, suppliers, items)
	default:
		doc.Suppliers = assembleFromItems(src, suppliers)
	}
	return doc
}

func assembleFromNfe(doc *Document, extracts []NfeExtract, suppliers []SupplierRef, items []ItemRef) []SupplierGroup {
	groups := make([]SupplierGroup, 0, len(extracts))
	for _, ex := range extracts {
		group := SupplierGroup{}

		if ref := findSupplierByCNPJ(suppliers, ex.Fornecedor.CNPJ); ref != nil {
			sid := ref.ID
			group.SupplierID = &sid
			group.Info = supplierHeader(*ref)
		} else {
			group.Info = unregisteredHeader(ex.Fornecedor)
		}

		doc.NfeNetWeight = doc.NfeNetWeight.Add(ex.NotaFiscal.PesoLiquido)
		doc.NfeGrossWeight = doc.NfeGrossWeight.Add(ex.NotaFiscal.PesoBruto)

		for _, prod := range ex.Produtos {
			group.Items = append(group.Items, nfeLineItem(prod, group.SupplierID, items))
		}
		groups = append(groups, group)
	}
	return groups
}

func nfeLineItem(prod NfeProduct, supplierID *id.ID, items []ItemRef) LineItem {
	line := LineItem{
		Code:   prod.Code,
		Qty:    prod.Quantity,
		NCM:    prod.NCM,
		Desc:   prod.Name,
		NameEn: prod.NameEn,
		Price:  prod.CostPrice.Round(2),
		UM:     packageUM(prod.PackageType),
	}

	// Resolve the catalog item: explicit id first, then code within
	// the supplier, then NCM with separators stripped.
	ref := findItem(items, prod, supplierID)
	if ref != nil {
		line.ItemID = ref.ID
		if line.NameEn == "" {
			line.NameEn = ref.NameEn
		}
		if line.Desc == "" {
			line.Desc = ref.Name
		}
	}

	pkg := extractPackaging(prod, ref)
	line.QtyUnit = pkg.QtyUnitString()
	line.QtyKg = inference.QuantityToKilograms(line.QtyUnit, line.Qty).Round(2)
	return line
}

// extractPackaging prefers the extract's own fields, then the catalog
// item's, then description inference.
func extractPackaging(prod NfeProduct, ref *ItemRef) inference.Packaging {
	explicit := &inference.Packaging{
		UnitsPerPackage:  prod.UnitsPerPackage,
		UnitMeasureValue: prod.UnitMeasureValue,
		UnitMeasureType:  prod.UnitMeasureType,
	}
	if explicit.Valid() {
		return inference.InferPackaging("", explicit)
	}
	if ref != nil {
		fromCatalog := &inference.Packaging{
			UnitsPerPackage:  ref.UnitsPerPackage,
			UnitMeasureValue: ref.UnitMeasureValue,
			UnitMeasureType:  ref.UnitMeasureType,
		}
		if fromCatalog.Valid() {
			return inference.InferPackaging("", fromCatalog)
		}
	}
	return inference.InferPackaging(prod.Name, nil)
}

func assembleFromItems(src Source, suppliers []SupplierRef) []SupplierGroup {
	packageQty := UsesPackageQuantities(src.OperationType)

	// Group by supplier preserving first-seen order.
	order := make([]id.ID, 0)
	bySupplier := make(map[id.ID][]LineItem)

	for _, it := range src.Items {
		qty, price := it.Quantity, it.CostPrice
		if it.HasOperationQuantity {
			qty, price = it.OperationQuantity, it.OperationPrice
		}

		packages := qty
		if !packageQty && it.UnitsPerPackage > 1 {
			packages = qty / int64(it.UnitsPerPackage)
		}

		qtyUnit := it.QtyUnit
		if qtyUnit == "" {
			pkg := inference.InferPackaging(it.Name, &inference.Packaging{
				UnitsPerPackage:  it.UnitsPerPackage,
				UnitMeasureValue: it.UnitMeasureValue,
				UnitMeasureType:  it.UnitMeasureType,
			})
			qtyUnit = pkg.QtyUnitString()
		}

		line := LineItem{
			ItemID:  it.ID,
			Code:    it.Code,
			Qty:     packages,
			NCM:     it.NCM,
			Desc:    it.Name,
			NameEn:  it.NameEn,
			Price:   price.Round(2),
			QtyUnit: qtyUnit,
			QtyKg:   inference.QuantityToKilograms(qtyUnit, packages).Round(2),
			UM:      packageUM(it.PackageType),
		}

		if _, seen := bySupplier[it.SupplierID]; !seen {
			order = append(order, it.SupplierID)
		}
		bySupplier[it.SupplierID] = append(bySupplier[it.SupplierID], line)
	}

	groups := make([]SupplierGroup, 0, len(order))
	for _, sid := range order {
		group := SupplierGroup{Items: bySupplier[sid]}
		if ref := findSupplierByID(suppliers, sid); ref != nil {
			s := sid
			group.SupplierID = &s
			group.Info = supplierHeader(*ref)
		} else {
			group.Info = "FORNECEDOR DESCONHECIDO (Não cadastrado)"
		}
		groups = append(groups, group)
	}
	return groups
}

// supplierHeader renders the registered-supplier header line:
// "FDA#<fda|N/A> NAME, ADDRESS", uppercased.
func supplierHeader(s SupplierRef) string {
	fda := s.FDA
	if fda == "" {
		fda = "N/A"
	}
	return strings.ToUpper(fmt.Sprintf("FDA#%s %s, %s", fda, s.Name, s.Address))
}

func unregisteredHeader(s NfeSupplier) string {
	return strings.ToUpper(fmt.Sprintf("%s, CNPJ: %s", s.Nome, s.CNPJ)) + " (Não cadastrado)"
}

func packageUM(packageType string) string {
	switch strings.ToLower(packageType) {
	case "fardo":
		return "FD"
	case "unidade":
		return "UN"
	default:
		return "CX"
	}
}

func findSupplierByCNPJ(suppliers []SupplierRef, cnpj string) *SupplierRef {
	want := NormalizeCNPJ(cnpj)
	if want == "" {
		return nil
	}
	for i := range suppliers {
		if NormalizeCNPJ(suppliers[i].CNPJ) == want {
			return &suppliers[i]
		}
	}
	return nil
}

func findSupplierByID(suppliers []SupplierRef, sid id.ID) *SupplierRef {
	for i := range suppliers {
		if suppliers[i].ID == sid {
			return &suppliers[i]
		}
	}
	return nil
}

func findItem(items []ItemRef, prod NfeProduct, supplierID *id.ID) *ItemRef {
	if prod.ItemID != nil {
		for i := range items {
			if items[i].ID == *prod.ItemID {
				return &items[i]
			}
		}
	}
	if prod.Code != "" && supplierID != nil {
		for i := range items {
			if items[i].Code == prod.Code && items[i].SupplierID == *supplierID {
				return &items[i]
			}
		}
	}
	want := normalizeNCM(prod.NCM)
	if want == "" {
		return nil
	}
	for i := range items {
		if normalizeNCM(items[i].NCM) == want {
			return &items[i]
		}
	}
	return nil
}
