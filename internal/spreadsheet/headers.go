package spreadsheet

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type field int

const (
	fieldID field = iota
	fieldName
	fieldCategory
	fieldDescription
	fieldBrand
	fieldCostPrice
	fieldSalePrice
	fieldStock
	fieldMinStock
	fieldBarcode
	fieldImage
	fieldActive
)

// canonicalHeaders is the header row written on export, in column order.
var canonicalHeaders = []struct {
	field field
	title string
}{
	{fieldID, "ID"},
	{fieldName, "Nome"},
	{fieldCategory, "Categoria"},
	{fieldDescription, "Descricao"},
	{fieldBrand, "Marca"},
	{fieldCostPrice, "Preco_Custo"},
	{fieldSalePrice, "Preco_Venda"},
	{fieldStock, "Estoque"},
	{fieldMinStock, "Estoque_Minimo"},
	{fieldBarcode, "Codigo_Barras"},
	{fieldImage, "Imagem"},
	{fieldActive, "Ativo"},
}

// headerAliases maps normalized header spellings to fields.
var headerAliases = map[string]field{
	"id": fieldID, "codigo": fieldID, "cod": fieldID, "sku": fieldID,

	"nome": fieldName, "produto": fieldName, "name": fieldName, "nome_produto": fieldName,

	"categoria": fieldCategory, "category": fieldCategory,

	"descricao": fieldDescription, "description": fieldDescription,

	"marca": fieldBrand, "brand": fieldBrand,

	"preco_custo": fieldCostPrice, "custo": fieldCostPrice, "precocusto": fieldCostPrice,
	"cost": fieldCostPrice, "cost_price": fieldCostPrice,

	"preco_venda": fieldSalePrice, "precovenda": fieldSalePrice, "preco": fieldSalePrice,
	"valor": fieldSalePrice, "valor_venda": fieldSalePrice, "price": fieldSalePrice,
	"sale_price": fieldSalePrice,

	"estoque": fieldStock, "quantidade": fieldStock, "qtd": fieldStock, "stock": fieldStock,

	"estoque_minimo": fieldMinStock, "estoque_min": fieldMinStock, "min_stock": fieldMinStock,

	"codigo_barras": fieldBarcode, "codigo_de_barras": fieldBarcode, "ean": fieldBarcode,
	"barcode": fieldBarcode,

	"imagem": fieldImage, "imagem_url": fieldImage, "image": fieldImage, "image_url": fieldImage,

	"ativo": fieldActive, "active": fieldActive,
}

// normalizeHeader lowercases, strips accents and joins words with "_", so
// "Preço Venda" and "preco_venda" compare equal.
func normalizeHeader(h string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, h)
	if err != nil {
		folded = h
	}
	folded = strings.ToLower(strings.TrimSpace(folded))
	return strings.Join(strings.FieldsFunc(folded, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '.'
	}), "_")
}

// mapHeaders returns the column index of every recognised field. The first
// column wins when two headers map to the same field.
func mapHeaders(row []string) map[field]int {
	cols := make(map[field]int)
	for i, h := range row {
		f, ok := headerAliases[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, seen := cols[f]; !seen {
			cols[f] = i
		}
	}
	return cols
}
