package areaprices

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"landradar/server/internal/models"
)

// FragmentParser extracts one kind of price fragment from a detail page.
// Parsers fail closed: a page without the layout a parser knows yields an
// empty fragment, never an error.
type FragmentParser interface {
	// Name tags the layout this parser understands, for logging.
	Name() string
	Parse(doc *goquery.Document) models.PriceTable
}

// DefaultParsers covers the three known detail-page layouts.
func DefaultParsers() []FragmentParser {
	return []FragmentParser{
		priceTableParser{},
		averageBlockParser{},
		minMaxBoxParser{},
	}
}

// priceTableParser reads tabular street-price rows: first cell is the street
// or segment label, last cell the listed price.
type priceTableParser struct{}

func (priceTableParser) Name() string { return "price-table" }

func (priceTableParser) Parse(doc *goquery.Document) models.PriceTable {
	fragment := models.PriceTable{}

	doc.Find("table.bang-gia tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < 2 {
			return
		}

		label := cleanCell(cells.First().Text())
		price := cleanCell(cells.Last().Text())
		if label == "" || price == "" {
			return
		}

		fragment[label] = price
	})

	return fragment
}

// averageBlockParser reads titled average-price blocks.
type averageBlockParser struct{}

func (averageBlockParser) Name() string { return "average-block" }

func (averageBlockParser) Parse(doc *goquery.Document) models.PriceTable {
	fragment := models.PriceTable{}

	doc.Find("div.gia-trung-binh").Each(func(_ int, block *goquery.Selection) {
		title := cleanCell(block.Find("h3").First().Text())
		price := cleanCell(block.Find(".gia").First().Text())
		if title == "" || price == "" {
			return
		}

		fragment[title] = price
	})

	return fragment
}

// minMaxBoxParser reads min/max range boxes, producing two entries per box.
type minMaxBoxParser struct{}

func (minMaxBoxParser) Name() string { return "min-max-box" }

func (minMaxBoxParser) Parse(doc *goquery.Document) models.PriceTable {
	fragment := models.PriceTable{}

	doc.Find("div.khoang-gia").Each(func(_ int, box *goquery.Selection) {
		label := cleanCell(box.Find(".ten").First().Text())
		if label == "" {
			return
		}

		if min := cleanCell(box.Find(".thap-nhat").First().Text()); min != "" {
			fragment[label+" (thấp nhất)"] = min
		}
		if max := cleanCell(box.Find(".cao-nhat").First().Text()); max != "" {
			fragment[label+" (cao nhất)"] = max
		}
	})

	return fragment
}

func cleanCell(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
