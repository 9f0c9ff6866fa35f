// Package report builds spreadsheet exports for the admin panel.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/tealeg/xlsx"
)

const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var orderHeaders = []string{
	"Order ID", "Email", "Items", "Quantity", "Subtotal", "Shipping", "Total", "Status", "Placed At",
}

// Orders writes one row per order in the order given.
func Orders(w io.Writer, os []orders.Order) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range orderHeaders {
		header.AddCell().SetString(h)
	}

	for _, o := range os {
		names := make([]string, 0, len(o.Items))
		for _, it := range o.Items {
			names = append(names, fmt.Sprintf("%s x%d", it.Name, it.Quantity))
		}
		row := sheet.AddRow()
		row.AddCell().SetString(o.ID)
		row.AddCell().SetString(o.UserEmail)
		row.AddCell().SetString(strings.Join(names, ", "))
		row.AddCell().SetInt(o.ItemCount())
		row.AddCell().SetString(o.Subtotal.StringFixed(2))
		row.AddCell().SetString(o.Shipping.StringFixed(2))
		row.AddCell().SetString(o.Total.StringFixed(2))
		row.AddCell().SetString(string(o.Status))
		row.AddCell().SetString(o.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return file.Write(w)
}
