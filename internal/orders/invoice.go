package orders

import (
	"html/template"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var vndPrinter = message.NewPrinter(language.Vietnamese)

// FormatVND renders an amount with Vietnamese digit grouping.
func FormatVND(amount int64) string {
	return vndPrinter.Sprintf("%v ₫", number.Decimal(amount))
}

var invoiceTemplate = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"vnd": FormatVND,
}).Parse(`<!DOCTYPE html>
<html lang="vi">
<head>
<meta charset="utf-8">
<title>Hóa đơn {{.ID}}</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin-top: 1em; }
th, td { border: 1px solid #999; padding: 6px 10px; text-align: left; }
tfoot td { font-weight: bold; }
.meta { margin-top: 1em; }
@media print { .no-print { display: none; } }
</style>
</head>
<body>
<h1>HÓA ĐƠN BÁN HÀNG</h1>
<p class="meta">
Mã đơn: <strong>{{.ID}}</strong><br>
Ngày tạo: {{.CreatedAt.Format "02/01/2006 15:04"}}<br>
Trạng thái: {{.Status}} &middot; Thanh toán: {{.Payment}}
</p>
<p class="meta">
Khách hàng: {{.Customer.Name}} &middot; {{.Customer.Phone}}<br>
Địa chỉ: {{.Customer.Address}}<br>
Giao tới: {{.Shipping.Name}} &middot; {{.Shipping.Phone}} &middot; {{.Shipping.Address}}
</p>
<table>
<thead>
<tr><th>Sản phẩm</th><th>Phân loại</th><th>SL</th><th>Đơn giá</th><th>Thành tiền</th></tr>
</thead>
<tbody>
<tr>
<td>{{.Product.Name}}</td>
<td>{{if .Product.Size}}{{.Product.Size}}{{end}}{{if .Product.Color}} / {{.Product.Color}}{{end}}</td>
<td>{{.Quantity}}</td>
<td>{{vnd .UnitPrice}}</td>
<td>{{vnd .Subtotal}}</td>
</tr>
</tbody>
<tfoot>
<tr><td colspan="4">Phí vận chuyển</td><td>{{vnd .ShippingFee}}</td></tr>
<tr><td colspan="4">Tổng cộng</td><td>{{vnd .Total}}</td></tr>
</tfoot>
</table>
<p class="no-print"><button onclick="window.print()">In hóa đơn</button></p>
</body>
</html>
`))

type invoiceView struct {
	Order
	Subtotal int64
}

// RenderInvoice writes the printable invoice document for one order.
func RenderInvoice(w io.Writer, order Order) error {
	return invoiceTemplate.Execute(w, invoiceView{
		Order:    order,
		Subtotal: order.UnitPrice * int64(order.Quantity),
	})
}
