package service

import (
	"fmt"
	"html"
	"strings"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/utils"
)

func orderConfirmedEmail(o *domain.Order, lines []domain.OrderLine) (string, string) {
	subject := fmt.Sprintf("Order %s confirmed", o.OrderNumber)

	var rows strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&rows, "<tr><td>%d</td><td>%s</td><td>%d</td><td>%s</td></tr>",
			l.ProductID, l.Type, l.Quantity, l.LineTotal.StringFixed(2))
	}

	body := fmt.Sprintf(`<html><body>
<p>Thank you, your order <strong>%s</strong> is confirmed.</p>
%s
<table><tr><th>Product</th><th>Type</th><th>Qty</th><th>Total</th></tr>%s</table>
<p>Total paid: %s</p>
</body></html>`,
		html.EscapeString(o.OrderNumber), rentalWindowHTML(o), rows.String(), o.AmountPaid.StringFixed(2))
	return subject, body
}

func returnReminderEmail(o *domain.Order) (string, string) {
	subject := fmt.Sprintf("Reminder: order %s is due back on %s", o.OrderNumber, utils.FormatDate(o.RentalEnd))
	body := fmt.Sprintf(`<html><body>
<p>Your rental <strong>%s</strong> is due back on <strong>%s</strong>.</p>
<p>Late returns are charged %s%% of the daily rate per day.</p>
</body></html>`,
		html.EscapeString(o.OrderNumber), utils.FormatDate(o.RentalEnd), utils.LateFeeRate.Shift(2).String())
	return subject, body
}

func overdueEmail(o *domain.Order, fee utils.LateFeeBreakdown) (string, string) {
	subject := fmt.Sprintf("Order %s is overdue", o.OrderNumber)
	body := fmt.Sprintf(`<html><body>
<p>Your rental <strong>%s</strong> was due back on %s and is %d day(s) late.</p>
<p>Estimated late fee so far: <strong>%s</strong> (daily rate %s).</p>
</body></html>`,
		html.EscapeString(o.OrderNumber), utils.FormatDate(o.RentalEnd), fee.LateDays, fee.Fee.StringFixed(2), fee.DailyRate.StringFixed(2))
	return subject, body
}

func rentalWindowHTML(o *domain.Order) string {
	if o.RentalStart.IsZero() {
		return ""
	}
	return fmt.Sprintf("<p>Rental period: %s to %s</p>", utils.FormatDate(o.RentalStart), utils.FormatDate(o.RentalEnd))
}
