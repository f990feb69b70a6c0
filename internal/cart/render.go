package cart

import (
	"fmt"
	"strings"

	"github.com/drstein77/shopbot/internal/models"
	"github.com/shopspring/decimal"
)

// Button labels shared by every cart response.
const (
	LabelViewCart     = "Ver carrito"
	LabelKeepShopping = "Continuar comprando"
	LabelBrowse       = "Ver productos"
	LabelBuyMore      = "Comprar más"
)

// NavigationButtons is the canonical pair shown after an add and on the cart view.
func NavigationButtons() []models.Button {
	return []models.Button{
		models.NewButton(LabelViewCart, models.NewAction(models.ActionViewCart)),
		models.NewButton(LabelKeepShopping, models.NewAction(models.ActionBrowse)),
	}
}

// AddedText is the confirmation shown after any successful add.
func AddedText(name string) string {
	return fmt.Sprintf("✅ %s agregado al carrito correctamente!", name)
}

// AddedResponse is the canonical add confirmation.
func AddedResponse(p models.Product) models.Response {
	return models.Response{Text: AddedText(p.Name), Buttons: NavigationButtons()}
}

// RemovedResponse confirms a single-unit removal.
func RemovedResponse(p models.Product) models.Response {
	return models.Response{
		Text:    fmt.Sprintf("🗑️ %s eliminado del carrito.", p.Name),
		Buttons: NavigationButtons(),
	}
}

// ClearedResponse confirms an emptied cart.
func ClearedResponse() models.Response {
	return models.Response{
		Text:    "🛒 Carrito vacío correctamente.",
		Buttons: []models.Button{models.NewButton(LabelBrowse, models.NewAction(models.ActionBrowse))},
	}
}

// CheckoutResponse confirms a completed purchase.
func CheckoutResponse(total decimal.Decimal) models.Response {
	return models.Response{
		Text: fmt.Sprintf("✅ ¡Compra realizada exitosamente!\nTotal pagado: %s\n¡Gracias por tu compra!",
			models.FormatPrice(total)),
		Buttons: []models.Button{models.NewButton(LabelBuyMore, models.NewAction(models.ActionBrowse))},
	}
}

// SummaryResponse turns a cart summary into a dialogue response.
func SummaryResponse(s models.CartSummary) models.Response {
	return models.Response{Text: s.Text, Buttons: s.Buttons}
}

func renderSummary(s models.CartSummary) string {
	if len(s.Lines) == 0 {
		return "🛒 Tu carrito está vacío\n¿Quieres ver nuestros productos?"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🛒 Tu carrito (%d items):\n", s.ItemCount)
	for _, line := range s.Lines {
		if line.Quantity > 1 {
			fmt.Fprintf(&b, "• %s ×%d - %s\n", line.Product.Name, line.Quantity, models.FormatPrice(line.Subtotal))
		} else {
			fmt.Fprintf(&b, "• %s - %s\n", line.Product.Name, models.FormatPrice(line.Subtotal))
		}
	}
	fmt.Fprintf(&b, "\nTotal: %s", models.FormatPrice(s.Total))
	return b.String()
}
