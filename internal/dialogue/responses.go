package dialogue

import (
	"fmt"
	"strings"

	"github.com/drstein77/shopbot/internal/cart"
	"github.com/drstein77/shopbot/internal/models"
)

const (
	labelAddToCart     = "Agregar al carrito"
	labelSearchAnother = "Buscar otro"
	labelSearch        = "Buscar producto"
	labelHelp          = "Ayuda"
)

const helpBody = "• Escribe el nombre de un producto (ej. \"laptop\") para verlo\n" +
	"• \"agregar al carrito\" añade el producto seleccionado\n" +
	"• \"ver carrito\" muestra tu compra\n" +
	"• \"quitar\", \"vaciar carrito\" o \"pagar\" para gestionarla"

func browseAction() models.Action { return models.NewAction(models.ActionBrowse) }

func productDetail(p models.Product) models.Response {
	return models.Response{
		Text: fmt.Sprintf("📱 %s - %s\n¿Te interesa?", p.Name, p.PriceLabel()),
		Buttons: []models.Button{
			models.NewButton(labelAddToCart, models.NewProductAction(models.ActionAdd, p.ID)),
			models.NewButton(labelSearchAnother, browseAction()),
		},
	}
}

func productList(products []models.Product) models.Response {
	var b strings.Builder
	b.WriteString("🏪 Productos disponibles:")
	buttons := make([]models.Button, 0, len(products))
	for _, p := range products {
		fmt.Fprintf(&b, "\n• %s - %s", p.Name, p.PriceLabel())
		buttons = append(buttons, models.NewButton(
			fmt.Sprintf("%s - %s", p.Name, p.PriceLabel()),
			models.NewProductAction(models.ActionSelect, p.ID),
		))
	}
	b.WriteString("\nElige un producto para ver el detalle:")
	return models.Response{Text: b.String(), Buttons: buttons}
}

func disambiguation(query string, candidates []models.Product) models.Response {
	var b strings.Builder
	fmt.Fprintf(&b, "🔎 Encontré varios productos para \"%s\":", query)
	buttons := make([]models.Button, 0, len(candidates))
	for _, p := range candidates {
		fmt.Fprintf(&b, "\n• %s - %s", p.Name, p.PriceLabel())
		buttons = append(buttons, models.NewButton(p.Name, models.NewProductAction(models.ActionSelect, p.ID)))
	}
	b.WriteString("\n¿Cuál te interesa?")
	return failure(models.ErrorAmbiguousProduct, b.String(), buttons...)
}

func noProductSelected() models.Response {
	return failure(models.ErrorNoProductSelected,
		"❌ No hay producto seleccionado. Por favor, elige un producto primero.",
		models.NewButton(labelSearch, browseAction()),
		models.NewButton(labelHelp, models.NewAction(models.ActionHelp)),
	)
}

func unknownProduct() models.Response {
	return failure(models.ErrorUnknownProduct,
		"❌ Producto no encontrado. ¿Quieres ver todos los productos disponibles?",
		models.NewButton(labelSearchAnother, browseAction()),
	)
}

func notInCart() models.Response {
	return failure(models.ErrorNotInCart,
		"❌ Ese producto no está en tu carrito.",
		models.NewButton(cart.LabelViewCart, models.NewAction(models.ActionViewCart)),
	)
}

func emptyCartCheckout() models.Response {
	return failure(models.ErrorEmptyCart,
		"❌ No puedes proceder al pago con un carrito vacío.",
		models.NewButton(cart.LabelBrowse, browseAction()),
	)
}

func help() models.Response {
	return models.Response{
		Text:    "🤖 Esto es lo que puedo hacer:\n" + helpBody,
		Buttons: helpButtons(),
	}
}

func unclassified() models.Response {
	return failure(models.ErrorUnclassified,
		"🤖 No entiendo. ¿Puedes ser más específico?\n"+helpBody,
		helpButtons()...,
	)
}

func invalidButton() models.Response {
	return failure(models.ErrorInvalidButton, "❌ Error en el botón. Intenta de nuevo.",
		models.NewButton(cart.LabelBrowse, browseAction()))
}

func unknownButton() models.Response {
	return failure(models.ErrorUnknownButton, "❌ Botón no reconocido",
		models.NewButton(cart.LabelBrowse, browseAction()))
}

func unavailable() models.Response {
	return models.Response{Text: "❌ No pude procesar tu mensaje. Intenta de nuevo."}
}

func helpButtons() []models.Button {
	return []models.Button{
		models.NewButton(cart.LabelBrowse, browseAction()),
		models.NewButton(cart.LabelViewCart, models.NewAction(models.ActionViewCart)),
	}
}

func failure(kind models.ErrorKind, text string, buttons ...models.Button) models.Response {
	return models.Response{Text: text, Buttons: buttons, ErrorKind: kind}
}
