package dialogue

import (
	"testing"

	"github.com/drstein77/shopbot/internal/cart"
	"github.com/drstein77/shopbot/internal/catalog"
	"github.com/drstein77/shopbot/internal/intent"
	"github.com/drstein77/shopbot/internal/logger"
	"github.com/drstein77/shopbot/internal/metrics"
	"github.com/drstein77/shopbot/internal/models"
	"github.com/drstein77/shopbot/internal/resolver"
	"github.com/drstein77/shopbot/internal/storage"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	ctrl    *Controller
	engine  *cart.Engine
	metrics *metrics.Metrics
}

func newHarness() harness {
	cat := catalog.Default()
	m := metrics.New()
	res := resolver.New(cat)
	engine := cart.NewEngine(storage.NewMemoryStorage(logger.Logger{}, m), res, logger.Logger{}, m)
	ctrl := NewController(engine, res, intent.NewClassifier(cat.Names()), cat, logger.Logger{}, m)
	return harness{ctrl: ctrl, engine: engine, metrics: m}
}

func (h harness) say(userID, text string) models.Response {
	return h.ctrl.HandleMessage(userID, models.TextInput(text))
}

func (h harness) press(userID string, a models.Action) models.Response {
	return h.ctrl.HandleMessage(userID, models.ButtonInput(a))
}

func (h harness) cart(t *testing.T, userID string) models.CartSummary {
	t.Helper()
	summary, err := h.engine.ViewCart(userID)
	require.NoError(t, err)
	return summary
}

func TestSearchThenAddByText(t *testing.T) {
	h := newHarness()

	detail := h.say("u1", "laptop")
	assert.Equal(t, "📱 Laptop - $999.99\n¿Te interesa?", detail.Text)
	assert.Equal(t, []string{"Agregar al carrito", "Buscar otro"}, detail.Labels())
	assert.Equal(t, "btn_add_1", detail.Buttons[0].Action)
	assert.Equal(t, string(intent.SearchProduct), detail.Intent)

	last, ok := h.engine.FindLastSelectedProduct("u1")
	require.True(t, ok)
	assert.Equal(t, "Laptop", last.Name)

	added := h.say("u1", "agregar al carrito")
	assert.Equal(t, "✅ Laptop agregado al carrito correctamente!", added.Text)
	assert.Equal(t, []string{"Ver carrito", "Continuar comprando"}, added.Labels())
	assert.False(t, added.Failed())

	summary := h.cart(t, "u1")
	require.Len(t, summary.Lines, 1)
	assert.Equal(t, "Laptop", summary.Lines[0].Product.Name)
	assert.Equal(t, 1, summary.Lines[0].Quantity)
}

func TestAddWithoutSelection(t *testing.T) {
	h := newHarness()

	resp := h.say("u2", "agregar al carrito")
	assert.Equal(t, models.ErrorNoProductSelected, resp.ErrorKind)
	assert.Contains(t, resp.Text, "No hay producto seleccionado")
	assert.Equal(t, []string{"Buscar producto", "Ayuda"}, resp.Labels())

	assert.Empty(t, h.cart(t, "u2").Lines)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.FailuresTotal.WithLabelValues("no_product_selected")))
}

func TestButtonAndTextAddAreEquivalent(t *testing.T) {
	for _, p := range catalog.Default().All() {
		t.Run(p.Name, func(t *testing.T) {
			h := newHarness()

			byButton := h.press("a", models.NewProductAction(models.ActionAdd, p.ID))

			h.say("b", p.Name)
			byText := h.say("b", "agregar al carrito")

			byToken := h.say("c", models.NewProductAction(models.ActionAdd, p.ID).Token())

			assert.Equal(t, byButton.Text, byText.Text)
			assert.Equal(t, byButton.Labels(), byText.Labels())
			assert.Equal(t, byButton, byText)
			assert.Equal(t, byButton, byToken)
		})
	}
}

func TestAddSameProductTwiceThenView(t *testing.T) {
	h := newHarness()

	h.say("u1", "laptop")
	h.say("u1", "agregar al carrito")
	h.press("u1", models.NewAction(models.ActionAdd))

	resp := h.say("u1", "ver carrito")
	assert.Contains(t, resp.Text, "• Laptop ×2 - $1999.98")
	assert.Contains(t, resp.Text, "Total: $1999.98")
	assert.Equal(t, []string{"Ver carrito", "Continuar comprando"}, resp.Labels())

	summary := h.cart(t, "u1")
	require.Len(t, summary.Lines, 1)
	assert.Equal(t, 2, summary.Lines[0].Quantity)
	assert.True(t, summary.Total.Equal(decimal.RequireFromString("1999.98")))

	again := h.press("u1", models.NewAction(models.ActionViewCart))
	assert.Equal(t, resp.Text, again.Text)
}

func TestAddNamedProduct(t *testing.T) {
	h := newHarness()
	h.say("u1", "laptop")

	resp := h.say("u1", "agregar mouse")
	assert.Equal(t, "✅ Mouse agregado al carrito correctamente!", resp.Text)

	resp = h.say("u1", "agregar la")
	assert.Equal(t, "✅ Mouse agregado al carrito correctamente!", resp.Text)

	resp = h.say("u1", "añadir mouse y monitor")
	assert.Equal(t, models.ErrorAmbiguousProduct, resp.ErrorKind)

	summary := h.cart(t, "u1")
	require.Len(t, summary.Lines, 1)
	assert.Equal(t, 2, summary.Lines[0].Quantity)
}

func TestCartSentences(t *testing.T) {
	tests := []struct {
		name     string
		msgs     []string
		wantText string
		want     intent.Intent
		lines    int
	}{
		{
			name:     "named product in a sentence",
			msgs:     []string{"añadir mouse al carrito"},
			wantText: "✅ Mouse agregado al carrito correctamente!",
			want:     intent.AddToCart,
			lines:    1,
		},
		{
			name:     "english sentence",
			msgs:     []string{"add mouse to cart"},
			wantText: "✅ Mouse agregado al carrito correctamente!",
			want:     intent.AddToCart,
			lines:    1,
		},
		{
			name:     "selected product in a sentence",
			msgs:     []string{"laptop", "añadir este producto al carrito"},
			wantText: "✅ Laptop agregado al carrito correctamente!",
			want:     intent.AddToCart,
			lines:    1,
		},
		{
			name:     "remove in a sentence",
			msgs:     []string{"btn_add_2", "quitar el mouse del carrito"},
			wantText: "🗑️ Mouse eliminado del carrito.",
			want:     intent.RemoveFromCart,
			lines:    0,
		},
		{
			name:     "clear in a sentence",
			msgs:     []string{"btn_add_2", "btn_add_1", "vaciar mi carrito"},
			wantText: "🛒 Carrito vacío correctamente.",
			want:     intent.ClearCart,
			lines:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()

			var resp models.Response
			for _, msg := range tt.msgs {
				resp = h.say("u1", msg)
			}
			assert.Equal(t, tt.wantText, resp.Text)
			assert.Equal(t, string(tt.want), resp.Intent)
			assert.Len(t, h.cart(t, "u1").Lines, tt.lines)
		})
	}
}

func TestAddUnknownNamedProduct(t *testing.T) {
	h := newHarness()
	h.say("u1", "laptop")

	resp := h.say("u1", "agregar tablet")
	assert.Equal(t, models.ErrorUnknownProduct, resp.ErrorKind)
	assert.Equal(t, []string{"Buscar otro"}, resp.Labels())
	assert.Empty(t, h.cart(t, "u1").Lines)

	resp = h.say("u1", "quitar tablet")
	assert.Equal(t, models.ErrorUnknownProduct, resp.ErrorKind)
}

func TestSearchAmbiguous(t *testing.T) {
	h := newHarness()
	h.say("u1", "keyboard")

	resp := h.say("u1", "mouse o monitor")
	assert.Equal(t, models.ErrorAmbiguousProduct, resp.ErrorKind)
	assert.Equal(t, []string{"Mouse", "Monitor"}, resp.Labels())
	assert.Equal(t, "btn_select_2", resp.Buttons[0].Action)
	assert.Equal(t, "btn_select_4", resp.Buttons[1].Action)

	last, ok := h.engine.FindLastSelectedProduct("u1")
	require.True(t, ok)
	assert.Equal(t, "Keyboard", last.Name)

	picked := h.say("u1", resp.Buttons[1].Action)
	assert.Equal(t, "📱 Monitor - $299.99\n¿Te interesa?", picked.Text)
}

func TestSearchNotFound(t *testing.T) {
	h := newHarness()

	resp := h.say("u1", "buscar tablet")
	assert.Equal(t, models.ErrorUnknownProduct, resp.ErrorKind)
	assert.Contains(t, resp.Text, "Producto no encontrado")
	assert.Equal(t, []string{"Buscar otro"}, resp.Labels())

	_, ok := h.engine.FindLastSelectedProduct("u1")
	assert.False(t, ok)
}

func TestUnknownText(t *testing.T) {
	h := newHarness()

	resp := h.say("u1", "hola, ¿qué tal?")
	assert.Equal(t, models.ErrorUnclassified, resp.ErrorKind)
	assert.Equal(t, string(intent.Unknown), resp.Intent)
	assert.Contains(t, resp.Text, "No entiendo")
	assert.NotEmpty(t, resp.Buttons)
}

func TestButtonTokens(t *testing.T) {
	h := newHarness()

	t.Run("malformed id", func(t *testing.T) {
		resp := h.say("u1", "btn_add_invalid")
		assert.Equal(t, models.ErrorInvalidButton, resp.ErrorKind)
		assert.Equal(t, "❌ Error en el botón. Intenta de nuevo.", resp.Text)
	})

	t.Run("unknown token", func(t *testing.T) {
		resp := h.say("u1", "btn_unknown")
		assert.Equal(t, models.ErrorUnknownButton, resp.ErrorKind)
		assert.Equal(t, "❌ Botón no reconocido", resp.Text)
	})

	t.Run("unknown product id", func(t *testing.T) {
		resp := h.say("u1", "btn_add_99")
		assert.Equal(t, models.ErrorUnknownProduct, resp.ErrorKind)
		assert.Equal(t, []string{"Buscar otro"}, resp.Labels())
		assert.Empty(t, h.cart(t, "u1").Lines)
	})

	t.Run("select", func(t *testing.T) {
		resp := h.say("u1", "btn_select_3")
		assert.Equal(t, "📱 Keyboard - $79.99\n¿Te interesa?", resp.Text)
		assert.Equal(t, []string{"Agregar al carrito", "Buscar otro"}, resp.Labels())
	})
}

func TestBrowse(t *testing.T) {
	h := newHarness()

	resp := h.press("u1", models.NewAction(models.ActionBrowse))
	assert.Contains(t, resp.Text, "Productos disponibles")
	assert.Equal(t, []string{
		"Laptop - $999.99", "Mouse - $29.99", "Keyboard - $79.99", "Monitor - $299.99",
	}, resp.Labels())
	assert.Equal(t, "btn_select_1", resp.Buttons[0].Action)

	assert.Equal(t, resp.Text, h.say("u1", "ver productos").Text)
	assert.Equal(t, resp.Text, h.say("u1", "buscar").Text)
}

func TestRemoveClearCheckout(t *testing.T) {
	h := newHarness()

	h.say("u1", "btn_add_1")
	h.say("u1", "btn_add_2")
	h.say("u1", "btn_add_2")

	resp := h.say("u1", "quitar mouse")
	assert.Equal(t, "🗑️ Mouse eliminado del carrito.", resp.Text)

	resp = h.say("u1", "pagar")
	assert.Contains(t, resp.Text, "Compra realizada exitosamente")
	assert.Contains(t, resp.Text, "$1029.98")
	assert.Empty(t, h.cart(t, "u1").Lines)

	resp = h.say("u1", "pagar")
	assert.Equal(t, models.ErrorEmptyCart, resp.ErrorKind)

	resp = h.say("u1", "quitar")
	assert.Equal(t, models.ErrorNoProductSelected, resp.ErrorKind)

	h.say("u1", "btn_add_4")
	resp = h.say("u1", "vaciar carrito")
	assert.Equal(t, "🛒 Carrito vacío correctamente.", resp.Text)
	assert.Empty(t, h.cart(t, "u1").Lines)

	resp = h.say("u1", "btn_remove_4")
	assert.Equal(t, models.ErrorNotInCart, resp.ErrorKind)
}

func TestSessionsAreIndependent(t *testing.T) {
	h := newHarness()

	h.say("alice", "laptop")
	h.say("alice", "agregar al carrito")
	h.say("bob", "mouse")
	h.say("bob", "agregar al carrito")

	alice := h.cart(t, "alice")
	bob := h.cart(t, "bob")
	require.Len(t, alice.Lines, 1)
	require.Len(t, bob.Lines, 1)
	assert.Equal(t, "Laptop", alice.Lines[0].Product.Name)
	assert.Equal(t, "Mouse", bob.Lines[0].Product.Name)
}

func TestMessagesAreCounted(t *testing.T) {
	h := newHarness()

	h.say("u1", "laptop")
	h.say("u1", "agregar al carrito")
	h.press("u1", models.NewAction(models.ActionAdd))

	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.MessagesTotal.WithLabelValues("text", "add_to_cart")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.MessagesTotal.WithLabelValues("button", "add_to_cart")))
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.CartChangesTotal.WithLabelValues("add")))
}
