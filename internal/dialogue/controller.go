// Package dialogue is the entry point of the bot: it turns a user's text or
// button press into cart and catalog operations and a single Response.
package dialogue

import (
	"errors"

	"github.com/drstein77/shopbot/internal/cart"
	"github.com/drstein77/shopbot/internal/intent"
	"github.com/drstein77/shopbot/internal/models"
	"github.com/drstein77/shopbot/internal/resolver"
	"github.com/drstein77/shopbot/internal/textnorm"
	"go.uber.org/zap"
)

const (
	sourceText   = "text"
	sourceButton = "button"
)

// Engine is the cart contract every input path goes through.
type Engine interface {
	AddProductToCart(userID string, productID *int) (cart.AddResult, error)
	RemoveProductFromCart(userID string, productID *int) (cart.RemoveResult, error)
	ViewCart(userID string) (models.CartSummary, error)
	SelectProduct(userID string, productID int) (models.Product, error)
	ClearCart(userID string) (models.Response, error)
	Checkout(userID string) (cart.Receipt, error)
}

// Resolver finds a product from a free-text query.
type Resolver interface {
	ByName(query string) (models.Product, error)
}

// Classifier assigns an intent to free text.
type Classifier interface {
	Match(message string) intent.Match
}

// Catalog lists products for browsing.
type Catalog interface {
	All() []models.Product
}

type Log interface {
	Debug(string, ...zap.Field)
	Warn(string, ...zap.Field)
}

type Metrics interface {
	ObserveMessage(source, intent string)
	ObserveFailure(kind string)
}

// actionIntents reports button presses under the same intent names as the
// equivalent text commands.
var actionIntents = map[models.ActionKind]intent.Intent{
	models.ActionSelect:    intent.SearchProduct,
	models.ActionAdd:       intent.AddToCart,
	models.ActionRemove:    intent.RemoveFromCart,
	models.ActionViewCart:  intent.ViewCart,
	models.ActionBrowse:    intent.Browse,
	models.ActionClearCart: intent.ClearCart,
	models.ActionCheckout:  intent.Checkout,
	models.ActionHelp:      intent.Help,
}

// Controller dispatches inputs. It holds no per-user state of its own.
type Controller struct {
	engine     Engine
	resolver   Resolver
	classifier Classifier
	catalog    Catalog
	log        Log
	metrics    Metrics
}

// NewController wires a controller. metrics may be nil.
func NewController(engine Engine, resolver Resolver, classifier Classifier, catalog Catalog, log Log, metrics Metrics) *Controller {
	return &Controller{
		engine:     engine,
		resolver:   resolver,
		classifier: classifier,
		catalog:    catalog,
		log:        log,
		metrics:    metrics,
	}
}

// HandleMessage answers one input from userID. Every failure is turned into
// a Response with guidance buttons; it never panics on user input.
func (c *Controller) HandleMessage(userID string, in models.Input) models.Response {
	var (
		resp   models.Response
		source string
	)

	switch {
	case in.Action != nil:
		source = sourceButton
		resp = c.handleAction(userID, *in.Action)
	case IsToken(in.Text):
		source = sourceButton
		action, err := ParseToken(in.Text)
		switch {
		case errors.Is(err, ErrInvalidButton):
			resp = invalidButton()
		case err != nil:
			resp = unknownButton()
		default:
			resp = c.handleAction(userID, action)
		}
		if err != nil {
			resp.Intent = string(intent.Unknown)
		}
	default:
		source = sourceText
		resp = c.handleText(userID, in.Text)
	}

	c.observe(source, resp)
	c.log.Debug("message handled",
		zap.String("user_id", userID),
		zap.String("source", source),
		zap.String("intent", resp.Intent),
		zap.String("error_kind", string(resp.ErrorKind)),
	)
	return resp
}

func (c *Controller) handleAction(userID string, a models.Action) models.Response {
	var resp models.Response
	switch a.Kind {
	case models.ActionSelect:
		if a.ProductID == nil {
			resp = invalidButton()
			break
		}
		resp = c.selectProduct(userID, *a.ProductID)
	case models.ActionAdd:
		resp = c.addToCart(userID, a.ProductID)
	case models.ActionRemove:
		resp = c.removeFromCart(userID, a.ProductID)
	case models.ActionViewCart:
		resp = c.viewCart(userID)
	case models.ActionBrowse:
		resp = productList(c.catalog.All())
	case models.ActionClearCart:
		resp = c.clearCart(userID)
	case models.ActionCheckout:
		resp = c.checkout(userID)
	case models.ActionHelp:
		resp = help()
	default:
		resp = unknownButton()
	}
	in, ok := actionIntents[a.Kind]
	if !ok {
		in = intent.Unknown
	}
	resp.Intent = string(in)
	return resp
}

func (c *Controller) handleText(userID, text string) models.Response {
	m := c.classifier.Match(text)

	var resp models.Response
	switch m.Intent {
	case intent.AddToCart:
		resp = c.addByText(userID, m.Query)
	case intent.ViewCart:
		resp = c.viewCart(userID)
	case intent.SearchProduct:
		resp = c.search(userID, m.Query)
	case intent.RemoveFromCart:
		resp = c.removeByText(userID, m.Query)
	case intent.ClearCart:
		resp = c.clearCart(userID)
	case intent.Checkout:
		resp = c.checkout(userID)
	case intent.Browse:
		resp = productList(c.catalog.All())
	case intent.Help:
		resp = help()
	default:
		resp = unclassified()
	}
	resp.Intent = string(m.Intent)
	return resp
}

// addByText adds the product named in the message, if exactly one is named,
// and otherwise falls back to the last selected product. A query long enough
// to be a product name that matches nothing is reported, never replaced by
// the last selected product.
func (c *Controller) addByText(userID, query string) models.Response {
	if query != "" {
		p, err := c.resolver.ByName(query)
		var amb *resolver.AmbiguousError
		switch {
		case err == nil:
			return c.addToCart(userID, &p.ID)
		case errors.As(err, &amb):
			return disambiguation(query, amb.Candidates)
		case namesProduct(query, err):
			return unknownProduct()
		}
	}
	return c.addToCart(userID, nil)
}

func (c *Controller) removeByText(userID, query string) models.Response {
	if query != "" {
		p, err := c.resolver.ByName(query)
		var amb *resolver.AmbiguousError
		switch {
		case err == nil:
			return c.removeFromCart(userID, &p.ID)
		case errors.As(err, &amb):
			return disambiguation(query, amb.Candidates)
		case namesProduct(query, err):
			return unknownProduct()
		}
	}
	return c.removeFromCart(userID, nil)
}

// namesProduct reports whether an unresolved query was meant as a product
// name rather than leftover words of a command.
func namesProduct(query string, err error) bool {
	return errors.Is(err, resolver.ErrUnknownProduct) && textnorm.RuneLen(query) >= resolver.MinPartialQuery
}

func (c *Controller) search(userID, query string) models.Response {
	if query == "" {
		return productList(c.catalog.All())
	}

	p, err := c.resolver.ByName(query)
	var amb *resolver.AmbiguousError
	switch {
	case err == nil:
		return c.selectProduct(userID, p.ID)
	case errors.As(err, &amb):
		return disambiguation(query, amb.Candidates)
	case errors.Is(err, resolver.ErrUnknownProduct):
		return unknownProduct()
	default:
		return c.internalError(userID, err)
	}
}

func (c *Controller) selectProduct(userID string, productID int) models.Response {
	p, err := c.engine.SelectProduct(userID, productID)
	if err != nil {
		return c.errorResponse(userID, err)
	}
	return productDetail(p)
}

func (c *Controller) addToCart(userID string, productID *int) models.Response {
	res, err := c.engine.AddProductToCart(userID, productID)
	if err != nil {
		return c.errorResponse(userID, err)
	}
	return res.Response
}

func (c *Controller) removeFromCart(userID string, productID *int) models.Response {
	res, err := c.engine.RemoveProductFromCart(userID, productID)
	if err != nil {
		return c.errorResponse(userID, err)
	}
	return res.Response
}

func (c *Controller) viewCart(userID string) models.Response {
	summary, err := c.engine.ViewCart(userID)
	if err != nil {
		return c.errorResponse(userID, err)
	}
	return cart.SummaryResponse(summary)
}

func (c *Controller) clearCart(userID string) models.Response {
	resp, err := c.engine.ClearCart(userID)
	if err != nil {
		return c.errorResponse(userID, err)
	}
	return resp
}

func (c *Controller) checkout(userID string) models.Response {
	receipt, err := c.engine.Checkout(userID)
	if err != nil {
		return c.errorResponse(userID, err)
	}
	return receipt.Response
}

// errorResponse maps engine and resolver errors onto user-facing responses.
func (c *Controller) errorResponse(userID string, err error) models.Response {
	switch {
	case errors.Is(err, cart.ErrNoProductSelected):
		return noProductSelected()
	case errors.Is(err, resolver.ErrUnknownProduct):
		return unknownProduct()
	case errors.Is(err, cart.ErrNotInCart):
		return notInCart()
	case errors.Is(err, cart.ErrEmptyCart):
		return emptyCartCheckout()
	default:
		return c.internalError(userID, err)
	}
}

func (c *Controller) internalError(userID string, err error) models.Response {
	c.log.Warn("message failed", zap.String("user_id", userID), zap.Error(err))
	return unavailable()
}

func (c *Controller) observe(source string, resp models.Response) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveMessage(source, resp.Intent)
	if resp.Failed() {
		c.metrics.ObserveFailure(string(resp.ErrorKind))
	}
}
