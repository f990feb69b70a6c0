// Package intent maps free-text messages onto a closed set of intents by
// keyword and phrase matching.
package intent

import (
	"errors"
	"slices"
	"strings"

	"github.com/drstein77/shopbot/internal/textnorm"
)

// Intent is the classified purpose of a message.
type Intent string

const (
	AddToCart      Intent = "add_to_cart"
	ViewCart       Intent = "view_cart"
	SearchProduct  Intent = "search_product"
	RemoveFromCart Intent = "remove_from_cart"
	ClearCart      Intent = "clear_cart"
	Checkout       Intent = "checkout"
	Browse         Intent = "browse"
	Help           Intent = "help"
	Unknown        Intent = "unknown"
)

// ErrUnclassified marks a message that matched no intent.
var ErrUnclassified = errors.New("message matches no known intent")

type phrase struct {
	text   string
	intent Intent
	rank   int
}

// Phrase ranks, tried in this order. Within a rank longer phrases go first.
const (
	rankPhrase = iota // several words, at least one of them a verb
	rankVerb          // a single verb
	rankNoun          // a bare noun such as "carrito"
)

// corpus lists trigger phrases per intent. Order inside an intent does not
// matter: the classifier sorts every phrase by rank and length.
var corpus = map[Intent][]string{
	AddToCart:      {"agregar al carrito", "add to cart", "añadir al carrito", "agregar", "añadir", "add"},
	ViewCart:       {"ver carrito", "view cart", "mostrar carrito", "mi carrito", "show cart", "carrito", "cart"},
	RemoveFromCart: {"quitar del carrito", "eliminar del carrito", "remove from cart", "quitar", "eliminar", "remove"},
	ClearCart:      {"vaciar carrito", "clear cart", "empty cart", "vaciar"},
	Checkout:       {"proceder al pago", "finalizar compra", "checkout", "pagar"},
	Browse:         {"ver productos", "show products", "productos", "products", "catálogo", "catalog"},
	Help:           {"ayuda", "help"},
}

// nouns name a thing without asking for anything; a verb elsewhere in the
// message decides the intent instead ("vaciar mi carrito").
var nouns = map[string]bool{
	"mi carrito": true,
	"carrito":    true,
	"cart":       true,
	"productos":  true,
	"products":   true,
	"catalogo":   true,
	"catalog":    true,
}

// fillerWords carry no product information and are dropped from queries.
var fillerWords = map[string]bool{
	"a": true, "al": true, "el": true, "la": true, "los": true, "las": true,
	"un": true, "una": true, "unos": true, "unas": true, "lo": true,
	"de": true, "del": true, "mi": true, "por": true, "favor": true,
	"este": true, "esta": true, "esto": true, "ese": true, "esa": true, "eso": true,
	"producto": true, "carrito": true,
	"to": true, "from": true, "the": true, "my": true, "this": true, "it": true,
	"product": true, "cart": true, "please": true,
}

// intentOrder breaks length ties between phrases of different intents.
var intentOrder = []Intent{AddToCart, ViewCart, RemoveFromCart, ClearCart, Checkout, Browse, Help}

// searchKeywords introduce a free product query ("buscar mouse").
var searchKeywords = []string{"buscar", "busco", "search", "find", "quiero", "tienes"}

// Match is a classification together with what is left of the message.
type Match struct {
	Intent Intent
	// Phrase is the folded trigger that decided the intent, if any.
	Phrase string
	// Query is the folded message with the trigger removed.
	Query string
}

// Classifier is safe for concurrent use; it never changes after construction.
type Classifier struct {
	phrases  []phrase
	products []string
}

// NewClassifier builds a classifier that also recognizes the given product
// names as searches.
func NewClassifier(productNames []string) *Classifier {
	c := &Classifier{}

	seen := make(map[string]bool)
	for _, in := range intentOrder {
		for _, text := range corpus[in] {
			folded := textnorm.Fold(text)
			if folded == "" || seen[folded] {
				continue
			}
			seen[folded] = true
			c.phrases = append(c.phrases, phrase{text: folded, intent: in, rank: rankOf(folded)})
		}
	}
	// "ver carrito" wins over a bare "agregar" later in the sentence, and
	// "añadir" wins over the "carrito" in "añadir mouse al carrito".
	slices.SortStableFunc(c.phrases, func(a, b phrase) int {
		if a.rank != b.rank {
			return a.rank - b.rank
		}
		return textnorm.RuneLen(b.text) - textnorm.RuneLen(a.text)
	})

	for _, name := range productNames {
		if folded := textnorm.Fold(name); folded != "" {
			c.products = append(c.products, folded)
		}
	}

	return c
}

// Classify returns the intent of message.
func (c *Classifier) Classify(message string) Intent {
	return c.Match(message).Intent
}

// Match classifies message and returns the remaining query text.
func (c *Classifier) Match(message string) Match {
	folded := textnorm.Fold(message)
	if folded == "" {
		return Match{Intent: Unknown}
	}

	for _, p := range c.phrases {
		if strings.Contains(folded, p.text) {
			return Match{Intent: p.intent, Phrase: p.text, Query: clean(strip(folded, p.text))}
		}
	}

	for _, name := range c.products {
		if strings.Contains(folded, name) {
			return Match{Intent: SearchProduct, Query: folded}
		}
	}

	first, rest, _ := strings.Cut(folded, " ")
	if slices.Contains(searchKeywords, first) {
		return Match{Intent: SearchProduct, Phrase: first, Query: clean(rest)}
	}

	return Match{Intent: Unknown, Query: folded}
}

func rankOf(folded string) int {
	switch {
	case nouns[folded]:
		return rankNoun
	case strings.Contains(folded, " "):
		return rankPhrase
	default:
		return rankVerb
	}
}

// clean drops filler words, so "el mouse del carrito" becomes "mouse".
func clean(query string) string {
	words := strings.Fields(query)
	kept := words[:0]
	for _, w := range words {
		if !fillerWords[strings.Trim(w, "¿?¡!.,")] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

func strip(s, sub string) string {
	return strings.Join(strings.Fields(strings.Replace(s, sub, " ", 1)), " ")
}
