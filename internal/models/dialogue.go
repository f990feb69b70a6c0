package models

import "strconv"

// TokenPrefix starts every button action token.
const TokenPrefix = "btn_"

// ActionKind names a discrete button action.
type ActionKind string

const (
	ActionSelect    ActionKind = "select"
	ActionAdd       ActionKind = "add"
	ActionRemove    ActionKind = "remove"
	ActionViewCart  ActionKind = "view_cart"
	ActionBrowse    ActionKind = "browse"
	ActionClearCart ActionKind = "clear_cart"
	ActionCheckout  ActionKind = "checkout"
	ActionHelp      ActionKind = "help"
)

// Action is a button press, optionally carrying a product id.
type Action struct {
	Kind      ActionKind
	ProductID *int
}

// NewAction builds an action without a product.
func NewAction(kind ActionKind) Action {
	return Action{Kind: kind}
}

// NewProductAction builds an action bound to a product id.
func NewProductAction(kind ActionKind, productID int) Action {
	id := productID
	return Action{Kind: kind, ProductID: &id}
}

// Token renders the action as a wire token such as "btn_add_1".
func (a Action) Token() string {
	token := TokenPrefix + string(a.Kind)
	if a.ProductID != nil {
		token += "_" + strconv.Itoa(*a.ProductID)
	}
	return token
}

// Input is what a transport hands to the dialogue: free text or a button.
type Input struct {
	Text   string
	Action *Action
}

// TextInput wraps a free-text message.
func TextInput(text string) Input {
	return Input{Text: text}
}

// ButtonInput wraps a button action.
func ButtonInput(a Action) Input {
	return Input{Action: &a}
}

// Button is a suggested follow-up: a label to show and the token to send back.
type Button struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// NewButton pairs a label with an action token.
func NewButton(label string, a Action) Button {
	return Button{Label: label, Action: a.Token()}
}

// ErrorKind classifies a recovered failure carried in a Response.
type ErrorKind string

const (
	ErrorNone              ErrorKind = ""
	ErrorNoProductSelected ErrorKind = "no_product_selected"
	ErrorUnknownProduct    ErrorKind = "unknown_product"
	ErrorAmbiguousProduct  ErrorKind = "ambiguous_product"
	ErrorUnclassified      ErrorKind = "unclassified"
	ErrorEmptyCart         ErrorKind = "empty_cart"
	ErrorNotInCart         ErrorKind = "not_in_cart"
	ErrorInvalidButton     ErrorKind = "invalid_button"
	ErrorUnknownButton     ErrorKind = "unknown_button"
)

// Response is the structured reply returned for every input.
type Response struct {
	Text      string    `json:"text"`
	Buttons   []Button  `json:"buttons"`
	Intent    string    `json:"intent,omitempty"`
	ErrorKind ErrorKind `json:"error_kind,omitempty"`
}

// Labels returns the button labels in display order.
func (r Response) Labels() []string {
	labels := make([]string, 0, len(r.Buttons))
	for _, b := range r.Buttons {
		labels = append(labels, b.Label)
	}
	return labels
}

// Failed reports whether the response carries an error kind.
func (r Response) Failed() bool {
	return r.ErrorKind != ErrorNone
}
