package dialogue

import (
	"errors"
	"strconv"
	"strings"

	"github.com/drstein77/shopbot/internal/models"
)

var (
	ErrInvalidButton = errors.New("malformed button token")
	ErrUnknownButton = errors.New("unknown button token")
)

// IsToken reports whether text looks like a button token.
func IsToken(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), models.TokenPrefix)
}

// ParseToken decodes tokens produced by models.Action.Token, e.g.
// "btn_view_cart", "btn_add", "btn_add_3", "btn_select_2".
func ParseToken(token string) (models.Action, error) {
	body, ok := strings.CutPrefix(strings.TrimSpace(token), models.TokenPrefix)
	if !ok {
		return models.Action{}, ErrUnknownButton
	}

	switch kind := models.ActionKind(body); kind {
	case models.ActionViewCart, models.ActionBrowse, models.ActionClearCart,
		models.ActionCheckout, models.ActionHelp, models.ActionAdd, models.ActionRemove:
		return models.NewAction(kind), nil
	case models.ActionSelect:
		return models.Action{}, ErrInvalidButton
	}

	name, rawID, ok := cutLast(body, "_")
	if !ok {
		return models.Action{}, ErrUnknownButton
	}

	kind := models.ActionKind(name)
	switch kind {
	case models.ActionAdd, models.ActionSelect, models.ActionRemove:
	default:
		return models.Action{}, ErrUnknownButton
	}

	id, err := strconv.Atoi(rawID)
	if err != nil {
		return models.Action{}, ErrInvalidButton
	}
	return models.NewProductAction(kind, id), nil
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
