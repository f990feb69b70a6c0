package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/drstein77/shopbot/internal/models"
	"go.uber.org/zap"
)

// Dialogue answers one user input.
type Dialogue interface {
	HandleMessage(userID string, in models.Input) models.Response
}

// Log interface for logging
type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

var quitWords = map[string]bool{"quit": true, "salir": true, "exit": true}

// Console runs a line-oriented conversation for a single user.
type Console struct {
	in       io.Reader
	out      io.Writer
	userID   string
	dialogue Dialogue
	log      Log
}

// NewConsole creates a console conversation reading from in and writing to out.
func NewConsole(in io.Reader, out io.Writer, userID string, dialogue Dialogue, log Log) *Console {
	return &Console{
		in:       in,
		out:      out,
		userID:   userID,
		dialogue: dialogue,
		log:      log,
	}
}

// Run reads lines until a quit word, end of input or ctx cancellation.
// A bare number picks the matching button of the previous reply.
func (c *Console) Run(ctx context.Context) error {
	c.printf("🤖 Chatbot iniciado. Escribe 'quit' para salir.\n")
	c.printf("Prueba comandos como: 'laptop', 'agregar al carrito', 'carrito'\n")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	var last models.Response
	for {
		c.printf("\n> ")

		var line string
		select {
		case <-ctx.Done():
			c.printf("\n¡Hasta luego!\n")
			return nil
		case l, ok := <-lines:
			if !ok {
				c.printf("\n¡Hasta luego!\n")
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			line = strings.TrimSpace(l)
		}

		if line == "" {
			continue
		}
		if quitWords[strings.ToLower(line)] {
			c.printf("¡Hasta luego!\n")
			return nil
		}

		last = c.dialogue.HandleMessage(c.userID, models.TextInput(pickButton(line, last)))
		c.render(last)
	}
}

// pickButton maps "2" to the action token of the second button of the
// previous reply. Anything else passes through unchanged.
func pickButton(line string, last models.Response) string {
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(last.Buttons) {
		return line
	}
	return last.Buttons[n-1].Action
}

func (c *Console) render(resp models.Response) {
	c.printf("\n🤖 Bot: %s\n", resp.Text)
	if len(resp.Buttons) == 0 {
		return
	}
	c.printf("\nOpciones disponibles:\n")
	for i, b := range resp.Buttons {
		c.printf("  %d. %s (%s)\n", i+1, b.Label, b.Action)
	}
}

func (c *Console) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(c.out, format, args...); err != nil {
		c.log.Error("failed to write to console", zap.Error(err))
	}
}
