package deck

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/example/drillcards/pkg/models"
)

// InputType governs how raw answers are validated before checking.
type InputType string

const (
	InputNumeric InputType = "numeric"
	InputText    InputType = "text"
)

// Maximum answer lengths per input type
const (
	MaxNumericInput = 5
	MaxTextInput    = 20
)

// AnswerCheck is the result of checking a raw answer against an item.
type AnswerCheck struct {
	Correct         bool
	CanonicalAnswer string
	UserAnswer      string
}

// Deck is a content family with its own generation and answer logic.
// Errors are only returned when an item's content cannot be decoded.
type Deck interface {
	ID() string
	Name() string
	Description() string
	InputType() InputType

	// GenerateItems returns the full item universe with fresh memory states due at now.
	GenerateItems(now time.Time) ([]models.Item, error)
	FormatQuestion(item models.Item) (string, error)
	CheckAnswer(item models.Item, raw string) (AnswerCheck, error)
	CanonicalAnswerDisplay(item models.Item) (string, error)
}

// ErrInvalidInput is returned by ValidateInput.
var ErrInvalidInput = errors.New("invalid input")

// ValidateInput applies the input policy of t to raw. It never affects grading.
func ValidateInput(t InputType, raw string) error {
	s := strings.TrimSpace(raw)
	if s == "" {
		return fmt.Errorf("%w: empty answer", ErrInvalidInput)
	}
	switch t {
	case InputNumeric:
		if len(s) > MaxNumericInput {
			return fmt.Errorf("%w: at most %d digits", ErrInvalidInput, MaxNumericInput)
		}
		if _, err := strconv.Atoi(s); err != nil {
			return fmt.Errorf("%w: %q is not a number", ErrInvalidInput, s)
		}
	default:
		if utf8.RuneCountInString(s) > MaxTextInput {
			return fmt.Errorf("%w: at most %d characters", ErrInvalidInput, MaxTextInput)
		}
	}
	return nil
}
